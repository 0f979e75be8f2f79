package bootstrap

import (
	"context"
	"time"

	"bloxforge/app/repositories"
	"bloxforge/pkg/logger"

	"github.com/spf13/cast"
)

// SetupMaintenance 启动周期性清理
// 过期令牌删除、超时未支付订单取消
func SetupMaintenance() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		tokenRepo := repositories.NewTokenRepository()
		paymentRepo := repositories.NewPaymentRepository()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

			if n, err := tokenRepo.PurgeExpired(ctx); err != nil {
				logger.ErrorString("Maintenance", "PurgeTokens", err.Error())
			} else if n > 0 {
				logger.InfoString("Maintenance", "PurgeTokens", "清理过期令牌 "+cast.ToString(n)+" 条")
			}

			if n, err := paymentRepo.CancelExpired(ctx); err != nil {
				logger.ErrorString("Maintenance", "CancelOrders", err.Error())
			} else if n > 0 {
				logger.InfoString("Maintenance", "CancelOrders", "取消超时订单 "+cast.ToString(n)+" 条")
			}

			cancel()
		}
	}()
}
