// Package utils 支付层的订单号与随机串生成
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateOrderNo 生成充值订单号：时间戳 + 纳秒尾数
// 唯一性最终由 payments.order_no 的唯一索引保证
func GenerateOrderNo() string {
	now := time.Now()
	return fmt.Sprintf("%s%d", now.Format("20060102150405"), now.UnixNano()%1000)
}

// GenerateNonceStr 生成签名用随机串
func GenerateNonceStr() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
