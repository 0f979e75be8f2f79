package bootstrap

import (
	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
)

// SetupLogger 初始化日志系统
// 落盘策略（路径、切割、保留）全部来自 log 配置段
func SetupLogger() {
	logger.InitLogger(
		config.GetString("log.filename"),
		config.GetInt("log.max_size"),
		config.GetInt("log.max_backup"),
		config.GetInt("log.max_age"),
		config.GetBool("log.compress"),
		config.GetString("log.type"),
		config.GetString("log.level"),
	)
}
