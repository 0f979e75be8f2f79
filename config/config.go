// Package config 站点配置信息
package config

// Initialize 触发本包各配置文件的 init 注册
func Initialize() {
}
