package config

import "bloxforge/pkg/config"

func init() {
	config.Add("notify", func() map[string]interface{} {
		return map[string]interface{}{
			"webhook_url": config.Env("NOTIFY_WEBHOOK_URL", ""),
			"timeout":     config.Env("NOTIFY_TIMEOUT", 5),
		}
	})
}
