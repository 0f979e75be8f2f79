package config

import "bloxforge/pkg/config"

func init() {
	config.Add("export", func() map[string]interface{} {
		return map[string]interface{}{
			"url":     config.Env("EXPORT_URL", ""),
			"api_key": config.Env("EXPORT_API_KEY", ""),
			"timeout": config.Env("EXPORT_TIMEOUT", 120),
		}
	})
}
