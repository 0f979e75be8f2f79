package config

import "bloxforge/pkg/config"

func init() {
	config.Add("roblox", func() map[string]interface{} {
		return map[string]interface{}{
			"users_url":      config.Env("ROBLOX_USERS_URL", "https://users.roblox.com/v1/usernames/users"),
			"thumbnails_url": config.Env("ROBLOX_THUMBNAILS_URL", "https://thumbnails.roblox.com/v1/users/avatar-headshot"),
			"timeout":        config.Env("ROBLOX_TIMEOUT", 10),
		}
	})
}
