package config

import "bloxforge/pkg/config"

func init() {
	config.Add("credits", func() map[string]interface{} {
		return map[string]interface{}{

			// 新账号初始积分
			"initial_balance": config.Env("CREDITS_INITIAL", 25),

			// 每日签到基础奖励与连签加成上限
			"daily_base":      config.Env("CREDITS_DAILY_BASE", 5),
			"daily_bonus_cap": config.Env("CREDITS_DAILY_BONUS_CAP", 25),

			// 导出任务单次费用，按格式区分，cost_export 为兜底值
			"cost_export": config.Env("CREDITS_COST_EXPORT", 3),
			"cost_export_formats": map[string]interface{}{
				"rbxm":  config.Env("CREDITS_COST_EXPORT_RBXM", 3),
				"rbxmx": config.Env("CREDITS_COST_EXPORT_RBXMX", 3),
				"obj":   config.Env("CREDITS_COST_EXPORT_OBJ", 5),
			},

			// 免扣费身份表，逗号分隔的邮箱或 Roblox 用户名
			"unlimited_identities": config.Env("CREDITS_UNLIMITED_IDENTITIES", ""),
		}
	})
}
