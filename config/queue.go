package config

import "bloxforge/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			"rate_limit":   config.Env("QUEUE_RATE_LIMIT", 100),
			"rate_burst":   config.Env("QUEUE_RATE_BURST", 200),
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 4),
			"job_timeout":  config.Env("QUEUE_JOB_TIMEOUT", 120),
		}
	})
}
