package bootstrap

import (
	"time"

	"bloxforge/pkg/config"
	"bloxforge/pkg/exporter"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/queue"
	"bloxforge/pkg/redis"
)

// SetupQueue 启动导出任务的后台工作器组
func SetupQueue() {
	if redis.Manager == nil {
		logger.ErrorString("Queue", "Setup", "Redis manager not initialized")
		return
	}

	queueService := queue.NewQueueService()
	exportService := exporter.NewService()

	worker := queue.NewWorker(queueService, exportService, queue.WorkerConfig{
		WorkerCount:     config.GetInt("queue.worker_count", 4),
		JobTimeout:      time.Duration(config.GetInt("queue.job_timeout", 120)) * time.Second,
		ShutdownTimeout: 30 * time.Second,
	})

	go worker.Start()

	logger.InfoString("Queue", "Setup", "导出队列服务启动成功")
}
