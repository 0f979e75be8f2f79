package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bloxforge/app/repositories"
	"bloxforge/pkg/exporter"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/notify"
)

// Worker 导出队列工作器
type Worker struct {
	queueService  *QueueService
	exportService *exporter.Service
	notifySender  *notify.Sender
	stopChan      chan struct{}
	workerCount   int
	metrics       *QueueMetrics
	wg            sync.WaitGroup
	config        WorkerConfig
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	JobTimeout      time.Duration // 单个任务处理超时
	ShutdownTimeout time.Duration // 关闭超时时间
}

// NewWorker 创建新的工作器组
func NewWorker(qs *QueueService, es *exporter.Service, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 10
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 2 * time.Minute
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService:  qs,
		exportService: es,
		notifySender:  notify.NewSender(),
		stopChan:      make(chan struct{}),
		workerCount:   config.WorkerCount,
		metrics:       NewQueueMetrics(),
		config:        config,
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
			if err := w.processNextJob(); err != nil {
				logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
				time.Sleep(time.Second) // 错误恢复延迟
			}
		}
	}
}

// processNextJob 取出并处理一个导出任务
func (w *Worker) processNextJob() error {
	start := time.Now()
	defer func() {
		w.metrics.RecordProcessingTime(time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	job, err := w.queueService.PopJob(ctx)
	if err != nil {
		return fmt.Errorf("pop job error: %w", err)
	}
	if job == nil {
		time.Sleep(100 * time.Millisecond) // 避免空队列时的忙等
		return nil
	}

	return w.handleJob(job)
}

// handleJob 处理单个导出任务
// 导出服务只调一次，失败即把计费任务记为 failed，不自动退积分
func (w *Worker) handleJob(job *ExportJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.JobTimeout)
	defer cancel()

	if err := w.queueService.UpdateJobStatus(ctx, job.TaskID, JobRunning, ""); err != nil {
		return fmt.Errorf("update job status error: %w", err)
	}

	taskRepo := repositories.NewTaskRepository()

	result, err := w.exportService.Run(ctx, &exporter.Request{
		TaskID:    job.TaskID,
		UserID:    job.UserID,
		ProjectID: job.ProjectID,
		Format:    job.Format,
		Options:   job.Options,
	})
	if err != nil {
		w.metrics.RecordError(OpProcess)
		if failErr := taskRepo.Fail(ctx, job.TaskID, err.Error()); failErr != nil {
			logger.ErrorString("Worker", "FailTask", failErr.Error())
		}
		if updateErr := w.queueService.UpdateJobStatus(ctx, job.TaskID, JobFailed, err.Error()); updateErr != nil {
			logger.ErrorString("Worker", "UpdateStatus", updateErr.Error())
		}
		w.notifySender.Send(ctx, &notify.Event{
			Type:   "export_failed",
			UserID: job.UserID,
			Payload: map[string]interface{}{
				"task_id": job.TaskID,
				"error":   err.Error(),
			},
		})
		return fmt.Errorf("process job error: %w", err)
	}

	// 先落库终态，再刷新轮询用的状态键
	if err := taskRepo.Complete(ctx, job.TaskID, result.URL); err != nil {
		// 旁路任务建单即 completed，终态挡住状态迁移时把产出补到任务行
		if errors.Is(err, repositories.ErrTaskNotProcessing) {
			if attachErr := taskRepo.AttachResult(ctx, job.TaskID, result.URL); attachErr != nil {
				logger.ErrorString("Worker", "AttachResult", attachErr.Error())
			}
		} else {
			logger.ErrorString("Worker", "CompleteTask", err.Error())
		}
	}
	if err := w.queueService.UpdateJobStatus(ctx, job.TaskID, JobCompleted, result.URL); err != nil {
		return fmt.Errorf("update job result error: %w", err)
	}

	w.notifySender.Send(ctx, &notify.Event{
		Type:   "export_completed",
		UserID: job.UserID,
		Payload: map[string]interface{}{
			"task_id": job.TaskID,
			"url":     result.URL,
		},
	})

	w.metrics.RecordSuccess(OpProcess)
	return nil
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
