package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"bloxforge/pkg/config"
	"bloxforge/pkg/redis"
)

// JobStatus 队列内任务状态，用于轮询接口的快速读取
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ExportJob 导出任务
// TaskID 对应 tasks 表中已扣费的计费任务行
type ExportJob struct {
	TaskID    string                 `json:"task_id"`
	UserID    string                 `json:"user_id"`
	ProjectID string                 `json:"project_id"`
	Format    string                 `json:"format"`
	Options   map[string]interface{} `json:"options,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// QueueService Redis 队列服务
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建新的队列服务实例
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "bloxforge:queue"),
		timeout:     time.Duration(config.GetInt("redis.queue_timeout", 3600)) * time.Second,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

// PushJob 将导出任务推送到队列
func (q *QueueService) PushJob(ctx context.Context, job *ExportJob) error {
	// 应用限流
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	jobJSON, err := json.Marshal(job)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	// 入队和状态键同一管道写入
	key := fmt.Sprintf("%s:jobs", q.prefix)
	statusKey := fmt.Sprintf("%s:status:%s", q.prefix, job.TaskID)

	pipe := q.client.Client.Pipeline()
	pipe.LPush(ctx, key, jobJSON)
	pipe.Set(ctx, statusKey, string(JobPending), q.timeout)

	if _, err = pipe.Exec(ctx); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push job: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// popIdle 空轮询：队列无任务或等待超时，不算失败
// go-redis v9 返回的 context 错误可能被包装，必须用 errors.Is 判断
func popIdle(err error) bool {
	return errors.Is(err, goredis.Nil) || errors.Is(err, context.DeadlineExceeded)
}

// PopJob 从队列中阻塞获取任务
func (q *QueueService) PopJob(ctx context.Context) (*ExportJob, error) {
	key := fmt.Sprintf("%s:jobs", q.prefix)

	result, err := q.client.Client.BRPop(ctx, 0, key).Result()
	if err != nil {
		if popIdle(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job from queue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("invalid result from queue")
	}

	var job ExportJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// UpdateJobStatus 更新队列状态键（带可选结果）
func (q *QueueService) UpdateJobStatus(ctx context.Context, taskID string, status JobStatus, result string) error {
	statusKey := fmt.Sprintf("%s:status:%s", q.prefix, taskID)
	if err := q.client.Client.Set(ctx, statusKey, string(status), q.timeout).Err(); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	if result != "" {
		resultKey := fmt.Sprintf("%s:result:%s", q.prefix, taskID)
		if err := q.client.Client.Set(ctx, resultKey, result, q.timeout).Err(); err != nil {
			return fmt.Errorf("failed to save job result: %w", err)
		}
	}

	return nil
}

// GetJobStatus 读取队列状态键，任务不存在时返回空串
func (q *QueueService) GetJobStatus(ctx context.Context, taskID string) (JobStatus, error) {
	statusKey := fmt.Sprintf("%s:status:%s", q.prefix, taskID)
	status, err := q.client.Client.Get(ctx, statusKey).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get job status: %w", err)
	}

	return JobStatus(status), nil
}

// Ping 检查队列服务健康状态
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Ping()
}
