package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricOperation 指标操作类型
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpProcess MetricOperation = "process"
)

// QueueMetrics 队列性能指标收集器
type QueueMetrics struct {
	totalJobs      atomic.Int64
	successfulJobs atomic.Int64
	failedJobs     atomic.Int64

	pushLatency    *latencyStats
	processingTime *latencyStats
}

// latencyStats 延迟统计
type latencyStats struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// NewQueueMetrics 创建新的指标收集器
func NewQueueMetrics() *QueueMetrics {
	return &QueueMetrics{
		pushLatency:    &latencyStats{},
		processingTime: &latencyStats{},
	}
}

// RecordSuccess 记录成功操作
func (m *QueueMetrics) RecordSuccess(op MetricOperation) {
	m.successfulJobs.Add(1)
	m.totalJobs.Add(1)
}

// RecordError 记录失败操作
func (m *QueueMetrics) RecordError(op MetricOperation) {
	m.failedJobs.Add(1)
	m.totalJobs.Add(1)
}

// RecordPushLatency 记录推送延迟
func (m *QueueMetrics) RecordPushLatency(d time.Duration) {
	m.pushLatency.record(d)
}

// RecordProcessingTime 记录任务处理时间
func (m *QueueMetrics) RecordProcessingTime(d time.Duration) {
	m.processingTime.record(d)
}

// Snapshot 指标快照，暴露给健康检查
func (m *QueueMetrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"total":      m.totalJobs.Load(),
		"successful": m.successfulJobs.Load(),
		"failed":     m.failedJobs.Load(),
	}
}

// record 记录延迟数据
func (s *latencyStats) record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.total += d
	if s.min == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}
