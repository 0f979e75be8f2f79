// Package exporter 对接外部导出服务
//
// 导出产物的生成是黑盒：这里只提交一次请求、拿回文件 URL，
// 单次调用失败即失败，不做自动重试
package exporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
)

// ErrUpstream 导出服务不可达或返回异常
var ErrUpstream = errors.New("exporter upstream error")

// Request 导出请求
type Request struct {
	TaskID    string                 `json:"task_id"`
	UserID    string                 `json:"user_id"`
	ProjectID string                 `json:"project_id"`
	Format    string                 `json:"format"` // rbxm / rbxmx / obj
	Options   map[string]interface{} `json:"options,omitempty"`
}

// Result 导出结果
type Result struct {
	URL string `json:"url"` // 产物下载地址
}

// Service 导出服务客户端
type Service struct {
	http    *resty.Client
	baseURL string
}

// NewService 创建客户端实例
func NewService() *Service {
	timeout := config.GetInt("export.timeout", 120)

	return &Service{
		http: resty.New().
			SetTimeout(time.Duration(timeout) * time.Second).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(config.GetString("export.api_key")),
		baseURL: config.GetString("export.url"),
	}
}

// Run 提交导出任务并等待产物 URL
func (s *Service) Run(ctx context.Context, req *Request) (*Result, error) {
	var result Result
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(s.baseURL)
	if err != nil {
		logger.ErrorString("Exporter", "Run", err.Error())
		return nil, ErrUpstream
	}
	if resp.StatusCode() != 200 {
		logger.ErrorString("Exporter", "Run", fmt.Sprintf("unexpected status %d", resp.StatusCode()))
		return nil, ErrUpstream
	}
	if result.URL == "" {
		return nil, ErrUpstream
	}
	return &result, nil
}
