// Package roblox 对接 Roblox 公开 API 的身份验证客户端
//
// 单次调用、不重试：重试与否是调用方策略，不在这里兜底
package roblox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
)

var (
	// ErrNotFound 上游不存在精确匹配（大小写不敏感）的用户名
	ErrNotFound = errors.New("roblox user not found")
	// ErrUpstream 身份服务不可达或响应异常
	ErrUpstream = errors.New("roblox upstream error")
)

// Client Roblox 身份验证客户端
type Client struct {
	http          *resty.Client
	usersURL      string
	thumbnailsURL string
}

// NewClient 创建客户端实例
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{
			UsersURL:      config.GetString("roblox.users_url"),
			ThumbnailsURL: config.GetString("roblox.thumbnails_url"),
			TimeoutSec:    config.GetInt("roblox.timeout", 10),
		}
	}

	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:          httpClient,
		usersURL:      cfg.UsersURL,
		thumbnailsURL: cfg.ThumbnailsURL,
	}
}

// Verify 验证用户名，返回规范用户名、外部数字 ID 和头像地址
// 匹配规则：大小写不敏感的精确匹配，由上游保证
func (c *Client) Verify(ctx context.Context, rawUsername string) (*Identity, error) {
	rawUsername = strings.TrimSpace(rawUsername)
	if rawUsername == "" {
		return nil, ErrNotFound
	}

	var result usernamesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(usernamesRequest{
			Usernames:          []string{rawUsername},
			ExcludeBannedUsers: true,
		}).
		SetResult(&result).
		Post(c.usersURL)
	if err != nil {
		logger.ErrorString("Roblox", "Verify", err.Error())
		return nil, ErrUpstream
	}
	if resp.StatusCode() != 200 {
		logger.ErrorString("Roblox", "Verify", fmt.Sprintf("unexpected status %d", resp.StatusCode()))
		return nil, ErrUpstream
	}

	if len(result.Data) == 0 {
		return nil, ErrNotFound
	}
	matched := result.Data[0]

	identity := &Identity{
		Username: matched.Name,
		UserID:   matched.ID,
	}

	// 头像是锦上添花，失败不影响验证结果
	if avatarURL, avatarErr := c.avatar(ctx, matched.ID); avatarErr == nil {
		identity.AvatarURL = avatarURL
	}

	return identity, nil
}

// avatar 查询用户头像缩略图地址
func (c *Client) avatar(ctx context.Context, userID int64) (string, error) {
	var result thumbnailsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"userIds": fmt.Sprintf("%d", userID),
			"size":    "150x150",
			"format":  "Png",
		}).
		SetResult(&result).
		Get(c.thumbnailsURL)
	if err != nil {
		return "", ErrUpstream
	}
	if resp.StatusCode() != 200 || len(result.Data) == 0 {
		return "", ErrUpstream
	}
	return result.Data[0].ImageURL, nil
}
