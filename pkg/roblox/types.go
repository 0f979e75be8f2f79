package roblox

// Config Roblox 身份服务配置
type Config struct {
	UsersURL      string // 用户查询 API 地址
	ThumbnailsURL string // 头像 API 地址
	TimeoutSec    int
}

// Identity 验证通过的 Roblox 身份
type Identity struct {
	Username  string `json:"username"` // 规范写法的用户名
	UserID    int64  `json:"user_id"`
	AvatarURL string `json:"avatar_url"`
}

// usernamesRequest 批量用户名查询请求体
type usernamesRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

// usernamesResponse 用户名查询响应
type usernamesResponse struct {
	Data []struct {
		RequestedUsername string `json:"requestedUsername"`
		ID                int64  `json:"id"`
		Name              string `json:"name"`
	} `json:"data"`
}

// thumbnailsResponse 头像查询响应
type thumbnailsResponse struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}
