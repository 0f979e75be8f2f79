// Package policies 服务端能力判定
//
// 不信任任何来自客户端的特权声明，判定只依据服务端配置
package policies

import (
	"strings"
	"sync"

	"bloxforge/app/models/user"
	"bloxforge/pkg/config"
)

var (
	unlimitedOnce  sync.Once
	unlimitedTable map[string]struct{}
)

// loadUnlimitedTable 从配置加载「身份 -> 不限积分」能力表
// 配置项为逗号分隔的邮箱或 Roblox 用户名，匹配不区分大小写
func loadUnlimitedTable() {
	unlimitedOnce.Do(func() {
		unlimitedTable = make(map[string]struct{})
		raw := config.GetString("credits.unlimited_identities")
		for _, entry := range strings.Split(raw, ",") {
			entry = strings.ToLower(strings.TrimSpace(entry))
			if entry != "" {
				unlimitedTable[entry] = struct{}{}
			}
		}
	})
}

// CanBypassCredits 判断用户是否持有不限积分能力
// 命中的用户发起计费任务时 credits_cost 记 0 且不走扣费
func CanBypassCredits(u *user.User) bool {
	loadUnlimitedTable()

	if u == nil {
		return false
	}
	if _, ok := unlimitedTable[strings.ToLower(u.Email)]; ok {
		return true
	}
	if u.RobloxUsername != "" {
		if _, ok := unlimitedTable[strings.ToLower(u.RobloxUsername)]; ok {
			return true
		}
	}
	return false
}

// ResetForTesting 仅测试用，重建能力表
func ResetForTesting() {
	unlimitedOnce = sync.Once{}
	unlimitedTable = nil
}
