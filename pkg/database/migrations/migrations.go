package migrations

import (
	"bloxforge/app/models/credit"
	"bloxforge/app/models/daily"
	"bloxforge/app/models/market"
	"bloxforge/app/models/payment"
	"bloxforge/app/models/project"
	"bloxforge/app/models/task"
	"bloxforge/app/models/token"
	"bloxforge/app/models/user"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&user.User{},
		&token.PluginToken{},
		&credit.Transaction{},
		&task.Task{},
		&daily.LoginRecord{},
		&market.Item{},
		&market.Purchase{},
		&market.Rating{},
		&project.Project{},
		&payment.Payment{},
	}
}
