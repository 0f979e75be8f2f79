// 计费任务模型辅助类型
package task

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Payload 客户端提交的任务输入，整体存为 JSON
type Payload map[string]interface{}

// Value 实现 driver.Valuer 接口
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan 实现 sql.Scanner 接口
func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = make(Payload)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("invalid scan source")
		}
	}
	return json.Unmarshal(bytes, p)
}

// ValidType 校验任务类型标签
func ValidType(t Type) bool {
	switch t {
	case TypeChatMessage, TypeGenerate, TypeExport:
		return true
	}
	return false
}
