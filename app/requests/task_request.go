package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"bloxforge/app/models/task"
)

// DeductRequest 计费任务创建请求
type DeductRequest struct {
	Type    string                 `json:"type" valid:"type"`
	Amount  int64                  `json:"amount" valid:"amount"`
	Payload map[string]interface{} `json:"payload"`
}

// ValidateDeduct 验证计费任务创建请求
func ValidateDeduct(c *gin.Context) (DeductRequest, error) {
	rules := govalidator.MapData{
		"type":   []string{"required", "in:chat_message,generate,export"},
		"amount": []string{"required", "numeric_between:1,10000"},
	}
	messages := govalidator.MapData{
		"type": []string{
			"required:任务类型不能为空",
			"in:任务类型必须是 chat_message、generate 或 export",
		},
		"amount": []string{
			"required:扣费数额不能为空",
			"numeric_between:扣费数额必须在 1 到 10000 之间",
		},
	}

	req, err := ValidateRequest[DeductRequest](c, rules, messages)
	if err != nil {
		return req, err
	}

	if !task.ValidType(task.Type(req.Type)) {
		return req, fmt.Errorf("无效的任务类型: %s", req.Type)
	}
	return req, nil
}

// CompleteTaskRequest 任务完成回调请求
type CompleteTaskRequest struct {
	Result string `json:"result" valid:"result"`
}

// ValidateCompleteTask 验证任务完成请求
func ValidateCompleteTask(c *gin.Context) (CompleteTaskRequest, error) {
	rules := govalidator.MapData{
		"result": []string{"max:65535"},
	}
	messages := govalidator.MapData{
		"result": []string{
			"max:任务结果过长",
		},
	}
	return ValidateRequest[CompleteTaskRequest](c, rules, messages)
}

// FailTaskRequest 任务失败回调请求
type FailTaskRequest struct {
	Error string `json:"error" valid:"error"`
}

// ValidateFailTask 验证任务失败请求
func ValidateFailTask(c *gin.Context) (FailTaskRequest, error) {
	rules := govalidator.MapData{
		"error": []string{"required", "max:1024"},
	}
	messages := govalidator.MapData{
		"error": []string{
			"required:失败原因不能为空",
			"max:失败原因过长",
		},
	}
	return ValidateRequest[FailTaskRequest](c, rules, messages)
}
