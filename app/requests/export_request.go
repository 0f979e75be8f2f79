package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// ExportRequest 导出任务请求
type ExportRequest struct {
	ProjectID string                 `json:"project_id" valid:"project_id"`
	Format    string                 `json:"format" valid:"format"`
	Options   map[string]interface{} `json:"options"`
}

// ValidateExport 验证导出请求
func ValidateExport(c *gin.Context) (ExportRequest, error) {
	rules := govalidator.MapData{
		"project_id": []string{"required"},
		"format":     []string{"required", "in:rbxm,rbxmx,obj"},
	}
	messages := govalidator.MapData{
		"project_id": []string{
			"required:项目 ID 不能为空",
		},
		"format": []string{
			"required:导出格式不能为空",
			"in:导出格式必须是 rbxm、rbxmx 或 obj",
		},
	}
	return ValidateRequest[ExportRequest](c, rules, messages)
}
