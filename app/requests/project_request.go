package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// ProjectRequest 项目创建/更新请求
type ProjectRequest struct {
	Name string `json:"name" valid:"name"`
	Data string `json:"data"`
}

// ValidateProject 验证项目请求
func ValidateProject(c *gin.Context) (ProjectRequest, error) {
	rules := govalidator.MapData{
		"name": []string{"required", "min:1", "max:100"},
	}
	messages := govalidator.MapData{
		"name": []string{
			"required:项目名称不能为空",
			"min:项目名称不能为空",
			"max:项目名称长度不能超过 100 个字符",
		},
	}
	return ValidateRequest[ProjectRequest](c, rules, messages)
}
