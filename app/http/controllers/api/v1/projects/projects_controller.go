// Package projects 插件项目存档
package projects

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"bloxforge/app/requests"
	"bloxforge/app/repositories"
	"bloxforge/pkg/auth"
	"bloxforge/pkg/response"
)

type ProjectsController struct {
	projectRepo *repositories.ProjectRepository
}

// NewProjectsController 创建项目控制器
func NewProjectsController() *ProjectsController {
	return &ProjectsController{
		projectRepo: repositories.NewProjectRepository(),
	}
}

// Index 项目列表，按更新时间倒序分页
func (pc *ProjectsController) Index(c *gin.Context) {
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	pageSize := cast.ToInt(c.DefaultQuery("page_size", "20"))

	list, total, err := pc.projectRepo.ListByUser(c.Request.Context(), auth.CurrentUID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{
		"projects": list,
		"total":    total,
	})
}

// Show 查询单个项目，不存在或不属于调用者都按 404 处理
func (pc *ProjectsController) Show(c *gin.Context) {
	p, err := pc.projectRepo.GetByID(c.Request.Context(), auth.CurrentUID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, p)
}

// Store 创建项目
func (pc *ProjectsController) Store(c *gin.Context) {
	req, err := requests.ValidateProject(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	p, err := pc.projectRepo.Create(c.Request.Context(), auth.CurrentUID(c), req.Name, req.Data)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Created(c, p)
}

// Update 更新项目
func (pc *ProjectsController) Update(c *gin.Context) {
	req, err := requests.ValidateProject(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	p, err := pc.projectRepo.Update(c.Request.Context(), auth.CurrentUID(c), c.Param("id"), map[string]interface{}{
		"name": req.Name,
		"data": req.Data,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, p)
}

// Delete 删除项目（软删除）
func (pc *ProjectsController) Delete(c *gin.Context) {
	err := pc.projectRepo.Delete(c.Request.Context(), auth.CurrentUID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{"deleted": true})
}
