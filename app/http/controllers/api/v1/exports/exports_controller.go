// Package exports 项目导出
package exports

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"bloxforge/app/models/task"
	"bloxforge/app/requests"
	"bloxforge/app/repositories"
	"bloxforge/pkg/auth"
	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/queue"
	"bloxforge/pkg/response"
)

type ExportsController struct {
	taskRepo     *repositories.TaskRepository
	projectRepo  *repositories.ProjectRepository
	queueService *queue.QueueService
}

// NewExportsController 创建导出控制器
func NewExportsController() *ExportsController {
	return &ExportsController{
		taskRepo:     repositories.NewTaskRepository(),
		projectRepo:  repositories.NewProjectRepository(),
		queueService: queue.NewQueueService(),
	}
}

// Store 触发导出
//
// 先扣费创建计费任务，成功后才入队；入队失败立刻把任务
// 记为 failed，避免已扣费却永远不会执行的任务
func (ec *ExportsController) Store(c *gin.Context) {
	req, err := requests.ValidateExport(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	u := auth.CurrentUser(c)

	// 项目必须存在且属于调用者
	if _, err := ec.projectRepo.GetByID(c.Request.Context(), u.ID, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "项目不存在")
			return
		}
		response.ServerError(c, err)
		return
	}

	// 费用按导出格式计，未单独配置的格式走兜底值
	cost := config.GetInt64("credits.cost_export_formats."+req.Format,
		config.GetInt64("credits.cost_export", 3))
	t, err := ec.taskRepo.BeginMetered(c.Request.Context(), u, task.TypeExport, cost, task.Payload{
		"project_id": req.ProjectID,
		"format":     req.Format,
	})
	if errors.Is(err, repositories.ErrInsufficientCredits) {
		response.Abort402(c, gin.H{"task_id": t.ID})
		return
	}
	if err != nil {
		response.ServerError(c, err)
		return
	}

	job := &queue.ExportJob{
		TaskID:    t.ID,
		UserID:    u.ID,
		ProjectID: req.ProjectID,
		Format:    req.Format,
		Options:   req.Options,
		CreatedAt: time.Now(),
	}
	if err := ec.queueService.PushJob(c.Request.Context(), job); err != nil {
		logger.ErrorString("导出", "入队失败", err.Error())
		if failErr := ec.taskRepo.Fail(c.Request.Context(), t.ID, "排队失败"); failErr != nil {
			logger.ErrorString("导出", "标记失败", failErr.Error())
		}
		response.ServerError(c, err)
		return
	}

	response.Created(c, gin.H{
		"task_id": t.ID,
		"status":  t.Status,
	})
}

// Status 轮询导出进度
// 队列状态键是快速通道，任务行是权威记录，两者一起返回
func (ec *ExportsController) Status(c *gin.Context) {
	taskID := c.Param("id")

	t, err := ec.taskRepo.GetByID(c.Request.Context(), auth.CurrentUID(c), taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}

	jobStatus, err := ec.queueService.GetJobStatus(c.Request.Context(), taskID)
	if err != nil {
		// 状态键可能已过期，任务行仍然可用
		jobStatus = ""
	}

	response.Data(c, gin.H{
		"task":       t,
		"job_status": jobStatus,
	})
}

// Index 导出历史
func (ec *ExportsController) Index(c *gin.Context) {
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	pageSize := cast.ToInt(c.DefaultQuery("page_size", "20"))

	list, total, err := ec.taskRepo.ListByUser(c.Request.Context(), auth.CurrentUID(c), task.TypeExport, page, pageSize)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{
		"exports": list,
		"total":   total,
	})
}
