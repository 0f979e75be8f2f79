// Package credits 积分账本与计费任务
package credits

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"bloxforge/app/models/task"
	"bloxforge/app/requests"
	"bloxforge/app/repositories"
	"bloxforge/pkg/auth"
	"bloxforge/pkg/response"

	"gorm.io/gorm"
)

type CreditsController struct {
	ledgerRepo *repositories.LedgerRepository
	taskRepo   *repositories.TaskRepository
}

// NewCreditsController 创建积分控制器
func NewCreditsController() *CreditsController {
	return &CreditsController{
		ledgerRepo: repositories.NewLedgerRepository(),
		taskRepo:   repositories.NewTaskRepository(),
	}
}

// Balance 查询当前余额
func (cc *CreditsController) Balance(c *gin.Context) {
	balance, err := cc.ledgerRepo.Balance(c.Request.Context(), auth.CurrentUID(c))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{"balance": balance})
}

// Sufficient 查询余额是否足以支付指定数额
func (cc *CreditsController) Sufficient(c *gin.Context) {
	amount := cast.ToInt64(c.Query("amount"))
	if amount <= 0 {
		response.Abort400(c, "amount 必须为正整数")
		return
	}

	ok, err := cc.ledgerRepo.SufficientFor(c.Request.Context(), auth.CurrentUID(c), amount)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{"sufficient": ok})
}

// Deduct 创建计费任务并扣费
//
// 扣费失败时任务行留作 failed 对账记录，响应里带它的 ID
func (cc *CreditsController) Deduct(c *gin.Context) {
	req, err := requests.ValidateDeduct(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	u := auth.CurrentUser(c)
	t, err := cc.taskRepo.BeginMetered(c.Request.Context(), u, task.Type(req.Type), req.Amount, task.Payload(req.Payload))
	if errors.Is(err, repositories.ErrInsufficientCredits) {
		response.Abort402(c, gin.H{"task_id": t.ID})
		return
	}
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.Created(c, t)
}

// Transactions 查询积分流水，按时间倒序分页
func (cc *CreditsController) Transactions(c *gin.Context) {
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	pageSize := cast.ToInt(c.DefaultQuery("page_size", "20"))

	list, total, err := cc.ledgerRepo.Transactions(c.Request.Context(), auth.CurrentUID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{
		"transactions": list,
		"total":        total,
	})
}

// ShowTask 查询任务，只允许看自己的
func (cc *CreditsController) ShowTask(c *gin.Context) {
	t, err := cc.taskRepo.GetByID(c.Request.Context(), auth.CurrentUID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, t)
}

// ListTasks 查询任务列表，支持按类型过滤
func (cc *CreditsController) ListTasks(c *gin.Context) {
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	pageSize := cast.ToInt(c.DefaultQuery("page_size", "20"))
	taskType := task.Type(c.Query("type"))

	list, total, err := cc.taskRepo.ListByUser(c.Request.Context(), auth.CurrentUID(c), taskType, page, pageSize)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{
		"tasks": list,
		"total": total,
	})
}

// CompleteTask 任务成功回调，终态迁移恰好一次
func (cc *CreditsController) CompleteTask(c *gin.Context) {
	req, err := requests.ValidateCompleteTask(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	taskID := c.Param("id")
	// 属主校验
	if _, err := cc.taskRepo.GetByID(c.Request.Context(), auth.CurrentUID(c), taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}

	if err := cc.taskRepo.Complete(c.Request.Context(), taskID, req.Result); err != nil {
		if errors.Is(err, repositories.ErrTaskNotProcessing) {
			response.Abort409(c, "任务已处于终态")
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{"completed": true})
}

// FailTask 任务失败回调
func (cc *CreditsController) FailTask(c *gin.Context) {
	req, err := requests.ValidateFailTask(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	taskID := c.Param("id")
	if _, err := cc.taskRepo.GetByID(c.Request.Context(), auth.CurrentUID(c), taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}

	if err := cc.taskRepo.Fail(c.Request.Context(), taskID, req.Error); err != nil {
		if errors.Is(err, repositories.ErrTaskNotProcessing) {
			response.Abort409(c, "任务已处于终态")
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{"failed": true})
}
