// Package market 素材市场
package market

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"bloxforge/app/requests"
	"bloxforge/app/repositories"
	"bloxforge/pkg/auth"
	"bloxforge/pkg/notify"
	"bloxforge/pkg/response"
)

type MarketController struct {
	marketRepo *repositories.MarketRepository
	notifier   *notify.Sender
}

// NewMarketController 创建市场控制器
func NewMarketController() *MarketController {
	return &MarketController{
		marketRepo: repositories.NewMarketRepository(),
		notifier:   notify.NewSender(),
	}
}

// Index 上架商品列表
func (mc *MarketController) Index(c *gin.Context) {
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	pageSize := cast.ToInt(c.DefaultQuery("page_size", "20"))

	items, total, err := mc.marketRepo.ListItems(c.Request.Context(), page, pageSize)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{
		"items": items,
		"total": total,
	})
}

// Show 查询单个商品
func (mc *MarketController) Show(c *gin.Context) {
	item, err := mc.marketRepo.GetItem(c.Request.Context(), cast.ToUint64(c.Param("id")))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, item)
}

// Purchase 购买商品
//
// 扣费、购买记录、流水、下载量在一个事务里完成；
// 重复购买返回 Conflict，余额不足返回 InsufficientCredits
func (mc *MarketController) Purchase(c *gin.Context) {
	itemID := cast.ToUint64(c.Param("id"))
	if itemID == 0 {
		response.Abort400(c, "无效的商品 ID")
		return
	}

	p, err := mc.marketRepo.Purchase(c.Request.Context(), auth.CurrentUID(c), itemID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadyPurchased):
			response.Abort409(c, "已购买过该商品")
		case errors.Is(err, repositories.ErrInsufficientCredits):
			response.Abort402(c, nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Abort404(c)
		default:
			response.ServerError(c, err)
		}
		return
	}

	mc.notifier.Send(c.Request.Context(), &notify.Event{
		Type:   "purchase",
		UserID: auth.CurrentUID(c),
		Payload: map[string]interface{}{
			"item_id": itemID,
		},
	})
	response.Created(c, p)
}

// Rate 评分，仅限已购买者；重复评分覆盖旧评分
func (mc *MarketController) Rate(c *gin.Context) {
	req, err := requests.ValidateRate(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	itemID := cast.ToUint64(c.Param("id"))
	item, err := mc.marketRepo.Rate(c.Request.Context(), auth.CurrentUID(c), itemID, req.Score, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotPurchased):
			response.Abort403(c, "购买后才能评分")
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Abort404(c)
		default:
			response.ServerError(c, err)
		}
		return
	}
	response.Data(c, gin.H{
		"rating":       item.Rating,
		"rating_count": item.RatingCount,
	})
}
