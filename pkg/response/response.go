// Package response 提供统一的 HTTP 响应处理
package response

import (
	"net/http"

	"bloxforge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// 预定义响应状态
const (
	Success = "success" // 成功状态
	Error   = "error"   // 错误状态
)

// 错误类型码，客户端依据此字段做程序化处理
const (
	CodeUnauthorized        = "Unauthorized"        // 令牌缺失/无效/过期
	CodeForbidden           = "Forbidden"           // 身份不允许该操作
	CodeIdentityNotLinked   = "IdentityNotLinked"   // 未绑定 Roblox 身份
	CodeNotFound            = "NotFound"            // 资源不存在或不属于调用者
	CodeInvalidInput        = "InvalidInput"        // 请求体格式错误、取值越界
	CodeConflict            = "Conflict"            // 资源冲突，如重复购买
	CodeInsufficientCredits = "InsufficientCredits" // 积分不足，客户端应引导充值
	CodeUpstreamError       = "UpstreamError"       // 外部身份/通知服务失败
	CodeInternal            = "Internal"            // 未预期的存储层失败
)

/* 标准响应结构
{
    "status": "success",
    "data": {},     // 成功时返回的数据
    "error": "",    // 错误时返回的错误类型码
    "message": "",  // 提示信息
}
*/

// Response 统一响应结构体
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ------------------ 🎯 成功响应系列 ------------------

// Data 响应 200 和数据
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: Success,
		Data:   data,
	})
}

// JSON 直接返回 JSON 数据
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 成功创建的响应
func Created(c *gin.Context, data interface{}, msg ...string) {
	message := "创建成功"
	if len(msg) > 0 {
		message = msg[0]
	}

	c.JSON(http.StatusCreated, Response{
		Status:  Success,
		Message: message,
		Data:    data,
	})
}

//  ------------------ 错误响应系列 ------------------

// Abort400 响应 400 错误
func Abort400(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Error,
		Error:   CodeInvalidInput,
		Message: getMsg("请求参数错误", msg...),
	})
}

// Abort401 响应 401 错误，令牌缺失或无效
func Abort401(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
		Status:  Error,
		Error:   CodeUnauthorized,
		Message: getMsg("登录凭证无效或已过期", msg...),
	})
}

// Abort402 响应 402 错误，积分不足
// data 中携带已创建但失败的任务 ID，客户端可据此查询失败记录
func Abort402(c *gin.Context, data interface{}, msg ...string) {
	c.AbortWithStatusJSON(http.StatusPaymentRequired, Response{
		Status:  Error,
		Error:   CodeInsufficientCredits,
		Message: getMsg("积分不足，请先充值", msg...),
		Data:    data,
	})
}

// Abort403 响应 403 错误
func Abort403(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Response{
		Status:  Error,
		Error:   CodeForbidden,
		Message: getMsg("没有权限执行此操作", msg...),
	})
}

// AbortIdentityNotLinked 响应 403，但错误码区分于普通 Forbidden
// 引导客户端先完成 Roblox 账号绑定
func AbortIdentityNotLinked(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Response{
		Status:  Error,
		Error:   CodeIdentityNotLinked,
		Message: getMsg("请先绑定 Roblox 账号", msg...),
	})
}

// Abort404 响应 404 错误
func Abort404(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{
		Status:  Error,
		Error:   CodeNotFound,
		Message: getMsg("资源不存在", msg...),
	})
}

// Abort409 响应 409 冲突错误
func Abort409(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusConflict, Response{
		Status:  Error,
		Error:   CodeConflict,
		Message: getMsg("资源冲突", msg...),
	})
}

// Abort500 响应 500 错误
func Abort500(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status:  Error,
		Error:   CodeInternal,
		Message: getMsg("服务器内部错误", msg...),
	})
}

// Abort502 响应 502 错误，外部服务失败
func Abort502(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusBadGateway, Response{
		Status:  Error,
		Error:   CodeUpstreamError,
		Message: getMsg("外部服务暂时不可用", msg...),
	})
}

// BadRequest 响应 400 错误（带错误信息）
func BadRequest(c *gin.Context, err error, msg ...string) {
	logger.LogIf(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Error,
		Error:   CodeInvalidInput,
		Message: getMsg("请求格式错误", msg...),
	})
}

// ServerError 响应 500 错误（带错误信息）
func ServerError(c *gin.Context, err error, msg ...string) {
	logger.LogIf(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status:  Error,
		Error:   CodeInternal,
		Message: getMsg("服务器内部错误", msg...),
	})
}

// ValidationError 响应 422 表单验证错误
func ValidationError(c *gin.Context, errors map[string][]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
		Status:  Error,
		Error:   CodeInvalidInput,
		Message: "表单验证失败",
		Data:    errors,
	})
}

// getMsg 获取消息内容
func getMsg(defaultMsg string, msg ...string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return defaultMsg
}
