package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 错误响应结构，契约固定为 {"message": <string>}。
type Response struct {
	Message string `json:"message"`
}

// OK 成功响应（200），直接序列化资源表示。
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功响应（201）。
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 删除成功响应（204）。
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Message 带提示消息的成功响应（200）。
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{Message: msg})
}

// BadRequest 请求参数错误响应（400）。
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Message: msg})
}

// Unauthorized 未认证或无权限响应（401）。
// 两种失败共用同一信号，不向调用方区分。
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Message: msg})
}

// NotFound 资源不存在响应（404）。
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Message: msg})
}

// InternalError 服务器内部错误响应（500）。
// 只返回稳定的通用消息，原始错误由处理器记录到日志。
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Response{Message: MsgInternalError})
}
