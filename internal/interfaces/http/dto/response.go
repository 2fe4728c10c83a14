package dto

import (
	"github.com/gin-gonic/gin"

	"ai-novel-api/pkg/errors"
)

// Response 查询接口的统一响应，与生成接口一样以 success 区分成败
type Response[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Meta    *PageMeta `json:"meta,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ErrorResponse 错误响应，code 为业务错误码
type ErrorResponse struct {
	Success bool             `json:"success"`
	Code    errors.ErrorCode `json:"code"`
	Error   string           `json:"error"`
	Detail  string           `json:"detail,omitempty"`
	TraceID string           `json:"trace_id,omitempty"`
}

// Success 返回成功响应
func Success[T any](c *gin.Context, data T) {
	c.JSON(200, Response[T]{
		Success: true,
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// SuccessWithPage 返回带分页的成功响应
func SuccessWithPage[T any](c *gin.Context, data T, meta *PageMeta) {
	c.JSON(200, Response[T]{
		Success: true,
		Data:    data,
		Meta:    meta,
		TraceID: c.GetString("trace_id"),
	})
}

// Fail 按 AppError 的状态码与错误码写出错误响应
// 非 AppError 一律视为内部错误，底层原因不对外暴露
func Fail(c *gin.Context, err error) {
	appErr := errors.ErrInternalError
	if errors.IsAppError(err) {
		appErr = errors.AsAppError(err)
	}
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Code:    appErr.Code,
		Error:   appErr.Message,
		Detail:  appErr.Detail,
		TraceID: c.GetString("trace_id"),
	})
}

// NewPageMeta 创建分页元数据
func NewPageMeta(page, pageSize, total int) *PageMeta {
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}
	return &PageMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
