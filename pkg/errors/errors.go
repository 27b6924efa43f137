package errors

import (
	"errors"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError 统一应用错误结构体
// 包含错误码、分类、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Kind 错误分类 StorageError / DuplicateFolder / NotFound / ValidationError
	Kind string `json:"kind"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	status int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Status HTTP 状态码
func (e *AppError) Status() int {
	return e.status
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Kind:      string(c.Kind()),
		Message:   c.Msg(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
		status:    c.StatusCode(),
	}
}

// FromError converts any error into an AppError
// FromError 把任意错误转换为 AppError
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, errors.Unwrap(codeErr))
	}
	return NewAppError(code.ErrorServerInternal, err)
}

// ToCode returns the *code.Code carried by err, ErrorServerInternal for foreign errors
// ToCode 返回 err 携带的错误码，非应用错误返回 ErrorServerInternal
func ToCode(err error) *code.Code {
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr
	}
	return code.ErrorServerInternal.WithCause(err)
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err).WithTraceID(c.GetString(traceIDKey))
	c.Set("status_code", appErr.status)
	c.JSON(appErr.status, appErr)
}

// IsAppError 检查错误是否为 AppError 类型
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

const traceIDKey = app.TraceIDKey
