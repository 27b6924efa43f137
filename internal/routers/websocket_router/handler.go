// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/watermelon-notes/internal/app"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	apperrors "github.com/haierkeys/watermelon-notes/pkg/errors"
	pkglogger "github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
)

// WSHandler WebSocket 基础 Handler 结构体，封装 App Container
// 所有 WebSocket Handler 都应该嵌入此结构体以获得依赖注入能力
type WSHandler struct {
	App       *app.App
	Validator *pkgapp.Validator
}

// NewWSHandler 创建 WebSocket 基础 Handler 实例
func NewWSHandler(a *app.App, v *pkgapp.Validator) *WSHandler {
	return &WSHandler{App: a, Validator: v}
}

// logError 记录错误日志，包含 Trace ID
func (h *WSHandler) logError(c *pkgapp.WebsocketClient, method string, err error) {
	traceID := GetTraceID(c)

	// 连接关闭导致的错误降级为 debug
	if isNetworkClosedError(err) && c != nil && c.Context().Err() != nil {
		h.logDebug(c, method, zap.Error(err))
		return
	}

	fields := []zap.Field{zap.Error(err), zap.String(pkglogger.FieldTraceID, traceID)}
	switch code.KindOf(err) {
	case code.KindValidation, code.KindNotFound, code.KindDuplicateFolder:
		h.App.Logger().Warn(method, fields...)
	default:
		h.App.Logger().Error(method, fields...)
	}
}

// logDebug 记录调试日志，包含 Trace ID
func (h *WSHandler) logDebug(c *pkgapp.WebsocketClient, method string, fields ...zap.Field) {
	allFields := append([]zap.Field{zap.String(pkglogger.FieldTraceID, GetTraceID(c))}, fields...)
	h.App.Logger().Debug(method, allFields...)
}

// respondError 记录错误日志并把错误码发回当前客户端
func (h *WSHandler) respondError(c *pkgapp.WebsocketClient, err error, action, method string) {
	h.logError(c, method, err)
	if h.Validator != nil && c != nil {
		err = h.Validator.Localize(err, c.Lang)
	}
	c.ToResponse(apperrors.ToCode(err), action)
}

// GetTraceID 从 WebSocket 客户端获取 Trace ID
func GetTraceID(c *pkgapp.WebsocketClient) string {
	if c == nil {
		return ""
	}
	return c.TraceID
}

// isNetworkClosedError 检查是否为网络关闭相关的错误
func isNetworkClosedError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		errors.Is(err, context.Canceled)
}
