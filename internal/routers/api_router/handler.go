// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/middleware"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	pkglogger "github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App       *app.App
	Validator *pkgapp.Validator
	WSS       *pkgapp.WebsocketServer
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App, v *pkgapp.Validator) *Handler {
	return &Handler{App: a, Validator: v}
}

// NewHandlerWithWSS 创建带 WebSocket 服务的 Handler 实例
func NewHandlerWithWSS(a *app.App, v *pkgapp.Validator, wss *pkgapp.WebsocketServer) *Handler {
	return &Handler{App: a, Validator: v, WSS: wss}
}

// logError logs at warn for caller mistakes and at error for everything else
// logError 调用方错误记为 warn，其余记为 error
func (h *Handler) logError(ctx context.Context, method string, err error) {
	fields := []zap.Field{
		zap.String(pkglogger.FieldMethod, method),
		zap.String(pkglogger.FieldTraceID, middleware.GetTraceID(ctx)),
		zap.Error(err),
	}
	switch code.KindOf(err) {
	case code.KindValidation, code.KindNotFound, code.KindDuplicateFolder:
		h.App.Logger().Warn(method, fields...)
	default:
		h.App.Logger().Error(method, fields...)
	}
}
