package api_router

import (
	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dto"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	apperrors "github.com/haierkeys/watermelon-notes/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommandHandler 会话命令 API 路由处理器
type CommandHandler struct {
	*Handler
}

// NewCommandHandler 创建 CommandHandler 实例
func NewCommandHandler(a *app.App, v *pkgapp.Validator) *CommandHandler {
	return &CommandHandler{Handler: NewHandler(a, v)}
}

// Dispatch runs one session command and returns the events it produced
// Dispatch 执行一条会话命令并返回其产生的事件
// @Summary 执行会话命令
// @Tags 会话
// @Accept json
// @Produce json
// @Param params body dto.CommandRequest true "命令"
// @Success 200 {object} pkgapp.Res{data=dto.CommandResponseDTO} "成功"
// @Router /api/command [post]
func (h *CommandHandler) Dispatch(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CommandRequest{}

	valid, errs := pkgapp.BindAndValid(c, h.Validator, params)
	if !valid {
		h.App.Logger().Warn("CommandHandler.Dispatch.BindAndValid err", zap.Error(errs))
		response.ToResponse(pkgapp.InvalidParams(errs))
		return
	}

	ctx := c.Request.Context()

	cmd, err := dto.DecodeCommand(params.Type, params.Data)
	if err != nil {
		h.logError(ctx, "CommandHandler.Dispatch.DecodeCommand", err)
		apperrors.ErrorResponse(c, h.Validator.Localize(err, pkgapp.RequestLang(c)))
		return
	}

	events, err := h.App.Dispatch(ctx, cmd)
	data := dto.CommandResponseDTO{Events: dto.NewEventDTOs(events)}
	if err != nil {
		h.logError(ctx, "CommandHandler.Dispatch", err)
		// 失败的命令仍然带回已产生的事件（通常是一条 Error 事件）
		response.ToResponse(apperrors.ToCode(err).WithData(data))
		return
	}
	response.ToResponse(code.Success.WithData(data))
}
