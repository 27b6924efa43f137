package api_router

import (
	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dto"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	apperrors "github.com/haierkeys/watermelon-notes/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteHandler 笔记与视图查询 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App, v *pkgapp.Validator) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a, v)}
}

// View 当前过滤后的视图
// @Summary 获取当前视图
// @Tags 笔记
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ViewDTO} "成功"
// @Router /api/view [get]
func (h *NoteHandler) View(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.App.View(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.View", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.NewViewDTO(view)))
}

// Folders 文件夹名称列表
// @Summary 获取文件夹列表
// @Tags 文件夹
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.FolderListDTO} "成功"
// @Router /api/folders [get]
func (h *NoteHandler) Folders(c *gin.Context) {
	ctx := c.Request.Context()
	names, err := h.App.Folders(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.Folders", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(&dto.FolderListDTO{Names: names}))
}

// List 全部笔记，包含未保存的内容
// @Summary 获取笔记列表
// @Tags 笔记
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]dto.NoteDTO} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	notes, err := h.App.Notes(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	out := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, dto.NewNoteDTO(n))
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(out))
}

// Get 单条笔记
// @Summary 获取笔记详情
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteGetRequest true "获取参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/note [get]
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteGetRequest{}
	if valid, errs := pkgapp.BindAndValid(c, h.Validator, params); !valid {
		h.App.Logger().Warn("NoteHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(pkgapp.InvalidParams(errs))
		return
	}

	id, err := uuid.Parse(params.ID)
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id", err.Error()))
		return
	}

	ctx := c.Request.Context()
	n, err := h.App.Note(ctx, id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(dto.NewNoteDTO(n)))
}

// Preview 渲染笔记当前内容为 HTML
// @Summary 笔记渲染预览
// @Tags 笔记
// @Produce json
// @Param params query dto.NotePreviewRequest true "预览参数"
// @Success 200 {object} pkgapp.Res{data=dto.NotePreviewDTO} "成功"
// @Router /api/note/preview [get]
func (h *NoteHandler) Preview(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NotePreviewRequest{}
	if valid, errs := pkgapp.BindAndValid(c, h.Validator, params); !valid {
		h.App.Logger().Warn("NoteHandler.Preview.BindAndValid err", zap.Error(errs))
		response.ToResponse(pkgapp.InvalidParams(errs))
		return
	}

	id, err := uuid.Parse(params.ID)
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id", err.Error()))
		return
	}

	ctx := c.Request.Context()
	n, html, err := h.App.Preview(ctx, id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Preview", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(&dto.NotePreviewDTO{
		ID:    n.ID.String(),
		Title: n.Title,
		HTML:  html,
	}))
}
