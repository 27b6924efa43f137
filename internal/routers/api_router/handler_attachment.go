package api_router

import (
	"io"

	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dto"
	"github.com/haierkeys/watermelon-notes/internal/service"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	apperrors "github.com/haierkeys/watermelon-notes/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AttachmentHandler 图片附件 API 路由处理器
type AttachmentHandler struct {
	*Handler
}

func NewAttachmentHandler(a *app.App, v *pkgapp.Validator) *AttachmentHandler {
	return &AttachmentHandler{Handler: NewHandler(a, v)}
}

// Upload stores an image; with insert=true it is also inserted into the active note
// Upload 保存图片；insert=true 时同时插入当前笔记
// @Summary 上传图片附件
// @Tags 附件
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "图片"
// @Param insert formData bool false "是否插入当前笔记"
// @Success 200 {object} pkgapp.Res{data=dto.AttachmentDTO} "成功"
// @Router /api/attachment [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.AttachmentUploadRequest{}
	if valid, errs := pkgapp.BindAndValid(c, h.Validator, params); !valid {
		response.ToResponse(pkgapp.InvalidParams(errs))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("file is required"))
		return
	}
	cfg := h.App.Config().AttachmentConfig()
	if cfg.MaxSize > 0 && fh.Size > cfg.MaxSize {
		response.ToResponse(code.ErrorAttachmentTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithCause(err))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithCause(err))
		return
	}

	ctx := c.Request.Context()
	att, err := h.App.Attachments.Save(ctx, fh.Filename, content)
	if err != nil {
		h.logError(ctx, "AttachmentHandler.Upload", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	h.App.Logger().Info("attachment saved", zap.String("key", att.Key), zap.Int64("size", att.Size))

	data := dto.NewAttachmentDTO(att)
	if params.Insert {
		events, err := h.App.Dispatch(ctx, service.InsertImage{Path: att.URL})
		data.Events = dto.NewEventDTOs(events)
		if err != nil {
			h.logError(ctx, "AttachmentHandler.Upload.InsertImage", err)
			response.ToResponse(apperrors.ToCode(err).WithData(data))
			return
		}
	}
	response.ToResponse(code.Success.WithData(data))
}

// Delete 删除附件
// @Summary 删除图片附件
// @Tags 附件
// @Produce json
// @Param key query string true "对象键"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/attachment [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.AttachmentDeleteRequest{}
	if valid, errs := pkgapp.BindAndValid(c, h.Validator, params); !valid {
		response.ToResponse(pkgapp.InvalidParams(errs))
		return
	}
	ctx := c.Request.Context()
	if err := h.App.Attachments.Delete(ctx, params.Key); err != nil {
		h.logError(ctx, "AttachmentHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}
