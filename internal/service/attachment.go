package service

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var attachmentBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "watermelon",
	Name:      "attachment_bytes_total",
	Help:      "Bytes of attachments stored.",
})

// Attachment is a stored image; URL is what an InsertImage command should reference
// Attachment 已保存的图片；URL 用于 InsertImage 命令
type Attachment struct {
	Key         string
	URL         string
	Name        string
	ContentType string
	Size        int64
}

// AttachmentConfig 附件限制
type AttachmentConfig struct {
	// MaxSize 单个附件最大字节数，0 表示不限制
	MaxSize int64
	// AllowExts 允许的扩展名（含点，小写）
	AllowExts []string
	// DatePath 对象键的日期目录格式
	DatePath string
	// Now 测试用时钟
	Now func() time.Time
}

// AttachmentService stores uploaded images outside the note text
// AttachmentService 保存上传的图片
type AttachmentService interface {
	Save(ctx context.Context, name string, content []byte) (Attachment, error)
	Delete(ctx context.Context, key string) error
}

type attachmentService struct {
	store   storage.Storager
	storage *storage.Config
	config  AttachmentConfig
	allow   map[string]bool
	logger  *zap.Logger
}

// NewAttachmentService 创建附件服务；store 为 nil 时所有保存请求返回 ErrorAttachmentDisabled
func NewAttachmentService(store storage.Storager, sc *storage.Config, c AttachmentConfig, lg *zap.Logger) AttachmentService {
	if lg == nil {
		lg = zap.NewNop()
	}
	if c.DatePath == "" {
		c.DatePath = "200601/02"
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if sc == nil {
		sc = &storage.Config{}
	}
	allow := make(map[string]bool, len(c.AllowExts))
	for _, ext := range c.AllowExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allow[ext] = true
	}
	return &attachmentService{store: store, storage: sc, config: c, allow: allow, logger: lg}
}

// Save checks the extension, the size and the sniffed type, then stores content
// under a date directory with a fresh name, so uploads never overwrite each other.
// Save 校验扩展名、大小与实际类型后保存；对象键为日期目录加新名称，上传互不覆盖
func (s *attachmentService) Save(ctx context.Context, name string, content []byte) (Attachment, error) {
	if s.store == nil {
		return Attachment{}, code.ErrorAttachmentDisabled
	}
	ext := strings.ToLower(path.Ext(name))
	if len(s.allow) > 0 && !s.allow[ext] {
		return Attachment{}, code.ErrorAttachmentTypeNotAllowed.WithDetails(ext)
	}
	if s.config.MaxSize > 0 && int64(len(content)) > s.config.MaxSize {
		return Attachment{}, code.ErrorAttachmentTooLarge
	}
	mt := mimetype.Detect(content)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Attachment{}, code.ErrorAttachmentTypeNotAllowed.WithDetails(mt.String())
	}

	key := s.config.Now().Format(s.config.DatePath) + "/" + uuid.NewString() + ext
	if err := s.store.SendContent(ctx, key, content, mt.String()); err != nil {
		s.logger.Error("attachment save failed", zap.String("key", key), zap.Error(err))
		return Attachment{}, code.ErrorAttachmentSave.WithCause(err)
	}
	attachmentBytesTotal.Add(float64(len(content)))

	return Attachment{
		Key:         key,
		URL:         s.storage.URL(key),
		Name:        name,
		ContentType: mt.String(),
		Size:        int64(len(content)),
	}, nil
}

func (s *attachmentService) Delete(ctx context.Context, key string) error {
	if s.store == nil {
		return code.ErrorAttachmentDisabled
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return code.ErrorAttachmentSave.WithCause(err)
	}
	return nil
}
