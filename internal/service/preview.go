package service

import (
	"bytes"
	"context"
	"hash/fnv"
	"strconv"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Runner executes a render job, typically on a bounded worker pool
// Runner 执行渲染任务，通常运行在有界 worker pool 上
type Runner func(ctx context.Context, fn func(context.Context) error) error

// PreviewService renders note content to HTML
// PreviewService 把笔记内容渲染为 HTML
type PreviewService interface {
	Render(ctx context.Context, note domain.Note) (string, error)
}

type previewService struct {
	md     goldmark.Markdown
	run    Runner
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewPreviewService 创建预览服务；run 为 nil 时在调用方 goroutine 中渲染
func NewPreviewService(run Runner, lg *zap.Logger) PreviewService {
	if run == nil {
		run = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &previewService{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// raw HTML stays escaped: html.WithUnsafe is not set
			// 未启用 html.WithUnsafe，原始 HTML 不会透传
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		run:    run,
		sf:     &singleflight.Group{},
		logger: lg,
	}
}

// Render converts the note's markdown; identical concurrent requests share one render
// Render 转换笔记的 markdown；相同内容的并发请求共享一次渲染
func (s *previewService) Render(ctx context.Context, note domain.Note) (string, error) {
	key := previewKey(note)
	v, err, shared := s.sf.Do(key, func() (any, error) {
		var out string
		err := s.run(ctx, func(context.Context) error {
			var buf bytes.Buffer
			if err := s.md.Convert([]byte(note.Content), &buf); err != nil {
				return err
			}
			out = buf.String()
			return nil
		})
		if err != nil {
			return "", err
		}
		return out, nil
	})
	if err != nil {
		s.logger.Warn("note preview render failed", zap.String(logger.FieldNoteID, note.ID.String()), zap.Error(err))
		return "", code.ErrorPreviewRender.WithCause(err)
	}
	if shared {
		s.logger.Debug("note preview shared", zap.String(logger.FieldNoteID, note.ID.String()))
	}
	return v.(string), nil
}

func previewKey(note domain.Note) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(note.Content))
	return note.ID.String() + "@" + strconv.FormatUint(h.Sum64(), 16)
}
