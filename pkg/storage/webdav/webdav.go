// Package webdav WebDAV attachment storage
// Package webdav WebDAV 附件存储
package webdav

import (
	"context"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 结构体表示 WebDAV 客户端。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例。No request is made until the first write.
func NewClient(conf *Config) (*WebDAV, error) {
	if conf == nil || conf.Endpoint == "" {
		return nil, errors.New("webdav: endpoint is required")
	}
	return &WebDAV{
		Client: gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password),
		Config: conf,
	}, nil
}

func (w *WebDAV) remotePath(key string) string {
	return path.Join("/", strings.Trim(w.Config.CustomPath, "/"), strings.TrimPrefix(key, "/"))
}

// SendContent 将内容上传到 WebDAV 服务器，必要时创建目录
func (w *WebDAV) SendContent(ctx context.Context, key string, content []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	remote := w.remotePath(key)
	if dir := path.Dir(remote); dir != "/" {
		if err := w.Client.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "webdav")
		}
	}
	return errors.Wrap(w.Client.Write(remote, content, os.ModePerm), "webdav")
}

func (w *WebDAV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := w.Client.Remove(w.remotePath(key))
	if err != nil && gowebdav.IsErrNotFound(err) {
		return nil
	}
	return errors.Wrap(err, "webdav")
}
