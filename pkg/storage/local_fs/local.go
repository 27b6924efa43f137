package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath string `yaml:"save-path" default:"storage/attachments"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is required")
	}
	return &LocalFS{Config: conf}, nil
}

// Path resolves key inside SavePath; keys escaping it are rejected
// Path 把 key 解析为 SavePath 下的路径，越界的 key 被拒绝
func (p *LocalFS) Path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) || strings.Contains(key, "..") {
		return "", errors.Errorf("local_fs: invalid key %q", key)
	}
	return filepath.Join(p.Config.SavePath, clean), nil
}

func (p *LocalFS) SendContent(ctx context.Context, key string, content []byte, contentType string) error {
	dst, err := p.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0754); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	// 先写临时文件再改名，读取方不会看到写了一半的文件
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return errors.Wrap(err, "local_fs")
	}
	return errors.Wrap(os.Rename(tmp, dst), "local_fs")
}

func (p *LocalFS) Delete(ctx context.Context, key string) error {
	dst, err := p.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}
