// Package storage stores note attachments in a local directory or a remote object store
// Package storage 把笔记附件保存到本地目录或远程对象存储
package storage

import (
	"context"
	"path"
	"strings"

	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/storage/aliyun_oss"
	"github.com/haierkeys/watermelon-notes/pkg/storage/aws_s3"
	"github.com/haierkeys/watermelon-notes/pkg/storage/local_fs"
	"github.com/haierkeys/watermelon-notes/pkg/storage/webdav"

	"go.uber.org/zap"
)

type Type = string

const (
	LOCAL  Type = "localfs"
	S3     Type = "s3"
	R2     Type = "r2"
	MinIO  Type = "minio"
	OSS    Type = "oss"
	WebDAV Type = "webdav"
)

// LocalURLPrefix is where the API serves local attachments
// LocalURLPrefix 本地附件的访问路径前缀
const LocalURLPrefix = "/attachments"

var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	S3:     true,
	R2:     true,
	MinIO:  true,
	OSS:    true,
	WebDAV: true,
}

// Config Unified storage configuration
// Config 统一的存储配置
type Config struct {
	Type      Type   `yaml:"type" default:"localfs"`
	IsEnabled bool   `yaml:"is-enable" default:"true"`
	// CustomPath 对象键前缀
	CustomPath string `yaml:"custom-path"`
	// PublicURL base of the links written into notes; empty serves localfs through the API
	// PublicURL 写入笔记的链接前缀；为空时 localfs 通过 API 提供访问
	PublicURL string `yaml:"public-url"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath       string `yaml:"save-path" default:"storage/attachments"`
	HttpfsIsEnable bool   `yaml:"httpfs-is-enable" default:"true"`
}

// Storager 附件存储后端
type Storager interface {
	// SendContent writes content under key, replacing what was there
	// SendContent 以 key 写入内容，已存在时覆盖
	SendContent(ctx context.Context, key string, content []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// ObjectKey 加上 CustomPath 前缀的对象键
func (c *Config) ObjectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if c.CustomPath == "" {
		return key
	}
	return path.Join(strings.Trim(c.CustomPath, "/"), key)
}

// URL returns the link for a stored key
// URL 返回已保存对象的访问链接
func (c *Config) URL(key string) string {
	if c.PublicURL != "" {
		return strings.TrimSuffix(c.PublicURL, "/") + "/" + c.ObjectKey(key)
	}
	if c.Type == LOCAL || c.Type == "" {
		return LocalURLPrefix + "/" + strings.TrimPrefix(key, "/")
	}
	return c.ObjectKey(key)
}

// ServesLocal reports whether the API should serve SavePath under LocalURLPrefix
// ServesLocal 是否由 API 提供本地附件访问
func (c *Config) ServesLocal() bool {
	return c.IsEnabled && (c.Type == LOCAL || c.Type == "") && c.HttpfsIsEnable && c.PublicURL == ""
}

func NewClient(config *Config, logger *zap.Logger) (Storager, error) {
	if config == nil || !StorageTypeMap[config.Type] {
		return nil, code.ErrorInvalidStorageType
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{SavePath: config.SavePath})
	case S3, R2, MinIO:
		cfg := &aws_s3.Config{
			Region:          config.Region,
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		switch config.Type {
		case R2:
			// R2 使用账户级 endpoint，区域固定为 auto
			cfg.Endpoint = "https://" + config.AccountID + ".r2.cloudflarestorage.com"
			cfg.Region = "auto"
		case MinIO:
			cfg.UsePathStyle = true
		}
		return aws_s3.NewClient(cfg, aws_s3.WithLogger(logger))
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, code.ErrorInvalidStorageType
}
