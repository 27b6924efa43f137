// Package aliyun_oss Aliyun OSS attachment storage
// Package aliyun_oss 阿里云 OSS 附件存储
package aliyun_oss

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

// Bucket is the part of *oss.Bucket used here
// Bucket 这里用到的 *oss.Bucket 方法
type Bucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
	DeleteObject(objectKey string, options ...oss.Option) error
}

type OSS struct {
	Client *oss.Client
	Bucket Bucket
	Config *Config
}

func NewClient(conf *Config) (*OSS, error) {
	if conf == nil || conf.BucketName == "" {
		return nil, errors.New("aliyun_oss: bucket name is required")
	}
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return &OSS{Client: client, Bucket: bucket, Config: conf}, nil
}

// NewWithBucket 使用已有的 Bucket 创建实例
func NewWithBucket(conf *Config, bucket Bucket) *OSS {
	return &OSS{Bucket: bucket, Config: conf}
}

func (p *OSS) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if p.Config.CustomPath == "" {
		return key
	}
	return path.Join(strings.Trim(p.Config.CustomPath, "/"), key)
}

func (p *OSS) SendContent(ctx context.Context, key string, content []byte, contentType string) error {
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	return errors.Wrap(p.Bucket.PutObject(p.objectKey(key), bytes.NewReader(content), opts...), "aliyun_oss")
}

func (p *OSS) Delete(ctx context.Context, key string) error {
	return errors.Wrap(p.Bucket.DeleteObject(p.objectKey(key), oss.WithContext(ctx)), "aliyun_oss")
}
