// Package aws_s3 S3 compatible object storage (AWS S3, Cloudflare R2, MinIO)
// Package aws_s3 兼容 S3 的对象存储（AWS S3、Cloudflare R2、MinIO）
package aws_s3

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	// UsePathStyle 使用路径风格的 bucket 地址（MinIO）
	UsePathStyle bool `yaml:"use-path-style"`
}

// ObjectAPI is the part of the S3 client used here
// ObjectAPI 这里用到的 S3 客户端方法
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3 struct {
	S3Client ObjectAPI
	Config   *Config
	logger   *zap.Logger
}

// Option 配置选项函数类型
type Option func(*S3)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3) {
		s.logger = logger
	}
}

// WithObjectAPI replaces the SDK client
// WithObjectAPI 替换 SDK 客户端
func WithObjectAPI(api ObjectAPI) Option {
	return func(s *S3) {
		s.S3Client = api
	}
}

// NewClient 创建 S3 存储实例
func NewClient(conf *Config, opts ...Option) (*S3, error) {
	if conf == nil || conf.BucketName == "" {
		return nil, errors.New("aws_s3: bucket name is required")
	}
	p := &S3{Config: conf, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.S3Client != nil {
		return p, nil
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}
	p.S3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})
	return p, nil
}

func (p *S3) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if p.Config.CustomPath == "" {
		return key
	}
	return path.Join(strings.Trim(p.Config.CustomPath, "/"), key)
}

func (p *S3) SendContent(ctx context.Context, key string, content []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.Config.BucketName),
		Key:           aws.String(p.objectKey(key)),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := p.S3Client.PutObject(ctx, input); err != nil {
		p.logger.Warn("aws_s3 put object failed", zap.String("bucket", p.Config.BucketName), zap.String("key", key), zap.Error(err))
		return errors.Wrap(err, "aws_s3")
	}
	return nil
}

func (p *S3) Delete(ctx context.Context, key string) error {
	_, err := p.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.objectKey(key)),
	})
	return errors.Wrap(err, "aws_s3")
}
