// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/dao"
	"github.com/haierkeys/watermelon-notes/internal/service"
	"github.com/haierkeys/watermelon-notes/pkg/logger"
	"github.com/haierkeys/watermelon-notes/pkg/serialqueue"
	"github.com/haierkeys/watermelon-notes/pkg/storage"
	"github.com/haierkeys/watermelon-notes/pkg/util"
	"github.com/haierkeys/watermelon-notes/pkg/workerpool"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	Security SecurityConfig `yaml:"security"`
	Storage  storage.Config `yaml:"storage"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，为空时只输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9100"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9101"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// RateLimitCapacity token bucket size per client IP, 0 disables limiting
	// RateLimitCapacity 每个客户端 IP 的令牌桶容量，0 表示不限流
	RateLimitCapacity int64 `yaml:"rate-limit-capacity" default:"200"`
	// RateLimitFillInterval 令牌填充间隔
	RateLimitFillInterval string `yaml:"rate-limit-fill-interval" default:"1s"`
	// RateLimitQuantum 每次填充的令牌数
	RateLimitQuantum int64 `yaml:"rate-limit-quantum" default:"100"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/notes.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// SeedTitle 空库时创建的欢迎笔记标题
	SeedTitle string `yaml:"seed-title" default:"Welcome to Watermelon"`
	// SeedContent 欢迎笔记内容
	SeedContent string `yaml:"seed-content" default:"This is your first note."`
	// DefaultNoteTitle CreateNote 未指定标题时使用的标题
	DefaultNoteTitle string `yaml:"default-note-title" default:"New Note"`
	// DefaultFolders 文件夹表为空时插入的文件夹
	DefaultFolders []string `yaml:"default-folders" default:"[\"Personal\",\"Work\"]"`
	// AutoFlushCron cron expression for periodic Flush, empty disables it
	// AutoFlushCron 定时保存的 cron 表达式，为空时不启用
	AutoFlushCron string `yaml:"auto-flush-cron"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// Language 响应消息语言 en / zh_cn
	Language string `yaml:"language" default:"en"`
	// IsReturnSussess 是否返回成功信息
	IsReturnSussess bool `yaml:"is-return-sussess" default:"false"`

	// Command Queue 配置
	CommandQueueCapacity int    `yaml:"command-queue-capacity" default:"100"`
	CommandQueueTimeout  string `yaml:"command-queue-timeout" default:"30s"`

	// Preview Worker Pool 配置
	PreviewWorkers   int `yaml:"preview-workers" default:"4"`
	PreviewQueueSize int `yaml:"preview-queue-size" default:"64"`

	// AttachmentMaxSize 单个附件最大大小（MB），0 表示不限制
	AttachmentMaxSize int `yaml:"attachment-max-size" default:"10"`
	// AttachmentAllowExts 允许上传的图片扩展名
	AttachmentAllowExts []string `yaml:"attachment-allow-exts" default:"[\".png\",\".jpg\",\".jpeg\",\".gif\",\".webp\",\".svg\",\".bmp\"]"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// Defaults are applied before decoding only, so an explicit false or "" in the file is kept
	// 默认值只在解码前填充，文件中显式写出的 false 或空字符串保持不变
	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// LoggerConfig 获取日志配置
func (c *AppConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
	}
}

// DaoConfig 获取 dao 层数据库配置
func (c *AppConfig) DaoConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// ServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) ServiceConfig() *service.ServiceConfig {
	sc := service.DefaultServiceConfig()
	if c.App.SeedTitle != "" {
		sc.SeedTitle = c.App.SeedTitle
	}
	sc.SeedContent = c.App.SeedContent
	if c.App.DefaultNoteTitle != "" {
		sc.DefaultNoteTitle = c.App.DefaultNoteTitle
	}
	if c.App.DefaultFolders != nil {
		sc.DefaultFolders = append([]string(nil), c.App.DefaultFolders...)
	}
	return sc
}

// GetCommandQueueConfig 获取命令队列配置
func (c *AppConfig) GetCommandQueueConfig() serialqueue.Config {
	cfg := serialqueue.DefaultConfig()
	if c.App.CommandQueueCapacity > 0 {
		cfg.Capacity = c.App.CommandQueueCapacity
	}
	if c.App.CommandQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.CommandQueueTimeout); err == nil {
			cfg.Timeout = timeout
		}
	}
	return cfg
}

// GetPreviewPoolConfig 获取预览渲染 Worker Pool 配置
func (c *AppConfig) GetPreviewPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.App.PreviewWorkers > 0 {
		cfg.Workers = c.App.PreviewWorkers
	}
	if c.App.PreviewQueueSize > 0 {
		cfg.QueueSize = c.App.PreviewQueueSize
	}
	return cfg
}

// AttachmentConfig 获取附件服务配置
func (c *AppConfig) AttachmentConfig() service.AttachmentConfig {
	return service.AttachmentConfig{
		MaxSize:   int64(c.App.AttachmentMaxSize) << 20,
		AllowExts: append([]string(nil), c.App.AttachmentAllowExts...),
	}
}

// GetRateLimitFillInterval 获取限流令牌填充间隔
func (c *AppConfig) GetRateLimitFillInterval() time.Duration {
	if d, err := util.ParseDuration(c.Security.RateLimitFillInterval); err == nil && d > 0 {
		return d
	}
	return time.Second
}

// GetContextTimeout 获取请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	return util.SecondsOr(c.App.DefaultContextTimeout, 60*time.Second)
}
