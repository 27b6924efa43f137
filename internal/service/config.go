// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	// SeedTitle title of the note created when the store is empty // 空库时创建的欢迎笔记标题
	SeedTitle string
	// SeedContent content of the welcome note // 欢迎笔记内容
	SeedContent string
	// DefaultNoteTitle title used by CreateNote without a title // CreateNote 未指定标题时使用的标题
	DefaultNoteTitle string
	// DefaultFolders folders inserted when the folder table is empty // 文件夹表为空时插入的默认文件夹
	DefaultFolders []string
	// Now clock, overridable in tests // 时钟，测试中可替换
	Now func() time.Time
}

// DefaultServiceConfig returns the built-in defaults
// DefaultServiceConfig 返回内置默认配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		SeedTitle:        "Welcome to Watermelon",
		SeedContent:      "This is your first note.",
		DefaultNoteTitle: "New Note",
		DefaultFolders:   []string{"Personal", "Work"},
	}
}

func (c *ServiceConfig) now() time.Time {
	if c != nil && c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *ServiceConfig) orDefault() *ServiceConfig {
	if c == nil {
		return DefaultServiceConfig()
	}
	return c
}
