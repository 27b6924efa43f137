package domain

import "strings"

// Scope labels shown for the two built-in scopes; folders may not use them
// 两个内置范围的显示名称；文件夹不能使用
const (
	ScopeLabelAll      = "All Notes"
	ScopeLabelUntagged = "Untagged"
)

// Folder 文件夹领域模型，名称即唯一键
type Folder struct {
	Name string
}

// NormalizeFolderName trims surrounding whitespace
// NormalizeFolderName 去除首尾空白
func NormalizeFolderName(name string) string {
	return strings.TrimSpace(name)
}

// IsReservedFolderName 判断是否为保留名称
func IsReservedFolderName(name string) bool {
	return name == ScopeLabelAll || name == ScopeLabelUntagged
}
