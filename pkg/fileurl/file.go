package fileurl

import (
	"os"
	"path/filepath"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 所在目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// FirstExisting returns the first candidate that exists, or "" when none does
// FirstExisting 返回第一个存在的候选路径，都不存在时返回空字符串
func FirstExisting(candidates ...string) string {
	for _, c := range candidates {
		if c != "" && IsExist(c) && !IsDir(c) {
			return c
		}
	}
	return ""
}

// WriteNew creates dst with content, creating parent directories.
// An existing file is left untouched and created is false.
// WriteNew 创建文件并写入内容，文件已存在时不覆盖
func WriteNew(dst string, content []byte) (created bool, err error) {
	if IsExist(dst) {
		return false, nil
	}
	if err := CreatePath(dst, 0754); err != nil {
		return false, err
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return false, err
	}
	return true, nil
}
