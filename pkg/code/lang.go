package code

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const FALLBACK_LNG = "en"

var supportedLanguages = []string{"en", "zh_cn"}

// Default language is English. It must hold a value before the code variables are built.
// 默认语言为英文；错误码变量初始化前必须已有值
var lng = func() *atomic.Value {
	v := new(atomic.Value)
	v.Store(FALLBACK_LNG)
	return v
}()

// GetMessage method returns the corresponding message according to the current language
// GetMessage 方法根据当前语言返回相应的消息
func (l lang) GetMessage() string {
	if msg := l.get(GetGlobalDefaultLang()); msg != "" {
		return msg
	}
	// If the specified language has no message, return the fallback language message
	// 如果指定语言没有消息，返回回退语言的消息
	if msg := l.get(FALLBACK_LNG); msg != "" {
		return msg
	}
	return fmt.Sprintf("No message available for language: %s", GetGlobalDefaultLang())
}

func (l lang) get(language string) string {
	switch language {
	case "en":
		return l.en
	case "zh_cn":
		return l.zh_cn
	}
	return ""
}

// GetSupportedLanguages returns all languages supported by the lang type
// GetSupportedLanguages 返回 lang 类型支持的所有语言
func GetSupportedLanguages() []string {
	return append([]string{}, supportedLanguages...)
}

// SetGlobalDefaultLang sets the global default language
// 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	for _, l := range supportedLanguages {
		if language == l {
			lng.Store(language)
			return nil
		}
	}
	// If the language is invalid, return an error and set it to the default language
	// 如果语言无效，返回错误并设置为默认语言
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// 获取全局默认语言
func GetGlobalDefaultLang() string {
	if l, ok := lng.Load().(string); ok {
		return l
	}
	return FALLBACK_LNG
}
