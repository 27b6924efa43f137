package code

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a coded application error or success result
// Code 带错误码的应用结果（错误或成功）
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误分类，例如 StorageError
	kind Kind
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
	// 原始错误
	cause error
}

// Kind is the error category surfaced to the presentation layer
// Kind 展示层可见的错误分类
type Kind string

const (
	KindNone            Kind = ""
	KindStorage         Kind = "StorageError"
	KindDuplicateFolder Kind = "DuplicateFolder"
	KindNotFound        Kind = "NotFound"
	KindValidation      Kind = "ValidationError"
	KindInternal        Kind = "InternalError"
)

var codes = map[int]string{}

func NewError(code int, kind Kind, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, kind: kind, Lang: l}
}

var sussCodes = map[int]string{}

func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本
// The package level codes are shared, every With* call works on a copy
// 包级别的错误码是共享的，所有 With* 调用都在副本上进行
func (e *Code) Clone() *Code {
	c := &Code{
		code:        e.code,
		status:      e.status,
		kind:        e.kind,
		Lang:        e.Lang,
		data:        e.data,
		haveData:    e.haveData,
		haveDetails: e.haveDetails,
		cause:       e.cause,
	}
	c.details = append([]string{}, e.details...)
	return c
}

func (e *Code) Error() string {
	if e.haveDetails && len(e.details) > 0 {
		return fmt.Sprintf("%s: %v", e.Msg(), e.details)
	}
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Kind() Kind {
	return e.kind
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// WithCause keeps the underlying error for errors.Unwrap
// WithCause 保留底层错误，支持 errors.Unwrap
func (e *Code) WithCause(err error) *Code {
	c := e.Clone()
	c.cause = err
	if err != nil {
		c.haveDetails = true
		c.details = append(c.details, err.Error())
	}
	return c
}

func (e *Code) Unwrap() error {
	return e.cause
}

// Is 比较错误码，使 errors.Is(err, code.ErrorStorage) 成立
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *Code) StatusCode() int {
	switch e.code {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return e.code
	}
	switch e.kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateFolder:
		return http.StatusConflict
	case KindStorage, KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// KindOf returns the category of err, KindInternal for foreign errors and KindNone for nil
// KindOf 返回错误分类
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var c *Code
	if errors.As(err, &c) {
		return c.kind
	}
	return KindInternal
}
