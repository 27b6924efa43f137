package app

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// ValidError one failed field
// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// Validator gin binding.StructValidator backed by validator/v10, with en / zh messages
// Validator 基于 validator/v10 的 gin 校验器，支持中英文错误消息
type Validator struct {
	once     sync.Once
	validate *validator.Validate
	uni      *ut.UniversalTranslator
	err      error
}

var _ binding.StructValidator = (*Validator)(nil)

// NewValidator 创建校验器并注册默认翻译
func NewValidator() (*Validator, error) {
	v := &Validator{}
	v.lazyinit()
	if v.err != nil {
		return nil, v.err
	}
	return v, nil
}

func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
		// 错误中的字段名使用 json 名称
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		v.uni = ut.New(en.New(), en.New(), zh.New())
		enTran, _ := v.uni.GetTranslator("en")
		zhTran, _ := v.uni.GetTranslator("zh")
		if err := en_translations.RegisterDefaultTranslations(v.validate, enTran); err != nil {
			v.err = err
			return
		}
		if err := zh_translations.RegisterDefaultTranslations(v.validate, zhTran); err != nil {
			v.err = err
		}
	})
}

// ValidateStruct validates a struct, a pointer to one, or a slice of them
// ValidateStruct 校验结构体、结构体指针或其切片
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) Engine() any {
	v.lazyinit()
	return v.validate
}

// Translator returns the translator for lang ("en", "zh", "zh_cn", "zh-CN" ...), English when unknown
// Translator 按语言返回翻译器，未知语言使用英文
func (v *Validator) Translator(lang string) ut.Translator {
	v.lazyinit()
	lang = strings.ToLower(strings.TrimSpace(lang))
	if strings.HasPrefix(lang, "zh") {
		lang = "zh"
	} else {
		lang = "en"
	}
	trans, _ := v.uni.GetTranslator(lang)
	return trans
}

// Translate turns a validation failure into ValidErrors; other errors become a single "body" entry
// Translate 把校验错误转换为 ValidErrors；其他错误归为 "body"
func (v *Validator) Translate(err error, lang string) ValidErrors {
	if err == nil {
		return nil
	}
	var errs ValidErrors
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(errs, &ValidError{Key: "body", Message: err.Error()})
	}
	trans := v.Translator(lang)
	for _, e := range verrs {
		errs = append(errs, &ValidError{Key: e.Field(), Message: e.Translate(trans)})
	}
	return errs
}

// Bind decodes a JSON payload into obj and validates it
// Bind 解码 JSON 负载到 obj 并校验
func (v *Validator) Bind(data []byte, obj any, lang string) (bool, ValidErrors) {
	if len(data) > 0 && string(data) != "null" {
		if err := sonic.Unmarshal(data, obj); err != nil {
			return false, ValidErrors{{Key: "body", Message: "Invalid message format"}}
		}
	}
	if err := v.ValidateStruct(obj); err != nil {
		return false, v.Translate(err, lang)
	}
	return true, nil
}

// RequestLang 请求语言：?lang= 优先，其次 Lang / Accept-Language 请求头，最后是全局默认语言
func RequestLang(c *gin.Context) string {
	if l := c.Query("lang"); l != "" {
		return l
	}
	if l := c.GetHeader("Lang"); l != "" {
		return l
	}
	if l := c.GetHeader("Accept-Language"); l != "" {
		return strings.SplitN(l, ",", 2)[0]
	}
	return code.GetGlobalDefaultLang()
}

// BindAndValid binds the request into obj with gin and validates it
// BindAndValid 使用 gin 绑定请求参数并校验
func BindAndValid(c *gin.Context, v *Validator, obj any) (bool, ValidErrors) {
	if err := c.ShouldBind(obj); err != nil {
		return false, v.Translate(err, RequestLang(c))
	}
	return true, nil
}

// Localize rewrites an error wrapping validator.ValidationErrors into ErrorInvalidParams with translated details
// Localize 把包含 validator.ValidationErrors 的错误转换为带翻译详情的参数错误
func (v *Validator) Localize(err error, lang string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return InvalidParams(v.Translate(verrs, lang))
}

// InvalidParams ValidErrors 转换为参数错误码
func InvalidParams(errs ValidErrors) *code.Code {
	return code.ErrorInvalidParams.WithDetails(errs.Errors()...)
}
