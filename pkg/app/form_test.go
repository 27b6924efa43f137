package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formRequest struct {
	Name string `json:"name" binding:"required"`
	ID   string `json:"id" binding:"omitempty,uuid"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateStruct(nil))
	assert.NoError(t, v.ValidateStruct((*formRequest)(nil)))
	assert.NoError(t, v.ValidateStruct(&formRequest{Name: "a"}))
	assert.Error(t, v.ValidateStruct(formRequest{}))
	assert.Error(t, v.ValidateStruct([]formRequest{{Name: "a"}, {}}))
	assert.NoError(t, v.ValidateStruct(3))
}

func TestValidator_Translate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	verr := v.ValidateStruct(&formRequest{ID: "nope"})
	require.Error(t, verr)

	en := v.Translate(verr, "en")
	require.Len(t, en, 2)
	assert.Equal(t, "name", en[0].Key)
	assert.Equal(t, "name is a required field", en[0].Message)

	zh := v.Translate(verr, "zh-CN")
	require.Len(t, zh, 2)
	assert.Equal(t, "name为必填字段", zh[0].Message)

	other := v.Translate(assert.AnError, "en")
	require.Len(t, other, 1)
	assert.Equal(t, "body", other[0].Key)
}

func TestValidator_Bind(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	var ok formRequest
	valid, errs := v.Bind([]byte(`{"name":"x"}`), &ok, "en")
	assert.True(t, valid)
	assert.Empty(t, errs)
	assert.Equal(t, "x", ok.Name)

	var bad formRequest
	valid, errs = v.Bind([]byte(`{"name":`), &bad, "en")
	assert.False(t, valid)
	assert.Equal(t, "body", errs[0].Key)

	valid, errs = v.Bind(nil, &bad, "en")
	assert.False(t, valid)
	assert.Equal(t, "name", errs[0].Key)
}

func TestValidator_Localize(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	wrapped := code.ErrorInvalidParams.WithCause(v.ValidateStruct(&formRequest{}))
	out := v.Localize(wrapped, "zh")
	require.Error(t, out)
	assert.True(t, code.ErrorInvalidParams.Is(out))
	assert.Contains(t, out.(*code.Code).Details(), "name为必填字段")

	plain := code.ErrorNoteNotFound
	assert.Same(t, plain, v.Localize(plain, "en"))
}

func TestBindAndValid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v, err := NewValidator()
	require.NoError(t, err)
	prev := binding.Validator
	binding.Validator = v
	t.Cleanup(func() { binding.Validator = prev })

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req formRequest
		if valid, errs := BindAndValid(c, v, &req); !valid {
			NewResponse(c).ToResponse(InvalidParams(errs))
			return
		}
		c.String(http.StatusOK, req.Name)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/?lang=zh", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name为必填字段")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequestLang(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, code.GetGlobalDefaultLang(), RequestLang(c))

	c.Request.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	assert.Equal(t, "zh-CN", RequestLang(c))

	// gin 缓存查询参数，新请求使用新的 Context
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	c.Request.Header.Set("Lang", "zh")
	assert.Equal(t, "en", RequestLang(c))
}
