// Package timex wraps time.Time with the ISO-8601 text form used in storage
// Package timex 封装 time.Time，提供存储使用的 ISO-8601 文本格式
package timex

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO-8601 layout written to the notes table
// Layout 写入 notes 表的 ISO-8601 格式
const Layout = time.RFC3339Nano

// parseLayouts are tried in order when reading; older rows may lack fractions or a zone
// parseLayouts 读取时依次尝试；旧数据可能没有小数秒或时区
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type Time time.Time

// Now 当前时间（UTC）
func Now() Time {
	return Time(time.Now().UTC())
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// String renders the storage form
// String 输出存储格式
func (t Time) String() string {
	return Format(time.Time(t))
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = Time{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = Time(v)
	return nil
}

func (t Time) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *Time) Scan(v interface{}) error {
	switch x := v.(type) {
	case time.Time:
		*t = Time(x)
		return nil
	case string:
		p, err := Parse(x)
		if err != nil {
			return err
		}
		*t = Time(p)
		return nil
	case []byte:
		return t.Scan(string(x))
	case nil:
		*t = Time{}
		return nil
	}
	return fmt.Errorf("timex: cannot scan %T", v)
}

// Format renders t in UTC with nanosecond precision
// Format 以 UTC 纳秒精度输出
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads any of the accepted ISO-8601 forms
// Parse 解析可接受的 ISO-8601 格式
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Later returns the later of a and b
// Later 返回 a 和 b 中较晚的时间
func Later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
