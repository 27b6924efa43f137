package convert

import (
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/timex"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// converters bridge the domain field types and their wire forms
// converters 领域字段类型与传输格式之间的转换
var converters = []copier.TypeConverter{
	{
		SrcType: uuid.UUID{},
		DstType: copier.String,
		Fn: func(src interface{}) (interface{}, error) {
			return src.(uuid.UUID).String(), nil
		},
	},
	{
		SrcType: time.Time{},
		DstType: timex.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			return timex.Time(src.(time.Time)), nil
		},
	},
}

// StructAssign copies same-named fields from src into dst
// dst 目标结构体，src 源结构体
// 它会把src与dst的相同字段名的值，复制到dst中
func StructAssign(src any, dst any) error {
	return copier.CopyWithOption(dst, src, copier.Option{
		DeepCopy:   true,
		Converters: converters,
	})
}
