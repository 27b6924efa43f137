package api_router

import (
	"expvar"
	"fmt"

	"github.com/gin-gonic/gin"
)

// Expvar 导出 expvar 运行时指标（memstats、cmdline 等）
func Expvar(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	first := true
	fmt.Fprintf(c.Writer, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		fmt.Fprintf(c.Writer, "%q: %s", kv.Key, kv.Value)
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
