package api_router

import (
	"os"
	"runtime"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dto"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App, wss *pkgapp.WebsocketServer) *HealthHandler {
	return &HealthHandler{Handler: NewHandlerWithWSS(a, nil, wss)}
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接、命令队列与进程资源
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthDTO} "成功"
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	pool := h.App.PreviewStats()
	data := dto.HealthDTO{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
		Runtime: dto.RuntimeDTO{
			NumGoroutine: runtime.NumGoroutine(),
			HeapAlloc:    m.HeapAlloc,
			NumGC:        m.NumGC,
		},
		Queue:   dto.QueueStatsDTO{Pending: h.App.QueueLen()},
		Preview: dto.PreviewPoolDTO{Workers: pool.Workers, Queued: pool.Queued, Active: pool.Active},
	}
	if h.WSS != nil {
		data.Runtime.Clients = h.WSS.Count()
	}

	// 进程与系统内存信息获取失败时省略
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		pd := &dto.ProcessDTO{PID: p.Pid}
		if info, err := p.MemoryInfo(); err == nil {
			pd.RSS = info.RSS
			pd.VMS = info.VMS
		}
		pd.MemoryPercent, _ = p.MemoryPercent()
		pd.NumThreads, _ = p.NumThreads()
		data.Process = pd
	}
	if vMem, err := mem.VirtualMemory(); err == nil {
		data.Memory = &dto.MemoryDTO{Total: vMem.Total, Available: vMem.Available, UsedPercent: vMem.UsedPercent}
	}

	if err := h.pingDatabase(c); err != nil || h.App.IsShuttingDown() {
		data.Status = "unhealthy"
		if err != nil {
			data.Database = "error"
		}
		pkgapp.NewResponse(c).ToResponse(code.ErrorServiceBusy.WithData(data))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(data))
}

func (h *HealthHandler) pingDatabase(c *gin.Context) error {
	sqlDB, err := h.App.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c.Request.Context())
}
