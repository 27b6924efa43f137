package dto

// VersionDTO 服务版本信息
type VersionDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// HealthDTO health check result, Status is "healthy" or "unhealthy"
// HealthDTO 健康检查结果
type HealthDTO struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Uptime   float64        `json:"uptime"`
	Database string         `json:"database"`
	Process  *ProcessDTO    `json:"process,omitempty"`
	Memory   *MemoryDTO     `json:"memory,omitempty"`
	Runtime  RuntimeDTO     `json:"runtime"`
	Queue    QueueStatsDTO  `json:"queue"`
	Preview  PreviewPoolDTO `json:"preview"`
}

type ProcessDTO struct {
	PID           int32   `json:"pid"`
	RSS           uint64  `json:"rss"`
	VMS           uint64  `json:"vms"`
	MemoryPercent float32 `json:"memoryPercent"`
	NumThreads    int32   `json:"numThreads"`
}

type MemoryDTO struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"usedPercent"`
}

type RuntimeDTO struct {
	NumGoroutine int    `json:"numGoroutine"`
	HeapAlloc    uint64 `json:"heapAlloc"`
	NumGC        uint32 `json:"numGC"`
	Clients      int    `json:"clients"`
}

// QueueStatsDTO 命令队列中等待执行的操作数
type QueueStatsDTO struct {
	Pending int `json:"pending"`
}

type PreviewPoolDTO struct {
	Workers int   `json:"workers"`
	Queued  int   `json:"queued"`
	Active  int64 `json:"active"`
}

// CommandResponseDTO POST /api/command 的响应数据
type CommandResponseDTO struct {
	Events []EventDTO `json:"events"`
}
