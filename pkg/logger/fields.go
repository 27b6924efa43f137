package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldFolder 文件夹名称字段
	FieldFolder = "folder"

	// FieldCommand 命令名称字段
	FieldCommand = "command"

	// FieldEvent 事件名称字段
	FieldEvent = "event"

	// FieldPosition 视图位置字段
	FieldPosition = "position"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldTask 任务名称字段
	FieldTask = "task"

	// FieldApp 应用名称字段
	FieldApp = "app"

	// FieldConfig 配置文件路径字段
	FieldConfig = "config"
)
