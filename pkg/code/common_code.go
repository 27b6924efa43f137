package code

var (
	Success = NewSuss(200, lang{en: "Success", zh_cn: "成功"})

	ErrorServerInternal  = NewError(500, KindInternal, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams   = NewError(400, KindValidation, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorTooManyRequests = NewError(429, KindValidation, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorNotFound        = NewError(404, KindNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})
	ErrorServiceBusy     = NewError(503, KindInternal, lang{en: "Service is busy, try again later", zh_cn: "服务繁忙，请稍后再试"})

	// 存储
	ErrorStorage      = NewError(5001, KindStorage, lang{en: "Storage operation failed", zh_cn: "存储操作失败"})
	ErrorStorageLoad  = NewError(5002, KindStorage, lang{en: "Failed to load notes from storage", zh_cn: "从存储加载笔记失败"})
	ErrorStorageWrite = NewError(5003, KindStorage, lang{en: "Failed to write to storage", zh_cn: "写入存储失败"})
	ErrorFlushFailed  = NewError(5004, KindStorage, lang{en: "Failed to save pending edits", zh_cn: "保存未提交的编辑失败"})

	// 预览
	ErrorPreviewRender = NewError(5101, KindInternal, lang{en: "Failed to render note preview", zh_cn: "笔记预览渲染失败"})

	// 笔记
	ErrorNoteNotFound     = NewError(4101, KindNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteTitleInvalid = NewError(4102, KindValidation, lang{en: "Invalid note title", zh_cn: "笔记标题无效"})
	ErrorPatchInvalid     = NewError(4103, KindValidation, lang{en: "Content patch could not be applied", zh_cn: "内容补丁无法应用"})
	ErrorStaleView        = NewError(4104, KindValidation, lang{en: "The list has changed, position is stale", zh_cn: "列表已变化，位置已失效"})
	ErrorPositionInvalid  = NewError(4105, KindNotFound, lang{en: "No note at this position", zh_cn: "该位置没有笔记"})
	ErrorMarkupInvalid    = NewError(4106, KindValidation, lang{en: "Unknown markup kind", zh_cn: "未知的标记类型"})
	ErrorCommandInvalid   = NewError(4107, KindValidation, lang{en: "Unknown command", zh_cn: "未知的命令"})

	// 文件夹
	ErrorFolderNameEmpty    = NewError(4201, KindValidation, lang{en: "Folder name cannot be empty", zh_cn: "文件夹名称不能为空"})
	ErrorFolderNameReserved = NewError(4202, KindValidation, lang{en: "Folder name is reserved", zh_cn: "文件夹名称为保留名称"})
	ErrorFolderExists       = NewError(4203, KindDuplicateFolder, lang{en: "Folder already exists", zh_cn: "文件夹已存在"})
	ErrorFolderNotFound     = NewError(4204, KindNotFound, lang{en: "Folder not found", zh_cn: "文件夹不存在"})

	// 附件
	ErrorAttachmentTypeNotAllowed = NewError(4301, KindValidation, lang{en: "File type is not allowed", zh_cn: "不允许的文件类型"})
	ErrorAttachmentTooLarge       = NewError(4302, KindValidation, lang{en: "File exceeds the size limit", zh_cn: "文件超过大小限制"})
	ErrorAttachmentDisabled       = NewError(4303, KindValidation, lang{en: "Attachment storage is disabled", zh_cn: "附件存储未启用"})
	ErrorInvalidStorageType       = NewError(5005, KindInternal, lang{en: "Unsupported storage type", zh_cn: "不支持的存储类型"})
	ErrorAttachmentSave           = NewError(5006, KindStorage, lang{en: "Failed to save attachment", zh_cn: "保存附件失败"})
)
