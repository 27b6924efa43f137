package dto

import "github.com/haierkeys/watermelon-notes/internal/service"

// AttachmentUploadRequest 附件上传表单，文件字段名为 file
type AttachmentUploadRequest struct {
	// Insert 为 true 时上传后立即在当前笔记选区插入图片
	Insert bool `form:"insert" json:"insert"`
}

// AttachmentDeleteRequest 删除附件
type AttachmentDeleteRequest struct {
	Key string `json:"key" form:"key" binding:"required"`
}

// AttachmentDTO 已保存的附件
type AttachmentDTO struct {
	Key         string     `json:"key"`
	URL         string     `json:"url"`
	Name        string     `json:"name"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	Events      []EventDTO `json:"events,omitempty"`
}

func NewAttachmentDTO(a service.Attachment) *AttachmentDTO {
	return &AttachmentDTO{
		Key:         a.Key,
		URL:         a.URL,
		Name:        a.Name,
		ContentType: a.ContentType,
		Size:        a.Size,
	}
}
