package model

const TableNameNote = "notes"

// Note mapped from table <notes>
// Timestamps are kept as ISO-8601 text so that rows written by other tools still load
type Note struct {
	ID        string  `gorm:"column:id;type:varchar(36);primaryKey" json:"id" form:"id"`
	Title     string  `gorm:"column:title;type:text;not null" json:"title" form:"title"`
	Content   string  `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	CreatedAt string  `gorm:"column:created_at;type:varchar(64);not null;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt string  `gorm:"column:updated_at;type:varchar(64);not null;index:idx_notes_updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	Folder    *string `gorm:"column:folder;type:varchar(255);index:idx_notes_folder" json:"folder" form:"folder"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
