package model

const TableNameFolder = "folders"

// Folder mapped from table <folders>
type Folder struct {
	Name string `gorm:"column:name;type:varchar(255);primaryKey" json:"name" form:"name"`
}

// TableName Folder's table name
func (*Folder) TableName() string {
	return TableNameFolder
}
