package models

import "time"

// Resource is a named binary resource owned by a developer. Its content
// ships as versioned ResourceData.
type Resource struct {
	ID          int32  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string `gorm:"index;not null;size:255" json:"username"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName returns the table name for Resource.
func (Resource) TableName() string {
	return "resources"
}

// ResourceData is one version of a Resource's data file.
type ResourceData struct {
	ResourceID      int32        `gorm:"primaryKey;autoIncrement:false" json:"resource_id"`
	ResourceVersion int32        `gorm:"primaryKey;autoIncrement:false" json:"resource_version"`
	DataFilename    string       `gorm:"size:255" json:"data_filename"`
	UploadDate      *time.Time   `json:"upload_date,omitempty"`
	PublishState    PublishState `gorm:"index;default:0" json:"publish_state"`
}

// TableName returns the table name for ResourceData.
func (ResourceData) TableName() string {
	return "resource_data"
}

// ResourceAndResourceData is a published resource together with the data
// version that made it visible.
type ResourceAndResourceData struct {
	Resource     Resource
	ResourceData ResourceData
	FileSize     int64
}
