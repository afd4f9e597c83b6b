package models

import "time"

// Plugin is a store entry owned by a developer. Its code ships as
// versioned Sources.
type Plugin struct {
	ID               int32  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string `gorm:"index;not null;size:255" json:"username"`
	Name             string `gorm:"not null;size:255" json:"name"`
	ShortDescription string `gorm:"size:1024" json:"short_description"`
	LongDescription  string `gorm:"type:text" json:"long_description"`
	Authornames      string `gorm:"size:1024" json:"authornames"`
	Authorinstitutes string `gorm:"size:1024" json:"authorinstitutes"`
	Authoremails     string `gorm:"size:1024" json:"authoremails"`
	Icon             []byte `json:"icon,omitempty"`
}

// TableName returns the table name for Plugin.
func (Plugin) TableName() string {
	return "plugins"
}

// Source is one version of a Plugin: the uploaded source zip, the build
// outcome and the built assembly zip.
type Source struct {
	PluginID         int32        `gorm:"primaryKey;autoIncrement:false" json:"plugin_id"`
	PluginVersion    int32        `gorm:"primaryKey;autoIncrement:false" json:"plugin_version"`
	BuildVersion     int32        `json:"build_version"`
	ZipFileName      string       `gorm:"size:255" json:"zip_file_name"`
	BuildState       BuildState   `gorm:"index;default:0" json:"build_state"`
	BuildLog         string       `gorm:"type:text" json:"build_log"`
	AssemblyFileName string       `gorm:"size:255" json:"assembly_file_name"`
	UploadDate       *time.Time   `json:"upload_date,omitempty"`
	BuildDate        *time.Time   `json:"build_date,omitempty"`
	PublishState     PublishState `gorm:"index;default:0" json:"publish_state"`
}

// TableName returns the table name for Source.
func (Source) TableName() string {
	return "sources"
}

// PluginAndSource is a published plugin together with the source version
// that made it visible.
type PluginAndSource struct {
	Plugin   Plugin
	Source   Source
	FileSize int64
}
