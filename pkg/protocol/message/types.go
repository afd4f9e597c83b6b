package message

import (
	"time"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// The types below are the wire forms of the store entities. Timestamps
// travel as Unix seconds, zero meaning unset.

// Developer is the wire form of models.Developer. Password is only
// populated by clients creating or updating an account; the server never
// sends it back.
type Developer struct {
	Username  string
	Password  string
	Firstname string
	Lastname  string
	Email     string
	IsAdmin   bool
}

// Plugin is the wire form of models.Plugin.
type Plugin struct {
	ID               int32
	Username         string
	Name             string
	ShortDescription string
	LongDescription  string
	Authornames      string
	Authorinstitutes string
	Authoremails     string
	Icon             []byte
}

// Source is the wire form of models.Source.
type Source struct {
	PluginID         int32
	PluginVersion    int32
	BuildVersion     int32
	ZipFileName      string
	BuildState       models.BuildState
	BuildLog         string
	AssemblyFileName string
	UploadDate       int64
	BuildDate        int64
	PublishState     models.PublishState
}

// Resource is the wire form of models.Resource.
type Resource struct {
	ID          int32
	Username    string
	Name        string
	Description string
}

// ResourceData is the wire form of models.ResourceData.
type ResourceData struct {
	ResourceID      int32
	ResourceVersion int32
	DataFilename    string
	UploadDate      int64
	PublishState    models.PublishState
}

// PluginAndSource pairs a published plugin with its source and the size
// of the assembly available for download.
type PluginAndSource struct {
	Plugin   Plugin
	Source   Source
	FileSize int64
}

// ResourceAndResourceData pairs a published resource with its data
// version and the size of the data file.
type ResourceAndResourceData struct {
	Resource     Resource
	ResourceData ResourceData
	FileSize     int64
}

func unixOrZero(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrNil(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// FromDeveloper converts a stored developer, dropping the password hash.
func FromDeveloper(d models.Developer) Developer {
	return Developer{
		Username:  d.Username,
		Firstname: d.Firstname,
		Lastname:  d.Lastname,
		Email:     d.Email,
		IsAdmin:   d.IsAdmin,
	}
}

// Model returns the stored form. The password is not copied; callers hash
// it separately.
func (d Developer) Model() models.Developer {
	return models.Developer{
		Username:  models.NormalizeUsername(d.Username),
		Firstname: d.Firstname,
		Lastname:  d.Lastname,
		Email:     d.Email,
		IsAdmin:   d.IsAdmin,
	}
}

// FromPlugin converts a stored plugin.
func FromPlugin(p models.Plugin) Plugin {
	return Plugin{
		ID:               p.ID,
		Username:         p.Username,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		Authornames:      p.Authornames,
		Authorinstitutes: p.Authorinstitutes,
		Authoremails:     p.Authoremails,
		Icon:             p.Icon,
	}
}

// Model returns the stored form.
func (p Plugin) Model() models.Plugin {
	return models.Plugin{
		ID:               p.ID,
		Username:         models.NormalizeUsername(p.Username),
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		Authornames:      p.Authornames,
		Authorinstitutes: p.Authorinstitutes,
		Authoremails:     p.Authoremails,
		Icon:             p.Icon,
	}
}

// FromSource converts a stored source.
func FromSource(s models.Source) Source {
	return Source{
		PluginID:         s.PluginID,
		PluginVersion:    s.PluginVersion,
		BuildVersion:     s.BuildVersion,
		ZipFileName:      s.ZipFileName,
		BuildState:       s.BuildState,
		BuildLog:         s.BuildLog,
		AssemblyFileName: s.AssemblyFileName,
		UploadDate:       unixOrZero(s.UploadDate),
		BuildDate:        unixOrZero(s.BuildDate),
		PublishState:     s.PublishState,
	}
}

// Model returns the stored form.
func (s Source) Model() models.Source {
	return models.Source{
		PluginID:         s.PluginID,
		PluginVersion:    s.PluginVersion,
		BuildVersion:     s.BuildVersion,
		ZipFileName:      s.ZipFileName,
		BuildState:       s.BuildState,
		BuildLog:         s.BuildLog,
		AssemblyFileName: s.AssemblyFileName,
		UploadDate:       timeOrNil(s.UploadDate),
		BuildDate:        timeOrNil(s.BuildDate),
		PublishState:     s.PublishState,
	}
}

// FromResource converts a stored resource.
func FromResource(r models.Resource) Resource {
	return Resource{
		ID:          r.ID,
		Username:    r.Username,
		Name:        r.Name,
		Description: r.Description,
	}
}

// Model returns the stored form.
func (r Resource) Model() models.Resource {
	return models.Resource{
		ID:          r.ID,
		Username:    models.NormalizeUsername(r.Username),
		Name:        r.Name,
		Description: r.Description,
	}
}

// FromResourceData converts stored resource data.
func FromResourceData(rd models.ResourceData) ResourceData {
	return ResourceData{
		ResourceID:      rd.ResourceID,
		ResourceVersion: rd.ResourceVersion,
		DataFilename:    rd.DataFilename,
		UploadDate:      unixOrZero(rd.UploadDate),
		PublishState:    rd.PublishState,
	}
}

// Model returns the stored form.
func (rd ResourceData) Model() models.ResourceData {
	return models.ResourceData{
		ResourceID:      rd.ResourceID,
		ResourceVersion: rd.ResourceVersion,
		DataFilename:    rd.DataFilename,
		UploadDate:      timeOrNil(rd.UploadDate),
		PublishState:    rd.PublishState,
	}
}

// FromPluginAndSource converts a published plugin row.
func FromPluginAndSource(ps models.PluginAndSource) PluginAndSource {
	return PluginAndSource{
		Plugin:   FromPlugin(ps.Plugin),
		Source:   FromSource(ps.Source),
		FileSize: ps.FileSize,
	}
}

// FromResourceAndResourceData converts a published resource row.
func FromResourceAndResourceData(rr models.ResourceAndResourceData) ResourceAndResourceData {
	return ResourceAndResourceData{
		Resource:     FromResource(rr.Resource),
		ResourceData: FromResourceData(rr.ResourceData),
		FileSize:     rr.FileSize,
	}
}
