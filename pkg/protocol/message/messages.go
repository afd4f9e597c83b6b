package message

import (
	"fmt"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// Message is one decoded protocol message. Implementations are pointers to
// the structs below; their exported fields are the XDR payload in
// declaration order.
type Message interface {
	Kind() Kind
}

// ----------------------------------------------------------------------------
// Login / Logout

type Login struct {
	Username string
	Password string
	UTCTime  int64
}

func (*Login) Kind() Kind { return KindLogin }

// String never includes the password.
func (m *Login) String() string {
	return fmt.Sprintf("Login{Username:%q Password:<hidden>}", m.Username)
}

type ResponseLogin struct {
	LoginOk bool
	Message string
	IsAdmin bool
}

func (*ResponseLogin) Kind() Kind { return KindResponseLogin }

type Logout struct {
	Username string
}

func (*Logout) Kind() Kind { return KindLogout }

// ----------------------------------------------------------------------------
// Developers

type RequestDeveloperList struct{}

func (*RequestDeveloperList) Kind() Kind { return KindRequestDeveloperList }

type ResponseDeveloperList struct {
	Message           string
	AllowedToViewList bool
	DeveloperList     []Developer
}

func (*ResponseDeveloperList) Kind() Kind { return KindResponseDeveloperList }

type CreateNewDeveloper struct {
	Developer Developer
}

func (*CreateNewDeveloper) Kind() Kind { return KindCreateNewDeveloper }

type UpdateDeveloper struct {
	Developer Developer
}

func (*UpdateDeveloper) Kind() Kind { return KindUpdateDeveloper }

type DeleteDeveloper struct {
	Developer Developer
}

func (*DeleteDeveloper) Kind() Kind { return KindDeleteDeveloper }

type ResponseDeveloperModification struct {
	ModifiedDeveloper bool
	Message           string
}

func (*ResponseDeveloperModification) Kind() Kind { return KindResponseDeveloperModification }

type RequestDeveloper struct {
	Username string
}

func (*RequestDeveloper) Kind() Kind { return KindRequestDeveloper }

type ResponseDeveloper struct {
	DeveloperExists bool
	Message         string
	Developer       Developer
}

func (*ResponseDeveloper) Kind() Kind { return KindResponseDeveloper }

// ----------------------------------------------------------------------------
// Plugins

// RequestPluginList asks for plugins owned by Username; "*" or "" asks
// for all plugins, which only admins get.
type RequestPluginList struct {
	Username string
}

func (*RequestPluginList) Kind() Kind { return KindRequestPluginList }

type ResponsePluginList struct {
	AllowedToViewList bool
	Message           string
	Plugins           []Plugin
}

func (*ResponsePluginList) Kind() Kind { return KindResponsePluginList }

type CreateNewPlugin struct {
	Plugin Plugin
}

func (*CreateNewPlugin) Kind() Kind { return KindCreateNewPlugin }

type UpdatePlugin struct {
	Plugin Plugin
}

func (*UpdatePlugin) Kind() Kind { return KindUpdatePlugin }

type DeletePlugin struct {
	Plugin Plugin
}

func (*DeletePlugin) Kind() Kind { return KindDeletePlugin }

type ResponsePluginModification struct {
	ModifiedPlugin bool
	Message        string
}

func (*ResponsePluginModification) Kind() Kind { return KindResponsePluginModification }

type RequestPlugin struct {
	ID int32
}

func (*RequestPlugin) Kind() Kind { return KindRequestPlugin }

type ResponsePlugin struct {
	PluginExists bool
	Message      string
	Plugin       Plugin
}

func (*ResponsePlugin) Kind() Kind { return KindResponsePlugin }

type RequestPublishedPluginList struct {
	PublishState models.PublishState
}

func (*RequestPublishedPluginList) Kind() Kind { return KindRequestPublishedPluginList }

type ResponsePublishedPluginList struct {
	AllowedToViewList bool
	Message           string
	PluginsAndSources []PluginAndSource
}

func (*ResponsePublishedPluginList) Kind() Kind { return KindResponsePublishedPluginList }

type RequestPublishedPlugin struct {
	ID           int32
	PublishState models.PublishState
}

func (*RequestPublishedPlugin) Kind() Kind { return KindRequestPublishedPlugin }

type ResponsePublishedPlugin struct {
	PluginAndSourceExists bool
	Message               string
	PluginAndSource       PluginAndSource
}

func (*ResponsePublishedPlugin) Kind() Kind { return KindResponsePublishedPlugin }

// ----------------------------------------------------------------------------
// Sources

// RequestSourceList lists the sources of PluginID. Admins may instead set
// PluginID to -1 and BuildState to a state name to list by build state.
type RequestSourceList struct {
	PluginID   int32
	BuildState string
}

func (*RequestSourceList) Kind() Kind { return KindRequestSourceList }

type ResponseSourceList struct {
	AllowedToViewList bool
	Message           string
	SourceList        []Source
}

func (*ResponseSourceList) Kind() Kind { return KindResponseSourceList }

type CreateNewSource struct {
	Source Source
}

func (*CreateNewSource) Kind() Kind { return KindCreateNewSource }

type UpdateSource struct {
	Source Source
}

func (*UpdateSource) Kind() Kind { return KindUpdateSource }

type DeleteSource struct {
	Source Source
}

func (*DeleteSource) Kind() Kind { return KindDeleteSource }

type ResponseSourceModification struct {
	ModifiedSource bool
	Message        string
}

func (*ResponseSourceModification) Kind() Kind { return KindResponseSourceModification }

type RequestSource struct {
	PluginID      int32
	PluginVersion int32
}

func (*RequestSource) Kind() Kind { return KindRequestSource }

type ResponseSource struct {
	SourceExists bool
	Message      string
	Source       Source
}

func (*ResponseSource) Kind() Kind { return KindResponseSource }

type UpdateSourcePublishState struct {
	Source Source
}

func (*UpdateSourcePublishState) Kind() Kind { return KindUpdateSourcePublishState }

// ----------------------------------------------------------------------------
// Resources

type RequestResourceList struct {
	Username string
}

func (*RequestResourceList) Kind() Kind { return KindRequestResourceList }

type ResponseResourceList struct {
	AllowedToViewList bool
	Message           string
	Resources         []Resource
}

func (*ResponseResourceList) Kind() Kind { return KindResponseResourceList }

type CreateNewResource struct {
	Resource Resource
}

func (*CreateNewResource) Kind() Kind { return KindCreateNewResource }

type UpdateResource struct {
	Resource Resource
}

func (*UpdateResource) Kind() Kind { return KindUpdateResource }

type DeleteResource struct {
	Resource Resource
}

func (*DeleteResource) Kind() Kind { return KindDeleteResource }

type ResponseResourceModification struct {
	ModifiedResource bool
	Message          string
}

func (*ResponseResourceModification) Kind() Kind { return KindResponseResourceModification }

type RequestResource struct {
	ID int32
}

func (*RequestResource) Kind() Kind { return KindRequestResource }

type ResponseResource struct {
	ResourceExists bool
	Message        string
	Resource       Resource
}

func (*ResponseResource) Kind() Kind { return KindResponseResource }

type RequestPublishedResourceList struct {
	PublishState models.PublishState
}

func (*RequestPublishedResourceList) Kind() Kind { return KindRequestPublishedResourceList }

type ResponsePublishedResourceList struct {
	AllowedToViewList         bool
	Message                   string
	ResourcesAndResourceDatas []ResourceAndResourceData
}

func (*ResponsePublishedResourceList) Kind() Kind { return KindResponsePublishedResourceList }

type RequestPublishedResource struct {
	ID           int32
	PublishState models.PublishState
}

func (*RequestPublishedResource) Kind() Kind { return KindRequestPublishedResource }

type ResponsePublishedResource struct {
	ResourceAndResourceDataExists bool
	Message                       string
	ResourceAndResourceData       ResourceAndResourceData
}

func (*ResponsePublishedResource) Kind() Kind { return KindResponsePublishedResource }

// ----------------------------------------------------------------------------
// Resource data

type RequestResourceDataList struct {
	ResourceID int32
}

func (*RequestResourceDataList) Kind() Kind { return KindRequestResourceDataList }

type ResponseResourceDataList struct {
	AllowedToViewList bool
	Message           string
	ResourceDataList  []ResourceData
}

func (*ResponseResourceDataList) Kind() Kind { return KindResponseResourceDataList }

type CreateNewResourceData struct {
	ResourceData ResourceData
}

func (*CreateNewResourceData) Kind() Kind { return KindCreateNewResourceData }

type UpdateResourceData struct {
	ResourceData ResourceData
}

func (*UpdateResourceData) Kind() Kind { return KindUpdateResourceData }

type DeleteResourceData struct {
	ResourceData ResourceData
}

func (*DeleteResourceData) Kind() Kind { return KindDeleteResourceData }

type ResponseResourceDataModification struct {
	ModifiedResourceData bool
	Message              string
}

func (*ResponseResourceDataModification) Kind() Kind { return KindResponseResourceDataModification }

type RequestResourceData struct {
	ResourceID      int32
	ResourceVersion int32
}

func (*RequestResourceData) Kind() Kind { return KindRequestResourceData }

type ResponseResourceData struct {
	ResourceDataExists bool
	Message            string
	ResourceData       ResourceData
}

func (*ResponseResourceData) Kind() Kind { return KindResponseResourceData }

type UpdateResourceDataPublishState struct {
	ResourceData ResourceData
}

func (*UpdateResourceDataPublishState) Kind() Kind { return KindUpdateResourceDataPublishState }

// ----------------------------------------------------------------------------
// File transfer

// UploadDownloadData carries one chunk. Offset is the number of bytes of
// the file transferred up to and including this chunk.
type UploadDownloadData struct {
	FileSize int64
	Offset   int64
	Data     []byte
}

func (*UploadDownloadData) Kind() Kind { return KindUploadDownloadData }

type ResponseUploadDownloadData struct {
	Success bool
	Message string
}

func (*ResponseUploadDownloadData) Kind() Kind { return KindResponseUploadDownloadData }

type StartUploadSourceZipfile struct {
	Source   Source
	FileSize int64
}

func (*StartUploadSourceZipfile) Kind() Kind { return KindStartUploadSourceZipfile }

type StartUploadAssemblyZipfile struct {
	Source   Source
	FileSize int64
}

func (*StartUploadAssemblyZipfile) Kind() Kind { return KindStartUploadAssemblyZipfile }

type StartUploadResourceDataFile struct {
	ResourceData ResourceData
	FileSize     int64
}

func (*StartUploadResourceDataFile) Kind() Kind { return KindStartUploadResourceDataFile }

type RequestDownloadSourceZipfile struct {
	Source Source
}

func (*RequestDownloadSourceZipfile) Kind() Kind { return KindRequestDownloadSourceZipfile }

type RequestDownloadAssemblyZipfile struct {
	Source Source
}

func (*RequestDownloadAssemblyZipfile) Kind() Kind { return KindRequestDownloadAssemblyZipfile }

type RequestDownloadResourceDataFile struct {
	ResourceData ResourceData
}

func (*RequestDownloadResourceDataFile) Kind() Kind { return KindRequestDownloadResourceDataFile }

type StopUploadDownload struct{}

func (*StopUploadDownload) Kind() Kind { return KindStopUploadDownload }

// ----------------------------------------------------------------------------
// Errors

type ServerError struct {
	Message string
}

func (*ServerError) Kind() Kind { return KindServerError }

type ClientError struct {
	Message string
}

func (*ClientError) Kind() Kind { return KindClientError }

// Unknown stands in for a frame whose kind has no registered type. It is
// produced by Decode and never encoded.
type Unknown struct {
	Code    Kind
	Payload []byte
}

func (m *Unknown) Kind() Kind { return m.Code }
