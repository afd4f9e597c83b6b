package message

import "strconv"

// Kind identifies a message on the wire. Codes are grouped by entity and
// must never be renumbered.
type Kind uint32

const (
	KindLogin         Kind = 0
	KindResponseLogin Kind = 1
	KindLogout        Kind = 2

	KindRequestDeveloperList          Kind = 100
	KindResponseDeveloperList         Kind = 101
	KindCreateNewDeveloper            Kind = 102
	KindUpdateDeveloper               Kind = 103
	KindDeleteDeveloper               Kind = 104
	KindResponseDeveloperModification Kind = 105
	KindRequestDeveloper              Kind = 106
	KindResponseDeveloper             Kind = 107

	KindRequestPluginList           Kind = 200
	KindResponsePluginList          Kind = 201
	KindCreateNewPlugin             Kind = 202
	KindUpdatePlugin                Kind = 203
	KindDeletePlugin                Kind = 204
	KindResponsePluginModification  Kind = 205
	KindRequestPlugin               Kind = 206
	KindResponsePlugin              Kind = 207
	KindRequestPublishedPluginList  Kind = 208
	KindResponsePublishedPluginList Kind = 209
	KindRequestPublishedPlugin      Kind = 210
	KindResponsePublishedPlugin     Kind = 211

	KindRequestSourceList          Kind = 300
	KindResponseSourceList         Kind = 301
	KindCreateNewSource            Kind = 302
	KindUpdateSource               Kind = 303
	KindDeleteSource               Kind = 304
	KindResponseSourceModification Kind = 305
	KindRequestSource              Kind = 306
	KindResponseSource             Kind = 307
	KindUpdateSourcePublishState   Kind = 308

	KindRequestResourceList           Kind = 400
	KindResponseResourceList          Kind = 401
	KindCreateNewResource             Kind = 402
	KindUpdateResource                Kind = 403
	KindDeleteResource                Kind = 404
	KindResponseResourceModification  Kind = 405
	KindRequestResource               Kind = 406
	KindResponseResource              Kind = 407
	KindRequestPublishedResourceList  Kind = 408
	KindResponsePublishedResourceList Kind = 409
	KindRequestPublishedResource      Kind = 410
	KindResponsePublishedResource     Kind = 411

	KindRequestResourceDataList          Kind = 500
	KindResponseResourceDataList         Kind = 501
	KindCreateNewResourceData            Kind = 502
	KindUpdateResourceData               Kind = 503
	KindDeleteResourceData               Kind = 504
	KindResponseResourceDataModification Kind = 505
	KindRequestResourceData              Kind = 506
	KindResponseResourceData             Kind = 507
	KindUpdateResourceDataPublishState   Kind = 508

	KindUploadDownloadData              Kind = 600
	KindResponseUploadDownloadData      Kind = 601
	KindStartUploadSourceZipfile        Kind = 602
	KindStartUploadAssemblyZipfile      Kind = 603
	KindStartUploadResourceDataFile     Kind = 604
	KindRequestDownloadSourceZipfile    Kind = 605
	KindRequestDownloadAssemblyZipfile  Kind = 606
	KindRequestDownloadResourceDataFile Kind = 607
	KindStopUploadDownload              Kind = 608

	KindServerError Kind = 900
	KindClientError Kind = 901
)

// serverOnly lists the kinds a client never sends.
var serverOnly = map[Kind]bool{
	KindResponseLogin:                    true,
	KindResponseDeveloperList:            true,
	KindResponseDeveloperModification:    true,
	KindResponseDeveloper:                true,
	KindResponsePluginList:               true,
	KindResponsePluginModification:       true,
	KindResponsePlugin:                   true,
	KindResponsePublishedPluginList:      true,
	KindResponsePublishedPlugin:          true,
	KindResponseSourceList:               true,
	KindResponseSourceModification:       true,
	KindResponseSource:                   true,
	KindResponseResourceList:             true,
	KindResponseResourceModification:     true,
	KindResponseResource:                 true,
	KindResponsePublishedResourceList:    true,
	KindResponsePublishedResource:        true,
	KindResponseResourceDataList:         true,
	KindResponseResourceDataModification: true,
	KindResponseResourceData:             true,
	KindServerError:                      true,
}

// FromClient reports whether a client may send k. ResponseUploadDownloadData
// travels both ways: it acks download chunks as well as upload chunks.
func (k Kind) FromClient() bool {
	return k.Known() && !serverOnly[k]
}

var kindNames = map[Kind]string{
	KindLogin:         "Login",
	KindResponseLogin: "ResponseLogin",
	KindLogout:        "Logout",

	KindRequestDeveloperList:          "RequestDeveloperList",
	KindResponseDeveloperList:         "ResponseDeveloperList",
	KindCreateNewDeveloper:            "CreateNewDeveloper",
	KindUpdateDeveloper:               "UpdateDeveloper",
	KindDeleteDeveloper:               "DeleteDeveloper",
	KindResponseDeveloperModification: "ResponseDeveloperModification",
	KindRequestDeveloper:              "RequestDeveloper",
	KindResponseDeveloper:             "ResponseDeveloper",

	KindRequestPluginList:           "RequestPluginList",
	KindResponsePluginList:          "ResponsePluginList",
	KindCreateNewPlugin:             "CreateNewPlugin",
	KindUpdatePlugin:                "UpdatePlugin",
	KindDeletePlugin:                "DeletePlugin",
	KindResponsePluginModification:  "ResponsePluginModification",
	KindRequestPlugin:               "RequestPlugin",
	KindResponsePlugin:              "ResponsePlugin",
	KindRequestPublishedPluginList:  "RequestPublishedPluginList",
	KindResponsePublishedPluginList: "ResponsePublishedPluginList",
	KindRequestPublishedPlugin:      "RequestPublishedPlugin",
	KindResponsePublishedPlugin:     "ResponsePublishedPlugin",

	KindRequestSourceList:          "RequestSourceList",
	KindResponseSourceList:         "ResponseSourceList",
	KindCreateNewSource:            "CreateNewSource",
	KindUpdateSource:               "UpdateSource",
	KindDeleteSource:               "DeleteSource",
	KindResponseSourceModification: "ResponseSourceModification",
	KindRequestSource:              "RequestSource",
	KindResponseSource:             "ResponseSource",
	KindUpdateSourcePublishState:   "UpdateSourcePublishState",

	KindRequestResourceList:           "RequestResourceList",
	KindResponseResourceList:          "ResponseResourceList",
	KindCreateNewResource:             "CreateNewResource",
	KindUpdateResource:                "UpdateResource",
	KindDeleteResource:                "DeleteResource",
	KindResponseResourceModification:  "ResponseResourceModification",
	KindRequestResource:               "RequestResource",
	KindResponseResource:              "ResponseResource",
	KindRequestPublishedResourceList:  "RequestPublishedResourceList",
	KindResponsePublishedResourceList: "ResponsePublishedResourceList",
	KindRequestPublishedResource:      "RequestPublishedResource",
	KindResponsePublishedResource:     "ResponsePublishedResource",

	KindRequestResourceDataList:          "RequestResourceDataList",
	KindResponseResourceDataList:         "ResponseResourceDataList",
	KindCreateNewResourceData:            "CreateNewResourceData",
	KindUpdateResourceData:               "UpdateResourceData",
	KindDeleteResourceData:               "DeleteResourceData",
	KindResponseResourceDataModification: "ResponseResourceDataModification",
	KindRequestResourceData:              "RequestResourceData",
	KindResponseResourceData:             "ResponseResourceData",
	KindUpdateResourceDataPublishState:   "UpdateResourceDataPublishState",

	KindUploadDownloadData:              "UploadDownloadData",
	KindResponseUploadDownloadData:      "ResponseUploadDownloadData",
	KindStartUploadSourceZipfile:        "StartUploadSourceZipfile",
	KindStartUploadAssemblyZipfile:      "StartUploadAssemblyZipfile",
	KindStartUploadResourceDataFile:     "StartUploadResourceDataFile",
	KindRequestDownloadSourceZipfile:    "RequestDownloadSourceZipfile",
	KindRequestDownloadAssemblyZipfile:  "RequestDownloadAssemblyZipfile",
	KindRequestDownloadResourceDataFile: "RequestDownloadResourceDataFile",
	KindStopUploadDownload:              "StopUploadDownload",

	KindServerError: "ServerError",
	KindClientError: "ClientError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// Known reports whether k has a registered message type.
func (k Kind) Known() bool {
	_, ok := registry[k]
	return ok
}
