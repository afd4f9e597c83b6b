package message

import (
	"bytes"
	"errors"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"

	"github.com/marmos91/cryptoolstore/pkg/protocol/wire"
)

// ErrUnencodable is returned when Encode is given an Unknown message.
var ErrUnencodable = errors.New("message: unknown kinds cannot be encoded")

var registry = map[Kind]func() Message{
	KindLogin:         func() Message { return &Login{} },
	KindResponseLogin: func() Message { return &ResponseLogin{} },
	KindLogout:        func() Message { return &Logout{} },

	KindRequestDeveloperList:          func() Message { return &RequestDeveloperList{} },
	KindResponseDeveloperList:         func() Message { return &ResponseDeveloperList{} },
	KindCreateNewDeveloper:            func() Message { return &CreateNewDeveloper{} },
	KindUpdateDeveloper:               func() Message { return &UpdateDeveloper{} },
	KindDeleteDeveloper:               func() Message { return &DeleteDeveloper{} },
	KindResponseDeveloperModification: func() Message { return &ResponseDeveloperModification{} },
	KindRequestDeveloper:              func() Message { return &RequestDeveloper{} },
	KindResponseDeveloper:             func() Message { return &ResponseDeveloper{} },

	KindRequestPluginList:           func() Message { return &RequestPluginList{} },
	KindResponsePluginList:          func() Message { return &ResponsePluginList{} },
	KindCreateNewPlugin:             func() Message { return &CreateNewPlugin{} },
	KindUpdatePlugin:                func() Message { return &UpdatePlugin{} },
	KindDeletePlugin:                func() Message { return &DeletePlugin{} },
	KindResponsePluginModification:  func() Message { return &ResponsePluginModification{} },
	KindRequestPlugin:               func() Message { return &RequestPlugin{} },
	KindResponsePlugin:              func() Message { return &ResponsePlugin{} },
	KindRequestPublishedPluginList:  func() Message { return &RequestPublishedPluginList{} },
	KindResponsePublishedPluginList: func() Message { return &ResponsePublishedPluginList{} },
	KindRequestPublishedPlugin:      func() Message { return &RequestPublishedPlugin{} },
	KindResponsePublishedPlugin:     func() Message { return &ResponsePublishedPlugin{} },

	KindRequestSourceList:          func() Message { return &RequestSourceList{} },
	KindResponseSourceList:         func() Message { return &ResponseSourceList{} },
	KindCreateNewSource:            func() Message { return &CreateNewSource{} },
	KindUpdateSource:               func() Message { return &UpdateSource{} },
	KindDeleteSource:               func() Message { return &DeleteSource{} },
	KindResponseSourceModification: func() Message { return &ResponseSourceModification{} },
	KindRequestSource:              func() Message { return &RequestSource{} },
	KindResponseSource:             func() Message { return &ResponseSource{} },
	KindUpdateSourcePublishState:   func() Message { return &UpdateSourcePublishState{} },

	KindRequestResourceList:           func() Message { return &RequestResourceList{} },
	KindResponseResourceList:          func() Message { return &ResponseResourceList{} },
	KindCreateNewResource:             func() Message { return &CreateNewResource{} },
	KindUpdateResource:                func() Message { return &UpdateResource{} },
	KindDeleteResource:                func() Message { return &DeleteResource{} },
	KindResponseResourceModification:  func() Message { return &ResponseResourceModification{} },
	KindRequestResource:               func() Message { return &RequestResource{} },
	KindResponseResource:              func() Message { return &ResponseResource{} },
	KindRequestPublishedResourceList:  func() Message { return &RequestPublishedResourceList{} },
	KindResponsePublishedResourceList: func() Message { return &ResponsePublishedResourceList{} },
	KindRequestPublishedResource:      func() Message { return &RequestPublishedResource{} },
	KindResponsePublishedResource:     func() Message { return &ResponsePublishedResource{} },

	KindRequestResourceDataList:          func() Message { return &RequestResourceDataList{} },
	KindResponseResourceDataList:         func() Message { return &ResponseResourceDataList{} },
	KindCreateNewResourceData:            func() Message { return &CreateNewResourceData{} },
	KindUpdateResourceData:               func() Message { return &UpdateResourceData{} },
	KindDeleteResourceData:               func() Message { return &DeleteResourceData{} },
	KindResponseResourceDataModification: func() Message { return &ResponseResourceDataModification{} },
	KindRequestResourceData:              func() Message { return &RequestResourceData{} },
	KindResponseResourceData:             func() Message { return &ResponseResourceData{} },
	KindUpdateResourceDataPublishState:   func() Message { return &UpdateResourceDataPublishState{} },

	KindUploadDownloadData:              func() Message { return &UploadDownloadData{} },
	KindResponseUploadDownloadData:      func() Message { return &ResponseUploadDownloadData{} },
	KindStartUploadSourceZipfile:        func() Message { return &StartUploadSourceZipfile{} },
	KindStartUploadAssemblyZipfile:      func() Message { return &StartUploadAssemblyZipfile{} },
	KindStartUploadResourceDataFile:     func() Message { return &StartUploadResourceDataFile{} },
	KindRequestDownloadSourceZipfile:    func() Message { return &RequestDownloadSourceZipfile{} },
	KindRequestDownloadAssemblyZipfile:  func() Message { return &RequestDownloadAssemblyZipfile{} },
	KindRequestDownloadResourceDataFile: func() Message { return &RequestDownloadResourceDataFile{} },
	KindStopUploadDownload:              func() Message { return &StopUploadDownload{} },

	KindServerError: func() Message { return &ServerError{} },
	KindClientError: func() Message { return &ClientError{} },
}

// Encode serializes the payload of m. The frame header is written by the
// caller.
func Encode(m Message) ([]byte, error) {
	if _, ok := m.(*Unknown); ok {
		return nil, ErrUnencodable
	}

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, m); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
	}
	return buf.Bytes(), nil
}

// Decode builds the message of the given kind from its payload. Kinds with
// no registered type decode to *Unknown so the caller can answer them. A
// payload that does not parse as the kind's type is a protocol error.
//
// No length prefix inside the payload may exceed the payload itself, so a
// small frame cannot make the decoder allocate more than a bounded multiple
// of its size.
func Decode(kind uint32, payload []byte) (Message, error) {
	k := Kind(kind)
	newMsg, ok := registry[k]
	if !ok {
		return &Unknown{Code: k, Payload: payload}, nil
	}

	m := newMsg()
	if _, err := xdr.UnmarshalLimited(bytes.NewReader(payload), m, uint(len(payload))); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", wire.ErrProtocol, k, err)
	}
	return m, nil
}

// DecodeRequest is Decode for the server side of a connection. Kinds only
// a server sends (responses and ServerError) are never parsed and come back
// as *Unknown, so list responses with nested records cannot be fed to a
// server.
func DecodeRequest(kind uint32, payload []byte) (Message, error) {
	if !Kind(kind).FromClient() {
		return &Unknown{Code: Kind(kind), Payload: payload}, nil
	}
	return Decode(kind, payload)
}
