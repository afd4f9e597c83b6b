package session

import (
	"context"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ============================================================================
// Access Rules
// ============================================================================

// rule is the access requirement of a message kind.
type rule int

const (
	// rulePublic allows every session, logged in or not.
	rulePublic rule = iota

	// ruleAuthenticated requires a successful login.
	ruleAuthenticated

	// ruleAdmin requires a logged in admin.
	ruleAdmin

	// ruleOwnerOrAdmin requires an admin or the owner of the target.
	ruleOwnerOrAdmin

	// ruleOwnerAdminOrPublished additionally allows anyone when the target
	// is published.
	ruleOwnerAdminOrPublished
)

func (r rule) String() string {
	switch r {
	case rulePublic:
		return "public"
	case ruleAuthenticated:
		return "authenticated"
	case ruleAdmin:
		return "admin"
	case ruleOwnerOrAdmin:
		return "owner-or-admin"
	case ruleOwnerAdminOrPublished:
		return "owner-admin-or-published"
	default:
		return "unknown"
	}
}

// target is the entity an owner-based rule is checked against. Resolvers
// fill in the rows they loaded so handlers need not load them again.
type target struct {
	owner     string
	published bool

	plugin       *models.Plugin
	source       *models.Source
	resource     *models.Resource
	resourceData *models.ResourceData
}

// ============================================================================
// Route Table
// ============================================================================

type (
	resolveFunc func(ctx context.Context, s *Session, m message.Message) (*target, error)
	handleFunc  func(ctx context.Context, s *Session, m message.Message, t *target) (message.Message, error)
)

// route describes how one request kind is checked and answered.
type route struct {
	// name is used for logs and error ops.
	name string

	rule rule

	// resolve loads the target of owner-based rules. A not-found error
	// denies the request like a foreign target would.
	resolve resolveFunc

	handle handleFunc

	// reply builds the kind's response carrying a failure text.
	reply func(text string) message.Message

	// denied answers a request the rule refused.
	denied string

	// missing answers an admin whose target does not exist. Non-admins
	// always get denied. Updates and deletes leave it empty so they never
	// reveal which ids exist.
	missing string

	// failed answers an internal failure.
	failed string
}

// on adapts a typed handler method to the route table.
func on[M message.Message](h func(*Session, context.Context, M, *target) (message.Message, error)) handleFunc {
	return func(ctx context.Context, s *Session, m message.Message, t *target) (message.Message, error) {
		return h(s, ctx, m.(M), t)
	}
}

// by adapts a typed resolver method to the route table.
func by[M message.Message](r func(*Session, context.Context, M) (*target, error)) resolveFunc {
	return func(ctx context.Context, s *Session, m message.Message) (*target, error) {
		return r(s, ctx, m.(M))
	}
}

// authorize applies the route's rule. It returns the resolved target (nil
// when the target does not exist), whether the request may proceed, and a
// non-nil error only when resolving failed for another reason than a
// missing row.
func (s *Session) authorize(ctx context.Context, r *route, msg message.Message) (*target, bool, error) {
	switch r.rule {
	case rulePublic:
		return nil, true, nil
	case ruleAuthenticated:
		return nil, s.authenticated, nil
	case ruleAdmin:
		return nil, s.authenticated && s.admin, nil
	}

	// Owner rules never hit the store for anonymous callers unless the
	// target may be public.
	if !s.authenticated && r.rule != ruleOwnerAdminOrPublished {
		return nil, false, nil
	}

	t, err := r.resolve(ctx, s, msg)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if s.authenticated && (s.admin || t.owner == s.username) {
		return t, true, nil
	}
	if r.rule == ruleOwnerAdminOrPublished && t.published {
		return t, true, nil
	}
	return t, false, nil
}

var routes = map[message.Kind]*route{
	// Session
	message.KindLogin: {
		name: "Login", rule: rulePublic,
		handle: on((*Session).handleLogin),
		reply:  loginReply,
		failed: msgLoginIncorrect,
	},
	message.KindLogout: {
		name: "Logout", rule: rulePublic,
		handle: on((*Session).handleLogout),
	},

	// Developers
	message.KindRequestDeveloperList: {
		name: "RequestDeveloperList", rule: ruleAdmin,
		handle: on((*Session).handleRequestDeveloperList),
		reply:  developerListReply,
		denied: "Unauthorized to get developer list. Please authenticate yourself as admin",
		failed: "Exception during request of developer list",
	},
	message.KindCreateNewDeveloper: {
		name: "CreateNewDeveloper", rule: ruleAdmin,
		handle: on((*Session).handleCreateNewDeveloper),
		reply:  developerModReply,
		denied: "Unauthorized to create new developers. Please authenticate yourself as admin",
		failed: "Exception during creation of new developer",
	},
	message.KindUpdateDeveloper: {
		name: "UpdateDeveloper", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveUpdateDeveloper),
		handle:  on((*Session).handleUpdateDeveloper),
		reply:   developerModReply,
		denied:  "Unauthorized to update a developer. Please authenticate yourself as admin or try only to update yourself",
		failed:  "Exception during update of existing developer",
	},
	message.KindDeleteDeveloper: {
		name: "DeleteDeveloper", rule: ruleAdmin,
		handle: on((*Session).handleDeleteDeveloper),
		reply:  developerModReply,
		denied: "Unauthorized to delete developers. Please authenticate yourself as admin",
		failed: "Exception during deletion of existing developer",
	},
	message.KindRequestDeveloper: {
		name: "RequestDeveloper", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestDeveloper),
		handle:  on((*Session).handleRequestDeveloper),
		reply:   developerReply,
		denied:  "Unauthorized to get developer. Please authenticate yourself as admin",
		failed:  "Exception during request of existing developer",
	},

	// Plugins
	message.KindRequestPluginList: {
		name: "RequestPluginList", rule: ruleAuthenticated,
		handle: on((*Session).handleRequestPluginList),
		reply:  pluginListReply,
		denied: msgNotAuthenticated,
		failed: "Exception during request of plugin list",
	},
	message.KindCreateNewPlugin: {
		name: "CreateNewPlugin", rule: ruleAuthenticated,
		handle: on((*Session).handleCreateNewPlugin),
		reply:  pluginModReply,
		denied: "Unauthorized to create new plugins. Please authenticate yourself",
		failed: "Exception during creation of new plugin",
	},
	message.KindUpdatePlugin: {
		name: "UpdatePlugin", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveUpdatePlugin),
		handle:  on((*Session).handleUpdatePlugin),
		reply:   pluginModReply,
		denied:  "Unauthorized to update that plugin",
		failed:  "Exception during update of existing plugin",
	},
	message.KindDeletePlugin: {
		name: "DeletePlugin", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveDeletePlugin),
		handle:  on((*Session).handleDeletePlugin),
		reply:   pluginModReply,
		denied:  "Unauthorized to delete that plugin",
		failed:  "Exception during delete of existing plugin",
	},
	message.KindRequestPlugin: {
		name: "RequestPlugin", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestPlugin),
		handle:  on((*Session).handleRequestPlugin),
		reply:   pluginReply,
		denied:  "Unauthorized to get that plugin",
		missing: msgPluginMissing,
		failed:  "Exception during request of existing plugin",
	},
	message.KindRequestPublishedPluginList: {
		name: "RequestPublishedPluginList", rule: rulePublic,
		handle: on((*Session).handleRequestPublishedPluginList),
		reply:  publishedPluginListReply,
		failed: "Exception during request of published plugin list",
	},
	message.KindRequestPublishedPlugin: {
		name: "RequestPublishedPlugin", rule: rulePublic,
		handle: on((*Session).handleRequestPublishedPlugin),
		reply:  publishedPluginReply,
		failed: "Exception during request of published plugin",
	},

	// Sources
	message.KindRequestSourceList: {
		name: "RequestSourceList", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestSourceList),
		handle:  on((*Session).handleRequestSourceList),
		reply:   sourceListReply,
		denied:  "Unauthorized to get source list",
		missing: msgPluginMissing,
		failed:  "Exception during request of source list",
	},
	message.KindCreateNewSource: {
		name: "CreateNewSource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveCreateNewSource),
		handle:  on((*Session).handleCreateNewSource),
		reply:   sourceModReply,
		denied:  "Unauthorized to create new source for that plugin",
		missing: msgPluginMissing,
		failed:  "Exception during creation of new source",
	},
	message.KindUpdateSource: {
		name: "UpdateSource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveUpdateSource),
		handle:  on((*Session).handleUpdateSource),
		reply:   sourceModReply,
		denied:  "Unauthorized to update that source",
		failed:  "Exception during update of existing source",
	},
	message.KindDeleteSource: {
		name: "DeleteSource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveDeleteSource),
		handle:  on((*Session).handleDeleteSource),
		reply:   sourceModReply,
		denied:  "Unauthorized to delete that source",
		failed:  "Exception during delete of existing source",
	},
	message.KindRequestSource: {
		name: "RequestSource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestSource),
		handle:  on((*Session).handleRequestSource),
		reply:   sourceReply,
		denied:  "Unauthorized to get that source",
		missing: msgSourceMissing,
		failed:  "Exception during request of existing source",
	},
	message.KindUpdateSourcePublishState: {
		name: "UpdateSourcePublishState", rule: ruleAdmin,
		handle: on((*Session).handleUpdateSourcePublishState),
		reply:  sourceModReply,
		denied: msgNotAdmin,
		failed: "Exception during update of publish state of existing source",
	},

	// Resources
	message.KindRequestResourceList: {
		name: "RequestResourceList", rule: ruleAuthenticated,
		handle: on((*Session).handleRequestResourceList),
		reply:  resourceListReply,
		denied: "Unauthorized to get resource list. Please authenticate yourself",
		failed: "Exception during request of resource list",
	},
	message.KindCreateNewResource: {
		name: "CreateNewResource", rule: ruleAuthenticated,
		handle: on((*Session).handleCreateNewResource),
		reply:  resourceModReply,
		denied: "Unauthorized to create new resources. Please authenticate yourself",
		failed: "Exception during creation of new resource",
	},
	message.KindUpdateResource: {
		name: "UpdateResource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveUpdateResource),
		handle:  on((*Session).handleUpdateResource),
		reply:   resourceModReply,
		denied:  "Unauthorized to update that resource",
		failed:  "Exception during update of existing resource",
	},
	message.KindDeleteResource: {
		name: "DeleteResource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveDeleteResource),
		handle:  on((*Session).handleDeleteResource),
		reply:   resourceModReply,
		denied:  "Unauthorized to delete that resource",
		failed:  "Exception during delete of existing resource",
	},
	message.KindRequestResource: {
		name: "RequestResource", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestResource),
		handle:  on((*Session).handleRequestResource),
		reply:   resourceReply,
		denied:  "Unauthorized to get that resource",
		missing: msgResourceMissing,
		failed:  "Exception during request of existing resource",
	},
	message.KindRequestPublishedResourceList: {
		name: "RequestPublishedResourceList", rule: rulePublic,
		handle: on((*Session).handleRequestPublishedResourceList),
		reply:  publishedResourceListReply,
		failed: "Exception during request of published resource list",
	},
	message.KindRequestPublishedResource: {
		name: "RequestPublishedResource", rule: rulePublic,
		handle: on((*Session).handleRequestPublishedResource),
		reply:  publishedResourceReply,
		failed: "Exception during request of published resource",
	},

	// Resource data
	message.KindRequestResourceDataList: {
		name: "RequestResourceDataList", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestResourceDataList),
		handle:  on((*Session).handleRequestResourceDataList),
		reply:   resourceDataListReply,
		denied:  "Unauthorized to get resource data list. Please authenticate yourself",
		missing: msgResourceMissing,
		failed:  "Exception during request of resource data list",
	},
	message.KindCreateNewResourceData: {
		name: "CreateNewResourceData", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveCreateNewResourceData),
		handle:  on((*Session).handleCreateNewResourceData),
		reply:   resourceDataModReply,
		denied:  "Unauthorized to create new resource data. Please authenticate yourself",
		missing: msgResourceMissing,
		failed:  "Exception during creation of new resource data",
	},
	message.KindUpdateResourceData: {
		name: "UpdateResourceData", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveUpdateResourceData),
		handle:  on((*Session).handleUpdateResourceData),
		reply:   resourceDataModReply,
		denied:  "Unauthorized to update that resource data",
		failed:  "Exception during update of existing resource data",
	},
	message.KindDeleteResourceData: {
		name: "DeleteResourceData", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveDeleteResourceData),
		handle:  on((*Session).handleDeleteResourceData),
		reply:   resourceDataModReply,
		denied:  "Unauthorized to delete that resource data",
		failed:  "Exception during delete of existing resource data",
	},
	message.KindRequestResourceData: {
		name: "RequestResourceData", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestResourceData),
		handle:  on((*Session).handleRequestResourceData),
		reply:   resourceDataReply,
		denied:  "Unauthorized to get that resource data",
		missing: msgResourceDataMissing,
		failed:  "Exception during request of existing resource data",
	},
	message.KindUpdateResourceDataPublishState: {
		name: "UpdateResourceDataPublishState", rule: ruleAdmin,
		handle: on((*Session).handleUpdateResourceDataPublishState),
		reply:  resourceDataModReply,
		denied: msgNotAdmin,
		failed: "Exception during update of publish state of existing resource data",
	},

	// Transfers
	message.KindStartUploadSourceZipfile: {
		name: "StartUploadSourceZipfile", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveStartUploadSourceZipfile),
		handle:  on((*Session).handleStartUploadSourceZipfile),
		reply:   transferReply,
		denied:  "Unauthorized to upload a source zipfile for that source",
		missing: msgSourceMissing,
		failed:  "Exception during upload of source zipfile",
	},
	message.KindStartUploadAssemblyZipfile: {
		name: "StartUploadAssemblyZipfile", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveStartUploadAssemblyZipfile),
		handle:  on((*Session).handleStartUploadAssemblyZipfile),
		reply:   transferReply,
		denied:  "Unauthorized to upload an assembly zipfile for that source",
		missing: msgSourceMissing,
		failed:  "Exception during upload of assembly zipfile",
	},
	message.KindStartUploadResourceDataFile: {
		name: "StartUploadResourceDataFile", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveStartUploadResourceDataFile),
		handle:  on((*Session).handleStartUploadResourceDataFile),
		reply:   transferReply,
		denied:  "Unauthorized to upload a resourcedata file for that resource",
		missing: msgResourceDataMissing,
		failed:  "Exception during upload of resourcedata file",
	},
	message.KindRequestDownloadSourceZipfile: {
		name: "RequestDownloadSourceZipfile", rule: ruleOwnerOrAdmin,
		resolve: by((*Session).resolveRequestDownloadSourceZipfile),
		handle:  on((*Session).handleRequestDownloadSourceZipfile),
		reply:   transferReply,
		denied:  "Unauthorized to download zipfile for that source",
		missing: msgSourceMissing,
		failed:  "Exception during download of source zipfile",
	},
	message.KindRequestDownloadAssemblyZipfile: {
		name: "RequestDownloadAssemblyZipfile", rule: ruleOwnerAdminOrPublished,
		resolve: by((*Session).resolveRequestDownloadAssemblyZipfile),
		handle:  on((*Session).handleRequestDownloadAssemblyZipfile),
		reply:   transferReply,
		denied:  "Unauthorized to download assembly zipfile for that source",
		missing: msgSourceMissing,
		failed:  "Exception during download of assembly zipfile",
	},
	message.KindRequestDownloadResourceDataFile: {
		name: "RequestDownloadResourceDataFile", rule: ruleOwnerAdminOrPublished,
		resolve: by((*Session).resolveRequestDownloadResourceDataFile),
		handle:  on((*Session).handleRequestDownloadResourceDataFile),
		reply:   transferReply,
		denied:  "Unauthorized to download file for that resourcedata",
		missing: msgResourceDataMissing,
		failed:  "Exception during download of resourcedata file",
	},
}

// Shared response texts.
const (
	msgNotAuthenticated    = "Not authenticated"
	msgNotAdmin            = "Not authenticated as admin"
	msgNotAuthorized       = "Not authorized"
	msgLoginCorrect        = "Login credentials correct"
	msgLoginIncorrect      = "Login credentials incorrect"
	msgPluginMissing       = "Plugin does not exist"
	msgSourceMissing       = "Source does not exist"
	msgResourceMissing     = "Resource does not exist"
	msgResourceDataMissing = "Resourcedata does not exist"
)

// ============================================================================
// Failure Replies
// ============================================================================

func loginReply(text string) message.Message {
	return &message.ResponseLogin{Message: text}
}

func developerListReply(text string) message.Message {
	return &message.ResponseDeveloperList{Message: text}
}

func developerModReply(text string) message.Message {
	return &message.ResponseDeveloperModification{Message: text}
}

func developerReply(text string) message.Message {
	return &message.ResponseDeveloper{Message: text}
}

func pluginListReply(text string) message.Message {
	return &message.ResponsePluginList{Message: text}
}

func pluginModReply(text string) message.Message {
	return &message.ResponsePluginModification{Message: text}
}

func pluginReply(text string) message.Message {
	return &message.ResponsePlugin{Message: text}
}

func publishedPluginListReply(text string) message.Message {
	return &message.ResponsePublishedPluginList{Message: text}
}

func publishedPluginReply(text string) message.Message {
	return &message.ResponsePublishedPlugin{Message: text}
}

func sourceListReply(text string) message.Message {
	return &message.ResponseSourceList{Message: text}
}

func sourceModReply(text string) message.Message {
	return &message.ResponseSourceModification{Message: text}
}

func sourceReply(text string) message.Message {
	return &message.ResponseSource{Message: text}
}

func resourceListReply(text string) message.Message {
	return &message.ResponseResourceList{Message: text}
}

func resourceModReply(text string) message.Message {
	return &message.ResponseResourceModification{Message: text}
}

func resourceReply(text string) message.Message {
	return &message.ResponseResource{Message: text}
}

func publishedResourceListReply(text string) message.Message {
	return &message.ResponsePublishedResourceList{Message: text}
}

func publishedResourceReply(text string) message.Message {
	return &message.ResponsePublishedResource{Message: text}
}

func resourceDataListReply(text string) message.Message {
	return &message.ResponseResourceDataList{Message: text}
}

func resourceDataModReply(text string) message.Message {
	return &message.ResponseResourceDataModification{Message: text}
}

func resourceDataReply(text string) message.Message {
	return &message.ResponseResourceData{Message: text}
}

func transferReply(text string) message.Message {
	return &message.ResponseUploadDownloadData{Message: text}
}
