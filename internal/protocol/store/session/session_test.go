package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/internal/protocol/store/transfer"
	"github.com/marmos91/cryptoolstore/pkg/auth"
	"github.com/marmos91/cryptoolstore/pkg/auth/lockout"
	"github.com/marmos91/cryptoolstore/pkg/blobstore/fs"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
	"github.com/marmos91/cryptoolstore/pkg/protocol"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
	"github.com/marmos91/cryptoolstore/pkg/protocol/wire"
)

// ============================================================================
// Harness
// ============================================================================

type harness struct {
	t     *testing.T
	store *store.GORMStore
	blobs *fs.Store
	auth  *auth.Authenticator
	cfg   Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: filepath.Join(dir, "store.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	blobs, err := fs.New(fs.Config{Root: filepath.Join(dir, "blobs")})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.CreateDeveloper(ctx, &models.Developer{Username: "alice"}, "alice-pw"))
	require.NoError(t, st.CreateDeveloper(ctx, &models.Developer{Username: "bob"}, "bob-pw"))
	require.NoError(t, st.CreateDeveloper(ctx, &models.Developer{Username: "root", IsAdmin: true}, "root-pw"))

	return &harness{
		t:     t,
		store: st,
		blobs: blobs,
		auth:  auth.NewAuthenticator(st, lockout.New(lockout.Config{})),
		cfg:   Config{FileBufferSize: 4},
	}
}

// client is the test side of one session.
type client struct {
	t    *testing.T
	nc   net.Conn
	conn *protocol.Conn
	done chan error
}

func (h *harness) connect(addr string) *client {
	h.t.Helper()
	serverSide, clientSide := net.Pipe()

	s := New(protocol.NewServerConn(serverSide, 0, protocol.Timeouts{}), addr, h.cfg, Deps{
		Store: h.store,
		Blobs: h.blobs,
		Auth:  h.auth,
	})

	done := make(chan error, 1)
	go func() {
		err := s.Serve(context.Background())
		_ = serverSide.Close()
		done <- err
	}()

	c := &client{t: h.t, nc: clientSide, conn: protocol.NewConn(clientSide, 0, protocol.Timeouts{}), done: done}
	h.t.Cleanup(func() { _ = clientSide.Close() })
	return c
}

func (c *client) send(m message.Message) {
	c.t.Helper()
	require.NoError(c.t, c.conn.Send(m))
}

func (c *client) recv() message.Message {
	c.t.Helper()
	m, err := c.conn.Receive()
	require.NoError(c.t, err)
	return m
}

func (c *client) call(m message.Message) message.Message {
	c.t.Helper()
	c.send(m)
	return c.recv()
}

func (c *client) login(user, password string) *message.ResponseLogin {
	c.t.Helper()
	resp, ok := c.call(&message.Login{Username: user, Password: password}).(*message.ResponseLogin)
	require.True(c.t, ok)
	return resp
}

// wait returns the error Serve ended with.
func (c *client) wait() error {
	c.t.Helper()
	select {
	case err := <-c.done:
		return err
	case <-time.After(5 * time.Second):
		c.t.Fatal("session did not end")
		return nil
	}
}

func (c *client) createPlugin(name string) int32 {
	c.t.Helper()
	resp := c.call(&message.CreateNewPlugin{Plugin: message.Plugin{Name: name}}).(*message.ResponsePluginModification)
	require.True(c.t, resp.ModifiedPlugin, resp.Message)

	list := c.call(&message.RequestPluginList{}).(*message.ResponsePluginList)
	for _, p := range list.Plugins {
		if p.Name == name {
			return p.ID
		}
	}
	c.t.Fatalf("plugin %q not listed", name)
	return 0
}

func (c *client) createSource(pluginID, version int32) {
	c.t.Helper()
	resp := c.call(&message.CreateNewSource{Source: message.Source{PluginID: pluginID, PluginVersion: version}}).(*message.ResponseSourceModification)
	require.True(c.t, resp.ModifiedSource, resp.Message)
}

// upload runs a client-side upload of data in chunks of n bytes.
func (c *client) upload(start message.Message, data []byte, n int) {
	c.t.Helper()
	ack := c.call(start).(*message.ResponseUploadDownloadData)
	require.True(c.t, ack.Success, ack.Message)
	for off := 0; off < len(data); off += n {
		end := min(off+n, len(data))
		ack = c.call(&message.UploadDownloadData{Data: data[off:end]}).(*message.ResponseUploadDownloadData)
		require.True(c.t, ack.Success, ack.Message)
	}
}

// download runs a client-side download, acking every chunk.
func (c *client) download(req message.Message) []byte {
	c.t.Helper()
	c.send(req)
	var out []byte
	for {
		chunk, ok := c.recv().(*message.UploadDownloadData)
		require.True(c.t, ok)
		out = append(out, chunk.Data...)
		c.send(&message.ResponseUploadDownloadData{Success: true, Message: "OK"})
		if chunk.Offset >= chunk.FileSize {
			return out
		}
	}
}

// ============================================================================
// Dispatch
// ============================================================================

func TestUnknownKindIsAnswered(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	w := wire.NewWriter(c.nc, 0)
	require.NoError(t, w.WriteFrame(4242, nil))

	resp, ok := c.recv().(*message.ServerError)
	require.True(t, ok)
	assert.Equal(t, "Unknown type of message: 4242", resp.Message)

	// The session survives.
	assert.False(t, c.login("alice", "wrong").LoginOk)
}

func TestTransferMessagesOutsideTransfer(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	for _, m := range []message.Message{
		&message.StopUploadDownload{},
		&message.UploadDownloadData{Data: []byte("x")},
		&message.ResponseUploadDownloadData{Success: true},
	} {
		resp, ok := c.call(m).(*message.ServerError)
		require.True(t, ok, "kind %s", m.Kind())
		assert.Equal(t, msgOutsideTransfer, resp.Message)
	}
}

func TestMalformedFrameClosesSession(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	_, err := c.nc.Write([]byte("NotCrypToolStore....."))
	require.NoError(t, err)

	var se *Error
	require.ErrorAs(t, c.wait(), &se)
	assert.Equal(t, KindProtocol, se.Kind)
}

func TestClientCloseEndsServeCleanly(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")
	require.NoError(t, c.nc.Close())
	assert.NoError(t, c.wait())
}

// ============================================================================
// Login
// ============================================================================

func TestLogin(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	resp := c.login("alice", "nope")
	assert.False(t, resp.LoginOk)
	assert.Equal(t, msgLoginIncorrect, resp.Message)

	resp = c.login("ALICE", "alice-pw")
	assert.True(t, resp.LoginOk)
	assert.False(t, resp.IsAdmin)
	assert.Equal(t, msgLoginCorrect, resp.Message)

	resp = c.login("root", "root-pw")
	assert.True(t, resp.LoginOk)
	assert.True(t, resp.IsAdmin)
}

func TestFailedLoginResetsSession(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	require.True(t, c.login("alice", "alice-pw").LoginOk)
	require.False(t, c.login("alice", "wrong").LoginOk)

	resp := c.call(&message.CreateNewPlugin{Plugin: message.Plugin{Name: "p"}}).(*message.ResponsePluginModification)
	assert.False(t, resp.ModifiedPlugin)
}

func TestLockoutClosesWithoutResponse(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	for i := 0; i < 3; i++ {
		assert.False(t, c.login("alice", "wrong").LoginOk)
	}

	// The fourth attempt is refused even with the right password.
	c.send(&message.Login{Username: "alice", Password: "alice-pw"})
	_, err := c.conn.Receive()
	assert.ErrorIs(t, err, io.EOF)

	var se *Error
	require.ErrorAs(t, c.wait(), &se)
	assert.Equal(t, KindLockout, se.Kind)
	assert.ErrorIs(t, se, auth.ErrLockedOut)

	// The lock is per address, not per connection.
	other := h.connect("10.0.0.1:2000")
	other.send(&message.Login{Username: "alice", Password: "alice-pw"})
	_, err = other.conn.Receive()
	assert.ErrorIs(t, err, io.EOF)

	fresh := h.connect("10.0.0.2:1000")
	assert.True(t, fresh.login("alice", "alice-pw").LoginOk)
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")
	require.True(t, c.login("alice", "alice-pw").LoginOk)

	c.send(&message.Logout{Username: "alice"})
	assert.NoError(t, c.wait())
	_, err := c.conn.Receive()
	assert.ErrorIs(t, err, io.EOF)
}

// ============================================================================
// Authorization
// ============================================================================

func TestAnonymousIsDenied(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")

	tests := []struct {
		req  message.Message
		text string
	}{
		{&message.CreateNewPlugin{}, "Unauthorized to create new plugins. Please authenticate yourself"},
		{&message.RequestDeveloperList{}, "Unauthorized to get developer list. Please authenticate yourself as admin"},
		{&message.RequestPluginList{Username: "*"}, msgNotAuthenticated},
		{&message.UpdatePlugin{Plugin: message.Plugin{ID: 1}}, "Unauthorized to update that plugin"},
		{&message.StartUploadSourceZipfile{Source: message.Source{PluginID: 1, PluginVersion: 1}, FileSize: 1}, "Unauthorized to upload a source zipfile for that source"},
	}
	for _, tt := range tests {
		t.Run(tt.req.Kind().String(), func(t *testing.T) {
			resp := c.call(tt.req)
			assert.Equal(t, tt.text, responseText(t, resp))
		})
	}
}

func TestForeignAndMissingTargetsLookAlike(t *testing.T) {
	h := newHarness(t)

	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)
	id := alice.createPlugin("alice-plugin")
	alice.createSource(id, 1)

	bob := h.connect("10.0.0.2:1000")
	require.True(t, bob.login("bob", "bob-pw").LoginOk)

	pairs := []struct {
		name            string
		foreign, absent message.Message
	}{
		{"UpdatePlugin", &message.UpdatePlugin{Plugin: message.Plugin{ID: id}}, &message.UpdatePlugin{Plugin: message.Plugin{ID: 9999}}},
		{"DeletePlugin", &message.DeletePlugin{Plugin: message.Plugin{ID: id}}, &message.DeletePlugin{Plugin: message.Plugin{ID: 9999}}},
		{"RequestPlugin", &message.RequestPlugin{ID: id}, &message.RequestPlugin{ID: 9999}},
		{"RequestSource", &message.RequestSource{PluginID: id, PluginVersion: 1}, &message.RequestSource{PluginID: id, PluginVersion: 99}},
		{"RequestSourceList", &message.RequestSourceList{PluginID: id}, &message.RequestSourceList{PluginID: 9999}},
		{"DownloadSource", &message.RequestDownloadSourceZipfile{Source: message.Source{PluginID: id, PluginVersion: 1}}, &message.RequestDownloadSourceZipfile{Source: message.Source{PluginID: 9999, PluginVersion: 1}}},
	}
	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			foreign := bob.call(p.foreign)
			absent := bob.call(p.absent)
			assert.Equal(t, foreign, absent)
		})
	}

	// Nothing was changed by the refused requests.
	got := alice.call(&message.RequestPlugin{ID: id}).(*message.ResponsePlugin)
	assert.True(t, got.PluginExists)
}

func TestOwnerAndAdminAccess(t *testing.T) {
	h := newHarness(t)

	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)
	id := alice.createPlugin("mine")

	own := alice.call(&message.RequestPlugin{ID: id}).(*message.ResponsePlugin)
	require.True(t, own.PluginExists)
	assert.Equal(t, "alice", own.Plugin.Username)

	root := h.connect("10.0.0.3:1000")
	require.True(t, root.login("root", "root-pw").LoginOk)

	upd := root.call(&message.UpdatePlugin{Plugin: message.Plugin{ID: id, Name: "renamed", Username: "root"}}).(*message.ResponsePluginModification)
	require.True(t, upd.ModifiedPlugin, upd.Message)

	got := alice.call(&message.RequestPlugin{ID: id}).(*message.ResponsePlugin)
	assert.Equal(t, "renamed", got.Plugin.Name)
	assert.Equal(t, "alice", got.Plugin.Username, "owner never changes")

	// Admins learn that a target is missing.
	missing := root.call(&message.RequestPlugin{ID: 9999}).(*message.ResponsePlugin)
	assert.False(t, missing.PluginExists)
	assert.Equal(t, msgPluginMissing, missing.Message)

	// Updates and deletes of missing ids read exactly like a refusal, even
	// for admins.
	updMissing := root.call(&message.UpdatePlugin{Plugin: message.Plugin{ID: 9999, Name: "x"}}).(*message.ResponsePluginModification)
	assert.False(t, updMissing.ModifiedPlugin)
	assert.Equal(t, "Unauthorized to update that plugin", updMissing.Message)
	delMissing := root.call(&message.DeletePlugin{Plugin: message.Plugin{ID: 9999}}).(*message.ResponsePluginModification)
	assert.False(t, delMissing.ModifiedPlugin)
	assert.Equal(t, "Unauthorized to delete that plugin", delMissing.Message)

	src := root.call(&message.UpdateSource{Source: message.Source{PluginID: 9999, PluginVersion: 1}}).(*message.ResponseSourceModification)
	assert.Equal(t, "Unauthorized to update that source", src.Message)
	src = root.call(&message.DeleteSource{Source: message.Source{PluginID: 9999, PluginVersion: 1}}).(*message.ResponseSourceModification)
	assert.Equal(t, "Unauthorized to delete that source", src.Message)

	res := root.call(&message.UpdateResource{Resource: message.Resource{ID: 9999}}).(*message.ResponseResourceModification)
	assert.Equal(t, "Unauthorized to update that resource", res.Message)
	res = root.call(&message.DeleteResource{Resource: message.Resource{ID: 9999}}).(*message.ResponseResourceModification)
	assert.Equal(t, "Unauthorized to delete that resource", res.Message)

	rd := root.call(&message.UpdateResourceData{ResourceData: message.ResourceData{ResourceID: 9999, ResourceVersion: 1}}).(*message.ResponseResourceDataModification)
	assert.Equal(t, "Unauthorized to update that resource data", rd.Message)
	rd = root.call(&message.DeleteResourceData{ResourceData: message.ResourceData{ResourceID: 9999, ResourceVersion: 1}}).(*message.ResponseResourceDataModification)
	assert.Equal(t, "Unauthorized to delete that resource data", rd.Message)
}

func TestPluginListScoping(t *testing.T) {
	h := newHarness(t)

	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)
	alice.createPlugin("a1")

	bob := h.connect("10.0.0.2:1000")
	require.True(t, bob.login("bob", "bob-pw").LoginOk)
	bob.createPlugin("b1")

	list := alice.call(&message.RequestPluginList{Username: "*"}).(*message.ResponsePluginList)
	require.Len(t, list.Plugins, 1)
	assert.Equal(t, "a1", list.Plugins[0].Name)

	root := h.connect("10.0.0.3:1000")
	require.True(t, root.login("root", "root-pw").LoginOk)
	all := root.call(&message.RequestPluginList{Username: "*"}).(*message.ResponsePluginList)
	assert.Len(t, all.Plugins, 2)
	bobs := root.call(&message.RequestPluginList{Username: "bob"}).(*message.ResponsePluginList)
	require.Len(t, bobs.Plugins, 1)
	assert.Equal(t, "b1", bobs.Plugins[0].Name)
}

func TestSourceListByBuildStateIsAdminOnly(t *testing.T) {
	h := newHarness(t)

	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)
	id := alice.createPlugin("p")
	alice.createSource(id, 1)

	denied := alice.call(&message.RequestSourceList{PluginID: allPlugins, BuildState: "CREATED"}).(*message.ResponseSourceList)
	assert.False(t, denied.AllowedToViewList)

	root := h.connect("10.0.0.3:1000")
	require.True(t, root.login("root", "root-pw").LoginOk)
	list := root.call(&message.RequestSourceList{PluginID: allPlugins, BuildState: "created"}).(*message.ResponseSourceList)
	require.True(t, list.AllowedToViewList, list.Message)
	require.Len(t, list.SourceList, 1)
	assert.Equal(t, id, list.SourceList[0].PluginID)

	none := root.call(&message.RequestSourceList{PluginID: allPlugins}).(*message.ResponseSourceList)
	assert.False(t, none.AllowedToViewList)
	assert.Equal(t, "No plugin or buildstate given", none.Message)
}

func TestUpdateSourceRejectsUnknownBuildState(t *testing.T) {
	h := newHarness(t)

	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)
	id := alice.createPlugin("p")
	alice.createSource(id, 1)

	bad := alice.call(&message.UpdateSource{Source: message.Source{PluginID: id, PluginVersion: 1, BuildState: models.BuildState(42)}}).(*message.ResponseSourceModification)
	assert.False(t, bad.ModifiedSource)
	assert.Equal(t, "Invalid build state: 42", bad.Message)

	good := alice.call(&message.UpdateSource{Source: message.Source{PluginID: id, PluginVersion: 1, BuildState: models.BuildBuilding, BuildVersion: 2}}).(*message.ResponseSourceModification)
	require.True(t, good.ModifiedSource, good.Message)

	got := alice.call(&message.RequestSource{PluginID: id, PluginVersion: 1}).(*message.ResponseSource)
	assert.Equal(t, models.BuildBuilding, got.Source.BuildState)
}

func TestDeveloperSelfService(t *testing.T) {
	h := newHarness(t)
	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)

	// Promoting yourself is silently ignored.
	upd := alice.call(&message.UpdateDeveloper{Developer: message.Developer{Username: "alice", Firstname: "Alice", IsAdmin: true}}).(*message.ResponseDeveloperModification)
	require.True(t, upd.ModifiedDeveloper, upd.Message)

	me := alice.call(&message.RequestDeveloper{Username: "alice"}).(*message.ResponseDeveloper)
	require.True(t, me.DeveloperExists)
	assert.Equal(t, "Alice", me.Developer.Firstname)
	assert.False(t, me.Developer.IsAdmin)
	assert.Empty(t, me.Developer.Password)

	other := alice.call(&message.RequestDeveloper{Username: "bob"}).(*message.ResponseDeveloper)
	assert.False(t, other.DeveloperExists)

	// The old password keeps working after an update without one.
	again := h.connect("10.0.0.1:2000")
	assert.True(t, again.login("alice", "alice-pw").LoginOk)
}

func TestAdminManagesDevelopers(t *testing.T) {
	h := newHarness(t)
	root := h.connect("10.0.0.3:1000")
	require.True(t, root.login("root", "root-pw").LoginOk)

	created := root.call(&message.CreateNewDeveloper{Developer: message.Developer{Username: "Carol", Password: "carol-pw"}}).(*message.ResponseDeveloperModification)
	require.True(t, created.ModifiedDeveloper, created.Message)

	dup := root.call(&message.CreateNewDeveloper{Developer: message.Developer{Username: "carol", Password: "x"}}).(*message.ResponseDeveloperModification)
	assert.False(t, dup.ModifiedDeveloper)

	noPw := root.call(&message.CreateNewDeveloper{Developer: message.Developer{Username: "dave"}}).(*message.ResponseDeveloperModification)
	assert.False(t, noPw.ModifiedDeveloper)

	list := root.call(&message.RequestDeveloperList{}).(*message.ResponseDeveloperList)
	require.True(t, list.AllowedToViewList)
	assert.Len(t, list.DeveloperList, 4)

	carol := h.connect("10.0.0.4:1000")
	require.True(t, carol.login("carol", "carol-pw").LoginOk)

	del := root.call(&message.DeleteDeveloper{Developer: message.Developer{Username: "carol"}}).(*message.ResponseDeveloperModification)
	assert.True(t, del.ModifiedDeveloper)
	gone := root.call(&message.DeleteDeveloper{Developer: message.Developer{Username: "carol"}}).(*message.ResponseDeveloperModification)
	assert.False(t, gone.ModifiedDeveloper)
}

func TestIconSizeIsBounded(t *testing.T) {
	h := newHarness(t)
	h.cfg.MaxIconSize = 8
	c := h.connect("10.0.0.1:1000")
	require.True(t, c.login("alice", "alice-pw").LoginOk)

	resp := c.call(&message.CreateNewPlugin{Plugin: message.Plugin{Name: "big", Icon: make([]byte, 9)}}).(*message.ResponsePluginModification)
	assert.False(t, resp.ModifiedPlugin)
	assert.Equal(t, "Icon file size > 8 byte not allowed!", resp.Message)

	ok := c.call(&message.CreateNewPlugin{Plugin: message.Plugin{Name: "small", Icon: make([]byte, 8)}}).(*message.ResponsePluginModification)
	assert.True(t, ok.ModifiedPlugin)
}

// ============================================================================
// Transfers
// ============================================================================

func TestSourceUploadAndDownload(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")
	require.True(t, c.login("alice", "alice-pw").LoginOk)
	id := c.createPlugin("p")
	c.createSource(id, 1)

	// Nothing to download yet.
	none := c.call(&message.RequestDownloadSourceZipfile{Source: message.Source{PluginID: id, PluginVersion: 1}}).(*message.ResponseUploadDownloadData)
	assert.False(t, none.Success)
	assert.Equal(t, "No zipfile has been previously uploaded for this source", none.Message)

	payload := []byte("0123456789")
	c.upload(&message.StartUploadSourceZipfile{
		Source:   message.Source{PluginID: id, PluginVersion: 1},
		FileSize: int64(len(payload)),
	}, payload, 3)

	src := c.call(&message.RequestSource{PluginID: id, PluginVersion: 1}).(*message.ResponseSource)
	require.True(t, src.SourceExists)
	assert.Equal(t, "Source-1-1.zip", src.Source.ZipFileName)
	assert.Equal(t, models.BuildUploaded, src.Source.BuildState)
	assert.Equal(t, "Uploaded by alice", src.Source.BuildLog)
	assert.NotZero(t, src.Source.UploadDate)

	got := c.download(&message.RequestDownloadSourceZipfile{Source: message.Source{PluginID: id, PluginVersion: 1}})
	assert.Equal(t, payload, got)

	// The session continues after a transfer.
	list := c.call(&message.RequestPluginList{}).(*message.ResponsePluginList)
	assert.Len(t, list.Plugins, 1)
}

func TestUploadOverflowKeepsSession(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")
	require.True(t, c.login("alice", "alice-pw").LoginOk)
	id := c.createPlugin("p")
	c.createSource(id, 1)

	ack := c.call(&message.StartUploadSourceZipfile{Source: message.Source{PluginID: id, PluginVersion: 1}, FileSize: 2}).(*message.ResponseUploadDownloadData)
	require.True(t, ack.Success)
	refused := c.call(&message.UploadDownloadData{Data: []byte("abc")}).(*message.ResponseUploadDownloadData)
	assert.False(t, refused.Success)

	src := c.call(&message.RequestSource{PluginID: id, PluginVersion: 1}).(*message.ResponseSource)
	assert.Empty(t, src.Source.ZipFileName)
	assert.Equal(t, models.BuildCreated, src.Source.BuildState)
}

func TestPublishedAssemblyIsPublic(t *testing.T) {
	h := newHarness(t)
	alice := h.connect("10.0.0.1:1000")
	require.True(t, alice.login("alice", "alice-pw").LoginOk)
	id := alice.createPlugin("p")
	alice.createSource(id, 1)
	alice.upload(&message.StartUploadAssemblyZipfile{
		Source:   message.Source{PluginID: id, PluginVersion: 1},
		FileSize: 6,
	}, []byte("binary"), 6)

	anon := h.connect("10.0.0.9:1000")
	req := &message.RequestDownloadAssemblyZipfile{Source: message.Source{PluginID: id, PluginVersion: 1}}
	denied := anon.call(req).(*message.ResponseUploadDownloadData)
	assert.False(t, denied.Success)
	assert.Equal(t, "Unauthorized to download assembly zipfile for that source", denied.Message)

	// Only admins publish.
	notAdmin := alice.call(&message.UpdateSourcePublishState{Source: message.Source{PluginID: id, PluginVersion: 1, PublishState: models.PublishRelease}}).(*message.ResponseSourceModification)
	assert.False(t, notAdmin.ModifiedSource)

	root := h.connect("10.0.0.3:1000")
	require.True(t, root.login("root", "root-pw").LoginOk)
	pub := root.call(&message.UpdateSourcePublishState{Source: message.Source{PluginID: id, PluginVersion: 1, PublishState: models.PublishBeta}}).(*message.ResponseSourceModification)
	require.True(t, pub.ModifiedSource, pub.Message)

	assert.Equal(t, []byte("binary"), anon.download(req))

	list := anon.call(&message.RequestPublishedPluginList{PublishState: models.PublishDeveloper}).(*message.ResponsePublishedPluginList)
	require.True(t, list.AllowedToViewList)
	require.Len(t, list.PluginsAndSources, 1)
	assert.EqualValues(t, 6, list.PluginsAndSources[0].FileSize)

	release := anon.call(&message.RequestPublishedPluginList{PublishState: models.PublishRelease}).(*message.ResponsePublishedPluginList)
	assert.Empty(t, release.PluginsAndSources)

	hidden := anon.call(&message.RequestPublishedPluginList{PublishState: models.NotPublished}).(*message.ResponsePublishedPluginList)
	assert.False(t, hidden.AllowedToViewList)
}

func TestDeletePluginRemovesFiles(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")
	require.True(t, c.login("alice", "alice-pw").LoginOk)
	id := c.createPlugin("p")
	c.createSource(id, 1)
	c.upload(&message.StartUploadSourceZipfile{Source: message.Source{PluginID: id, PluginVersion: 1}, FileSize: 1}, []byte("z"), 1)

	ctx := context.Background()
	_, err := h.blobs.Stat(ctx, "source/Source-1-1.zip")
	require.NoError(t, err)

	del := c.call(&message.DeletePlugin{Plugin: message.Plugin{ID: id}}).(*message.ResponsePluginModification)
	require.True(t, del.ModifiedPlugin, del.Message)

	_, err = h.blobs.Stat(ctx, "source/Source-1-1.zip")
	assert.Error(t, err)
	_, err = h.store.GetSource(ctx, id, 1)
	assert.ErrorIs(t, err, models.ErrSourceNotFound)
}

func TestResourceDataRoundTrip(t *testing.T) {
	h := newHarness(t)
	c := h.connect("10.0.0.1:1000")
	require.True(t, c.login("alice", "alice-pw").LoginOk)

	created := c.call(&message.CreateNewResource{Resource: message.Resource{Name: "wordlist"}}).(*message.ResponseResourceModification)
	require.True(t, created.ModifiedResource, created.Message)
	list := c.call(&message.RequestResourceList{}).(*message.ResponseResourceList)
	require.Len(t, list.Resources, 1)
	rid := list.Resources[0].ID

	rd := c.call(&message.CreateNewResourceData{ResourceData: message.ResourceData{ResourceID: rid, ResourceVersion: 1}}).(*message.ResponseResourceDataModification)
	require.True(t, rd.ModifiedResourceData, rd.Message)

	c.upload(&message.StartUploadResourceDataFile{
		ResourceData: message.ResourceData{ResourceID: rid, ResourceVersion: 1},
		FileSize:     5,
	}, []byte("words"), 2)

	got := c.download(&message.RequestDownloadResourceDataFile{ResourceData: message.ResourceData{ResourceID: rid, ResourceVersion: 1}})
	assert.Equal(t, []byte("words"), got)

	datas := c.call(&message.RequestResourceDataList{ResourceID: rid}).(*message.ResponseResourceDataList)
	require.Len(t, datas.ResourceDataList, 1)
	assert.Equal(t, "ResourceData-1-1.bin", datas.ResourceDataList[0].DataFilename)
}

// ============================================================================
// Error classification
// ============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"lockout", &auth.LockedOutError{Attempt: 4}, KindLockout},
		{"protocol", wire.ErrBadMagic, KindProtocol},
		{"transfer", fmt.Errorf("%w: client sent Login", transfer.ErrAborted), KindTransfer},
		{"transfer connection", fmt.Errorf("%w: send chunk", transfer.ErrConnection), KindTransport},
		{"internal", errors.New("db down"), KindInternal},
		{"network error stays internal", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify("op", tt.err).Kind)
		})
	}

	already := &Error{Kind: KindTransport, Err: io.EOF}
	assert.Same(t, already, classify("op", already))
	assert.True(t, KindLockout.Closes())
	assert.False(t, KindTransfer.Closes())
}

func TestRouteTableCoversRequests(t *testing.T) {
	for kind, r := range routes {
		assert.NotNil(t, r.handle, "%s has no handler", kind)
		if r.rule == ruleOwnerOrAdmin || r.rule == ruleOwnerAdminOrPublished {
			assert.NotNil(t, r.resolve, "%s has no resolver", kind)
		}
		if r.rule != rulePublic {
			assert.NotEmpty(t, r.denied, "%s has no denial text", kind)
		}
		if kind != message.KindLogout {
			assert.NotNil(t, r.reply, "%s has no reply builder", kind)
			assert.NotEmpty(t, r.failed, "%s has no failure text", kind)
		}
	}
}

func responseText(t *testing.T, m message.Message) string {
	t.Helper()
	switch r := m.(type) {
	case *message.ResponsePluginModification:
		return r.Message
	case *message.ResponseDeveloperList:
		return r.Message
	case *message.ResponsePluginList:
		return r.Message
	case *message.ResponseUploadDownloadData:
		return r.Message
	default:
		t.Fatalf("unexpected response %T", m)
		return ""
	}
}
