package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeFiles struct {
	mu      sync.Mutex
	calls   []string
	copyErr error
	failAll error
	gate    chan struct{} // when set, Copy blocks until closed
	exists  bool
	onCopy  func(progress files.ProgressFunc)
}

func (f *fakeFiles) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeFiles) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFiles) SharedFolderRootDir(_ context.Context, serverID int64) ([]files.Info, error) {
	f.record("root")
	return []files.Info{{ServerID: serverID, FilePath: "/sdcard", FileName: "sdcard", IsDirectory: true}}, f.failAll
}

func (f *fakeFiles) FileList(_ context.Context, serverID int64, dir string) ([]files.Info, error) {
	f.record("list " + dir)
	if f.failAll != nil {
		return nil, f.failAll
	}
	return []files.Info{{ServerID: serverID, FilePath: dir + "/a", FileName: "a"}}, nil
}

func (f *fakeFiles) FileObject(_ context.Context, serverID int64, p string) (files.Info, error) {
	f.record("stat " + p)
	return files.Info{ServerID: serverID, FilePath: p}, f.failAll
}

func (f *fakeFiles) NewFolder(_ context.Context, parent, name string) error {
	f.record("mkdir " + parent + " " + name)
	return f.failAll
}

func (f *fakeFiles) Rename(_ context.Context, p, newName string) error {
	f.record("rename " + p + " " + newName)
	return f.failAll
}

func (f *fakeFiles) Delete(_ context.Context, p string) error {
	f.record("delete " + p)
	return f.failAll
}

func (f *fakeFiles) Exists(_ context.Context, p string) (bool, error) {
	f.record("exists " + p)
	return f.exists, f.failAll
}

func (f *fakeFiles) OpenDescriptor(_ context.Context, p string) (string, error) {
	f.record("open " + p)
	if f.failAll != nil {
		return "", f.failAll
	}
	return "fd-1", nil
}

func (f *fakeFiles) Upload(_ context.Context, descriptor, dstFolder, dstName string, progress files.ProgressFunc) error {
	f.record("upload " + descriptor + " " + dstFolder + " " + dstName)
	progress(5, 10)
	progress(10, 10)
	return f.failAll
}

func (f *fakeFiles) Copy(_ context.Context, src, dstFolder, dstName string, progress files.ProgressFunc) error {
	f.record("copy " + src + " " + dstFolder + " " + dstName)
	if f.gate != nil {
		<-f.gate
	}
	if f.onCopy != nil {
		f.onCopy(progress)
	}
	return f.copyErr
}

type fakeShares struct {
	mu       sync.Mutex
	shares   []location.Entry
	accessed []string
	opened   int
	openErr  error
}

func (s *fakeShares) ListShares(context.Context) []location.Entry {
	return s.shares
}

func (s *fakeShares) AccessShare(_ context.Context, serverID int64, address string) []files.Info {
	s.mu.Lock()
	s.accessed = append(s.accessed, address)
	s.mu.Unlock()
	return []files.Info{{ServerID: serverID, FilePath: address + "/Documents", IsDirectory: true}}
}

func (s *fakeShares) OpenManager(context.Context) error {
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()
	return s.openErr
}

type fakeLauncher struct {
	launched int
	err      error
}

func (l *fakeLauncher) LaunchRootLocation(context.Context) error {
	l.launched++
	return l.err
}

type fakeCache struct{ cleared int }

func (c *fakeCache) Clear() { c.cleared++ }

type fakeElevator struct{ acquired int }

func (e *fakeElevator) Acquire(context.Context) error {
	e.acquired++
	return errors.New("no root")
}

type fakeStrings map[string]string

func (s fakeStrings) Strings() map[string]string { return s }

type resultSink struct {
	mu      sync.Mutex
	results []delivered
}

type delivered struct {
	serverID int64
	opcode   Opcode
	result   payload.Map
}

func (s *resultSink) OnResult(serverID int64, opcode Opcode, result payload.Map) error {
	s.mu.Lock()
	s.results = append(s.results, delivered{serverID, opcode, result})
	s.mu.Unlock()
	return nil
}

func (s *resultSink) Results() []delivered {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivered(nil), s.results...)
}

type harness struct {
	d        *Dispatcher
	files    *fakeFiles
	shares   *fakeShares
	launcher *fakeLauncher
	cache    *fakeCache
	elevator *fakeElevator
	sink     *resultSink
}

func realSMB() location.Entry {
	return location.Entry{
		ServerID:        500,
		ServerName:      "NAS",
		ServerAddr:      "smb://nas.example.com/share",
		ConnectionType:  location.ConnSMB,
		IsAnonymousMode: true,
		ServerPort:      445,
	}
}

func newHarness(t *testing.T, entries ...location.Entry) *harness {
	t.Helper()
	if entries == nil {
		entries = location.DefaultEntries(true)
	}
	h := &harness{
		files:    &fakeFiles{},
		shares:   &fakeShares{shares: []location.Entry{{ServerID: 101, ServerName: "  📁 Home", ServerAddr: "smb://192.168.1.100/shared"}}},
		launcher: &fakeLauncher{},
		cache:    &fakeCache{},
		elevator: &fakeElevator{},
		sink:     &resultSink{},
	}
	d, err := New(Deps{
		Registry: location.NewRegistry(entries, nil),
		Files:    h.files,
		Shares:   h.shares,
		Cache:    h.cache,
		Launcher: h.launcher,
		Elevator: h.elevator,
		Strings:  fakeStrings{"app_name": "My Files"},
	})
	require.NoError(t, err)
	d.RegisterResultCallback(h.sink)
	h.d = d
	return h
}

func (h *harness) sync(typ string, op Opcode, extras payload.Map) payload.Map {
	return h.d.Sync(context.Background(), 1, typ, op, extras)
}

func serverAddrs(list any) []string {
	var out []string
	for _, e := range list.([]location.Entry) {
		out = append(out, e.ServerAddr)
	}
	return out
}

// ============================================================================
// Construction and envelope
// ============================================================================

func TestNewRequiresCollaborators(t *testing.T) {
	reg := location.NewRegistry(nil, nil)
	_, err := New(Deps{})
	assert.Error(t, err)
	_, err = New(Deps{Registry: reg})
	assert.Error(t, err)
	_, err = New(Deps{Registry: reg, Files: &fakeFiles{}})
	assert.Error(t, err)
	_, err = New(Deps{Registry: reg, Files: &fakeFiles{}, Shares: &fakeShares{}})
	assert.NoError(t, err)
}

func TestDefaultFlags(t *testing.T) {
	noWork := []Opcode{
		OpConnect, OpGetResource, OpVerifyServerInfo, OpGetServerCount,
		OpRemoveMonitor, OpExternalCopy, OpExternalMove, Opcode(999),
	}
	for _, op := range noWork {
		t.Run(op.String(), func(t *testing.T) {
			h := newHarness(t)
			res := h.sync("", op, nil)
			assert.Equal(t, payload.Map{
				payload.KeyIsSuccess:      true,
				payload.KeyIsValidRequest: true,
			}, res)
		})
	}
}

func TestOpcodeNames(t *testing.T) {
	assert.Equal(t, "GET_SERVER_LIST", OpGetServerList.String())
	assert.Equal(t, "EXIST", OpExist.String())
	assert.Equal(t, "UNKNOWN(3)", Opcode(3).String())
	assert.False(t, Opcode(3).Known())
	for _, op := range Opcodes() {
		assert.True(t, op.Known(), op.String())
	}
	assert.Len(t, Opcodes(), len(opTable))
}

// ============================================================================
// Location opcodes
// ============================================================================

func TestGetServerListDisguise(t *testing.T) {
	root := location.DefaultEntries(true)[0]
	sharePH := location.DefaultEntries(true)[1]
	ftps := location.Entry{ServerID: 600, ServerAddr: "ftps://ftp.example.com", ConnectionType: location.ConnFTPS}
	sftp := location.Entry{ServerID: 700, ServerAddr: "sftp://host.example.com", ConnectionType: location.ConnSFTP}
	entries := []location.Entry{root, sharePH, realSMB(), ftps, sftp}

	tests := []struct {
		typ  string
		want []string
	}{
		{"", []string{location.RootSentinel, location.ShareSentinel, "smb://nas.example.com/share", "ftps://ftp.example.com", "sftp://host.example.com"}},
		{"FTP", []string{location.RootSentinel}},
		{"FTPS", []string{location.RootSentinel, "ftps://ftp.example.com"}},
		{"SFTP", []string{location.ShareSentinel, "sftp://host.example.com"}},
		{"SMB", []string{"smb://nas.example.com/share"}},
		{"WEBDAV", nil},
	}
	for _, tt := range tests {
		t.Run("type="+tt.typ, func(t *testing.T) {
			h := newHarness(t, entries...)
			res := h.sync(tt.typ, OpGetServerList, nil)
			assert.Equal(t, true, res[payload.KeyResult])
			assert.Equal(t, tt.want, serverAddrs(res[payload.KeyServerList]))
		})
	}
}

func TestListServersFTPReturnsOnlyRootPlaceholder(t *testing.T) {
	root := location.DefaultEntries(true)[0]
	h := newHarness(t, root, realSMB())

	res := h.sync(location.ConnFTP, OpGetServerList, nil)

	list := res[payload.KeyServerList].([]location.Entry)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRootPlaceholder())
}

func TestAddServerRealAddress(t *testing.T) {
	h := newHarness(t)
	before := h.d.Registry().Len()

	res := h.sync(location.ConnSMB, OpAddServer, payload.Map{
		payload.KeyServerAddr:     "203.0.113.5",
		payload.KeyServerName:     "Office",
		payload.KeyConnectionType: location.ConnSMB,
	})

	assert.Equal(t, true, res[payload.KeyResult])
	id, ok := res[payload.KeyServerID].(int64)
	require.True(t, ok)
	assert.Equal(t, before+1, h.d.Registry().Len())

	stored, found := h.d.Registry().Get(id)
	require.True(t, found)
	assert.Equal(t, "203.0.113.5", stored.ServerAddr)
	assert.Equal(t, location.ConnSMB, stored.ConnectionType)

	list := h.sync("", OpGetServerList, nil)[payload.KeyServerList]
	assert.Contains(t, serverAddrs(list), "203.0.113.5")
	assert.Zero(t, h.launcher.launched)
	assert.Zero(t, h.shares.opened)
}

func TestAddServerKeepsCredentials(t *testing.T) {
	h := newHarness(t)

	res := h.sync(location.ConnSMB, OpAddServer, payload.Map{
		payload.KeyServerAddr: "203.0.113.5",
		payload.KeyUsername:   "alice",
		payload.KeyPassword:   "secret",
	})
	require.Equal(t, true, res[payload.KeyResult])
	id := res[payload.KeyServerID].(int64)

	stored, _ := h.d.Registry().Get(id)
	assert.False(t, stored.IsAnonymousMode)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "secret", stored.Password)

	res = h.sync("", OpUpdateServer, payload.Map{payload.KeyServerID: id, payload.KeyUsername: "bob"})
	require.Equal(t, true, res[payload.KeyResult])
	stored, _ = h.d.Registry().Get(id)
	assert.Equal(t, "bob", stored.Username)
	assert.Equal(t, "secret", stored.Password)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for sc.Scan() {
		var m map[string]any
		dec := json.NewDecoder(bytes.NewReader(sc.Bytes()))
		dec.UseNumber()
		if dec.Decode(&m) == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestAddServerLogsNewIDSeparately(t *testing.T) {
	out := &syncBuffer{}
	logger.InitWithWriter(out, "INFO", "json", false)
	t.Cleanup(func() { logger.InitWithWriter(os.Stdout, "INFO", "text", false) })

	h := newHarness(t)
	res := h.sync(location.ConnSMB, OpAddServer, payload.Map{payload.KeyServerAddr: "203.0.113.5"})
	id := res[payload.KeyServerID].(int64)

	var stored map[string]any
	for _, line := range out.lines() {
		if line["msg"] == "Server stored" {
			stored = line
		}
	}
	require.NotNil(t, stored)
	assert.Equal(t, json.Number("1"), stored[logger.KeyServerID])
	assert.Equal(t, json.Number(strconv.FormatInt(id, 10)), stored[logger.KeyNewID])
}

func TestAddServerIDsAreUnique(t *testing.T) {
	h := newHarness(t)
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		res := h.sync("", OpAddServer, payload.Map{payload.KeyServerAddr: "nas.example.com"})
		id := res[payload.KeyServerID].(int64)
		assert.False(t, seen[id], "id %d reused", id)
		seen[id] = true
	}
}

func TestAddServerRouting(t *testing.T) {
	tests := []struct {
		name         string
		typ          string
		extras       payload.Map
		launchErr    error
		noLauncher   bool
		openErr      error
		wantResult   bool
		wantLaunched int
		wantOpened   int
	}{
		{name: "FTP label", typ: "FTP", wantResult: true, wantLaunched: 1},
		{name: "root server type", extras: payload.Map{payload.KeyServerType: location.ServerTypeRootAccess}, wantResult: true, wantLaunched: 1},
		{name: "root sentinel", typ: "SMB", extras: payload.Map{payload.KeyServerAddr: location.RootSentinel}, wantResult: true, wantLaunched: 1},
		{name: "FTPS declined", typ: "FTPS", wantResult: false},
		{name: "SFTP label", typ: "SFTP", wantResult: true, wantOpened: 1},
		{name: "share server type", extras: payload.Map{payload.KeyServerType: location.ServerTypeSMBAccess}, wantResult: true, wantOpened: 1},
		{name: "share sentinel", extras: payload.Map{payload.KeyServerAddr: location.ShareSentinel}, wantResult: true, wantOpened: 1},
		{name: "SMB label", typ: "SMB", wantResult: true, wantOpened: 1},
		{name: "generic defaults to root", typ: "WEBDAV", extras: payload.Map{payload.KeyServerAddr: "not an address"}, wantResult: true, wantLaunched: 1},
		{name: "root flow failure", typ: "FTP", launchErr: errors.New("boom"), wantResult: false, wantLaunched: 1},
		{name: "no launcher", typ: "FTP", noLauncher: true, wantResult: false},
		{name: "share manager failure", typ: "SMB", openErr: errors.New("boom"), wantResult: false, wantOpened: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.launcher.err = tt.launchErr
			h.shares.openErr = tt.openErr
			if tt.noLauncher {
				h.d.deps.Launcher = nil
			}
			before := h.d.Registry().List()

			res := h.sync(tt.typ, OpAddServer, tt.extras)

			assert.Equal(t, tt.wantResult, res[payload.KeyResult])
			assert.Equal(t, true, res[payload.KeyIsSuccess])
			assert.Equal(t, tt.wantLaunched, h.launcher.launched)
			assert.Equal(t, tt.wantOpened, h.shares.opened)
			assert.Equal(t, before, h.d.Registry().List(), "placeholder flows never register entries")
			if tt.wantResult {
				assert.IsType(t, int64(0), res[payload.KeyServerID])
			} else {
				assert.NotContains(t, res, payload.KeyServerID)
			}
		})
	}
}

func TestUpdateServer(t *testing.T) {
	h := newHarness(t, realSMB())

	t.Run("UnknownID", func(t *testing.T) {
		before := h.d.Registry().List()
		res := h.sync("", OpUpdateServer, payload.Map{payload.KeyServerID: int64(42), payload.KeyServerName: "x"})
		assert.Equal(t, false, res[payload.KeyResult])
		assert.Equal(t, before, h.d.Registry().List())
	})

	t.Run("KnownIDIdempotent", func(t *testing.T) {
		update := payload.Map{payload.KeyServerID: float64(500), payload.KeyServerName: "Renamed"}
		res := h.sync("", OpUpdateServer, update)
		assert.Equal(t, true, res[payload.KeyResult])
		first := h.d.Registry().List()

		res = h.sync("", OpUpdateServer, update)
		assert.Equal(t, true, res[payload.KeyResult])
		assert.Equal(t, first, h.d.Registry().List())
		assert.Equal(t, "Renamed", first[0].ServerName)
	})
}

func TestDeleteServer(t *testing.T) {
	h := newHarness(t, realSMB(), realSMB())

	res := h.sync("", OpDeleteServer, payload.Map{payload.KeyServerID: int64(500)})
	assert.Equal(t, true, res[payload.KeyResult])
	assert.Equal(t, 1, h.d.Registry().Len(), "only the first match is removed")

	res = h.sync("", OpDeleteServer, payload.Map{payload.KeyServerID: int64(1)})
	assert.Equal(t, false, res[payload.KeyResult])
}

func TestFindServerIgnoresRegistry(t *testing.T) {
	h := newHarness(t, realSMB())
	res := h.sync("", OpFindServer, nil)

	assert.Equal(t, true, res[payload.KeyResult])
	list := res[payload.KeyServerList].([]location.Entry)
	assert.Equal(t, location.DefaultEntries(false), list)
	for _, e := range list {
		assert.Zero(t, e.ServerID)
	}
}

func TestGetSharedFolderRouting(t *testing.T) {
	tests := []struct {
		name       string
		extras     payload.Map
		wantCalls  []string
		wantAccess []string
		wantOpened int
		wantShares bool
		wantEmpty  bool
	}{
		{name: "root sentinel", extras: payload.Map{payload.KeyServerAddr: location.RootSentinel}, wantCalls: []string{"root"}},
		{name: "share sentinel", extras: payload.Map{payload.KeyServerAddr: location.ShareSentinel}, wantShares: true},
		{name: "add new share", extras: payload.Map{payload.KeyServerAddr: location.ShareAddNew}, wantOpened: 1, wantEmpty: true},
		{name: "smb share", extras: payload.Map{payload.KeyServerAddr: "smb://nas/share"}, wantAccess: []string{"smb://nas/share"}},
		{name: "cifs share", extras: payload.Map{payload.KeyServerAddr: "cifs://nas/share"}, wantAccess: []string{"cifs://nas/share"}},
		{name: "unknown address", extras: payload.Map{payload.KeyServerAddr: "webdav://x"}, wantCalls: []string{"root"}},
		{name: "no address", extras: payload.Map{payload.KeyServerID: int64(9)}, wantCalls: []string{"root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res := h.sync("", OpGetSharedFolder, tt.extras)

			assert.Equal(t, true, res[payload.KeyResult])
			assert.Equal(t, tt.wantCalls, h.files.Calls())
			assert.Equal(t, tt.wantAccess, h.shares.accessed)
			assert.Equal(t, tt.wantOpened, h.shares.opened)

			list := res[payload.KeySharedFolderList]
			switch {
			case tt.wantShares:
				assert.Equal(t, h.shares.shares, list)
			case tt.wantEmpty:
				assert.Empty(t, list)
			default:
				assert.NotEmpty(t, list)
			}
		})
	}
}

func TestGetSharedFolderShareSentinelIndependentOfRegistry(t *testing.T) {
	h := newHarness(t, realSMB())
	res := h.sync("SFTP", OpGetSharedFolder, payload.Map{payload.KeyServerAddr: location.ShareSentinel})
	assert.Equal(t, h.shares.ListShares(context.Background()), res[payload.KeySharedFolderList])
}

func TestGetSharedFolderRootFailure(t *testing.T) {
	h := newHarness(t)
	h.files.failAll = errors.New("io")
	res := h.sync("", OpGetSharedFolder, nil)
	assert.Equal(t, []files.Info{}, res[payload.KeySharedFolderList])
	assert.Equal(t, true, res[payload.KeyResult])
}

// ============================================================================
// Service and file opcodes
// ============================================================================

func TestServiceOpcodes(t *testing.T) {
	h := newHarness(t)

	res := h.sync("", OpGetStringMap, nil)
	assert.Equal(t, map[string]string{"app_name": "My Files"}, res[payload.KeyResult])

	res = h.sync("", OpCheckPermission, nil)
	assert.Equal(t, 1, h.elevator.acquired)
	assert.Equal(t, true, res[payload.KeyIsSuccess], "elevation outcome is only logged")
	assert.NotContains(t, res, payload.KeyResult)

	res = h.sync("", OpRemoveCachedFileList, nil)
	assert.Equal(t, 1, h.cache.cleared)
	assert.Equal(t, true, res[payload.KeyResult])
}

func TestFileOpcodes(t *testing.T) {
	tests := []struct {
		name   string
		op     Opcode
		extras payload.Map
		call   string
		key    string
	}{
		{"list", OpGetFileList, payload.Map{payload.KeyFilePath: "/sdcard"}, "list /sdcard", payload.KeyFileList},
		{"object", OpGetFileObject, payload.Map{payload.KeyFilePath: "/sdcard/a"}, "stat /sdcard/a", payload.KeyFileObject},
		{"descriptor", OpGetFileDescriptor, payload.Map{payload.KeySourcePath: "/a"}, "open /a", payload.KeyFileDescriptor},
		{"mkdir", OpCreateFolder, payload.Map{payload.KeyParentPath: "/", payload.KeyNewName: "d"}, "mkdir / d", ""},
		{"rename", OpRename, payload.Map{payload.KeySourcePath: "/a", payload.KeyNewName: "b"}, "rename /a b", ""},
		{"delete", OpDelete, payload.Map{payload.KeySourcePath: "/a"}, "delete /a", ""},
		{"copy", OpInternalCopy, payload.Map{payload.KeySourcePath: "/a", payload.KeyDstFolderPath: "/d", payload.KeyDstFileName: "a"}, "copy /a /d a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res := h.sync("", tt.op, tt.extras)
			assert.Equal(t, []string{tt.call}, h.files.Calls())
			assert.Equal(t, true, res[payload.KeyIsSuccess])
			assert.Equal(t, true, res[payload.KeyResult])
			if tt.key != "" {
				assert.Contains(t, res, tt.key)
			}
		})

		t.Run(tt.name+"/failure", func(t *testing.T) {
			h := newHarness(t)
			h.files.failAll = errors.New("io")
			h.files.copyErr = h.files.failAll
			res := h.sync("", tt.op, tt.extras)
			if tt.key != "" {
				assert.Equal(t, false, res[payload.KeyResult])
			} else {
				assert.Equal(t, false, res[payload.KeyIsSuccess])
				assert.Equal(t, true, res[payload.KeyResult])
			}
		})
	}
}

func TestInternalMove(t *testing.T) {
	extras := payload.Map{
		payload.KeySourcePath:    "/a",
		payload.KeyDstFolderPath: "/d",
		payload.KeyDstFileName:   "a",
	}

	t.Run("CopyFailsSourceKept", func(t *testing.T) {
		h := newHarness(t)
		h.files.copyErr = errors.New("disk full")
		res := h.sync("", OpInternalMove, extras)
		assert.Equal(t, false, res[payload.KeyIsSuccess])
		assert.Equal(t, []string{"copy /a /d a"}, h.files.Calls())
	})

	t.Run("CopyThenDelete", func(t *testing.T) {
		h := newHarness(t)
		res := h.sync("", OpInternalMove, extras)
		assert.Equal(t, true, res[payload.KeyIsSuccess])
		assert.Equal(t, []string{"copy /a /d a", "delete /a"}, h.files.Calls())
	})
}

func TestExist(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, false, h.sync("", OpExist, payload.Map{payload.KeySourcePath: "/x"})[payload.KeyResult])
	h.files.exists = true
	assert.Equal(t, true, h.sync("", OpExist, payload.Map{payload.KeySourcePath: "/x"})[payload.KeyResult])
}

func TestUploadProgressTagged(t *testing.T) {
	h := newHarness(t)

	type tick struct {
		serverID    int64
		opcode      Opcode
		done, total int64
	}
	var ticks []tick
	h.d.RegisterProgressCallback(ProgressFunc(func(serverID int64, opcode Opcode, done, total int64) error {
		ticks = append(ticks, tick{serverID, opcode, done, total})
		return nil
	}))

	res := h.d.Sync(context.Background(), 77, "", OpUpload, payload.Map{
		payload.KeyFileDescriptor: "fd-1",
		payload.KeyDstFolderPath:  "/d",
		payload.KeyDstFileName:    "f",
	})

	assert.Equal(t, true, res[payload.KeyIsSuccess])
	assert.Equal(t, []tick{{77, OpUpload, 5, 10}, {77, OpUpload, 10, 10}}, ticks)

	h.d.UnregisterProgressCallback()
	ticks = nil
	h.d.Sync(context.Background(), 77, "", OpUpload, nil)
	assert.Empty(t, ticks)
}

// ============================================================================
// Tracking, cancellation, callbacks
// ============================================================================

func TestSyncDeliversCallback(t *testing.T) {
	h := newHarness(t)
	res := h.d.Sync(context.Background(), 3, "FTP", OpGetServerList, nil)

	got := h.sink.Results()
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].serverID)
	assert.Equal(t, OpGetServerList, got[0].opcode)
	assert.Equal(t, res, got[0].result)
	assert.Empty(t, h.d.InFlight())
}

func TestCancelAfterCompletion(t *testing.T) {
	h := newHarness(t)
	h.sync("", OpConnect, nil)
	assert.False(t, h.d.Cancel(1))
}

func TestAsyncCompletes(t *testing.T) {
	h := newHarness(t)
	id := h.d.Async(context.Background(), 5, "", OpExist, payload.Map{payload.KeySourcePath: "/x"})
	assert.NotEmpty(t, id)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.d.Wait(ctx))

	got := h.sink.Results()
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].serverID)
	assert.Equal(t, OpExist, got[0].opcode)
}

func TestAsyncOutlivesCallerContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.d.Async(ctx, 5, "", OpConnect, nil)
	cancel()

	require.NoError(t, h.d.Wait(context.Background()))
	assert.Len(t, h.sink.Results(), 1)
}

// startBlockedCopy submits an INTERNAL_COPY that blocks inside the file
// collaborator until release is called.
func startBlockedCopy(t *testing.T, h *harness, serverID int64) (release func()) {
	t.Helper()
	gate := make(chan struct{})
	h.files.gate = gate
	h.d.Async(context.Background(), serverID, "", OpInternalCopy, payload.Map{
		payload.KeySourcePath:    "/a",
		payload.KeyDstFolderPath: "/d",
		payload.KeyDstFileName:   "a",
	})
	require.Eventually(t, func() bool { return len(h.files.Calls()) == 1 }, 5*time.Second, time.Millisecond)
	return func() { close(gate) }
}

func TestCancelSuppressesCallbackButNotWork(t *testing.T) {
	h := newHarness(t)
	release := startBlockedCopy(t, h, 9)

	inflight := h.d.InFlight()
	require.Len(t, inflight, 1)
	assert.Equal(t, int64(9), inflight[0].ServerID)
	assert.Equal(t, "INTERNAL_COPY", inflight[0].OpcodeName)

	assert.True(t, h.d.Cancel(9))
	assert.True(t, h.d.InFlight()[0].Cancelled)

	release()
	require.NoError(t, h.d.Wait(context.Background()))

	assert.Empty(t, h.sink.Results(), "cancelled request delivers nothing")
	assert.Equal(t, []string{"copy /a /d a"}, h.files.Calls(), "the copy itself ran")
	assert.Empty(t, h.d.InFlight())
	assert.False(t, h.d.Cancel(9))
}

func TestCancelledSyncStillReturnsResult(t *testing.T) {
	h := newHarness(t)
	h.files.onCopy = func(files.ProgressFunc) {
		assert.True(t, h.d.Cancel(4))
	}

	res := h.d.Sync(context.Background(), 4, "", OpInternalCopy, nil)
	assert.Equal(t, true, res[payload.KeyIsSuccess])
	assert.Empty(t, h.sink.Results())
}

func TestCancelTargetsLatestRequestForServer(t *testing.T) {
	h := newHarness(t)
	release := startBlockedCopy(t, h, 9)

	// A second request for the same server id completes immediately and
	// must not disturb tracking of the blocked one.
	h.d.Sync(context.Background(), 9, "", OpConnect, nil)
	require.Len(t, h.d.InFlight(), 1)

	assert.True(t, h.d.Cancel(9))
	release()
	require.NoError(t, h.d.Wait(context.Background()))

	got := h.sink.Results()
	require.Len(t, got, 1)
	assert.Equal(t, OpConnect, got[0].opcode)
}

func TestRetry(t *testing.T) {
	h := newHarness(t)

	_, ok := h.d.Retry(context.Background(), 9)
	assert.False(t, ok, "nothing in flight")

	release := startBlockedCopy(t, h, 9)
	id, ok := h.d.Retry(context.Background(), 9)
	assert.True(t, ok)
	assert.NotEmpty(t, id)

	release()
	require.NoError(t, h.d.Wait(context.Background()))

	calls := h.files.Calls()
	assert.Equal(t, []string{"copy /a /d a", "copy /a /d a"}, calls)
	got := h.sink.Results()
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, int64(9), r.serverID)
		assert.Equal(t, OpInternalCopy, r.opcode)
	}
}

func TestResultCallbackSlot(t *testing.T) {
	h := newHarness(t)
	second := &resultSink{}

	h.d.RegisterResultCallback(second)
	h.sync("", OpConnect, nil)
	assert.Empty(t, h.sink.Results(), "last registration wins")
	assert.Len(t, second.Results(), 1)

	h.d.UnregisterResultCallback()
	res := h.sync("", OpConnect, nil)
	assert.Equal(t, true, res[payload.KeyIsSuccess], "no callback is not an error")
	assert.Len(t, second.Results(), 1)
}

func TestCallbackErrorIgnored(t *testing.T) {
	h := newHarness(t)
	h.d.RegisterResultCallback(ResultFunc(func(int64, Opcode, payload.Map) error {
		return errors.New("client gone")
	}))
	assert.NotPanics(t, func() { h.sync("", OpConnect, nil) })
}

func TestHandlerPanicRecovered(t *testing.T) {
	h := newHarness(t)
	h.files.onCopy = func(files.ProgressFunc) { panic("boom") }

	res := h.sync("", OpInternalCopy, nil)
	assert.Equal(t, false, res[payload.KeyIsSuccess])
	assert.Equal(t, true, res[payload.KeyIsValidRequest])
	assert.Empty(t, h.d.InFlight())
	assert.Len(t, h.sink.Results(), 1)
}

func TestWaitHonoursContext(t *testing.T) {
	h := newHarness(t)
	release := startBlockedCopy(t, h, 1)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.d.Wait(ctx), context.DeadlineExceeded)
}

func TestExtrasCopiedOnAccept(t *testing.T) {
	h := newHarness(t)
	extras := payload.Map{payload.KeyServerAddr: "nas.example.com"}
	res := h.sync("", OpAddServer, extras)
	extras[payload.KeyServerAddr] = "changed.example.com"

	stored, ok := h.d.Registry().Get(res[payload.KeyServerID].(int64))
	require.True(t, ok)
	assert.Equal(t, "nas.example.com", stored.ServerAddr)
}
