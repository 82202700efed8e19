package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/dispatch"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/share"
)

func newManager(t *testing.T) *files.Manager {
	t.Helper()
	m, err := files.NewManager(files.Config{Root: t.TempDir(), CacheTTL: time.Minute, CacheSize: 8})
	require.NoError(t, err)
	return m
}

func TestNewRequiresStoreAndFiles(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Deps{Files: newManager(t)})
	assert.Error(t, err)

	_, err = New(ctx, Deps{Store: prefs.NewMemoryStore()})
	assert.Error(t, err)
}

func TestNewStartsFromDefaults(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, Deps{Store: prefs.NewMemoryStore(), Files: newManager(t)})
	require.NoError(t, err)

	assert.Equal(t, location.DefaultEntries(true), svc.Dispatcher().Registry().List())
}

func TestNewFallsBackOnMalformedStore(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(ctx, location.DefaultStoreKey, "{not json"))

	svc, err := New(ctx, Deps{Store: store, Files: newManager(t)})
	require.NoError(t, err)
	assert.Equal(t, len(location.DefaultEntries(true)), svc.Dispatcher().Registry().Len())
}

func TestRegistrySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()

	svc, err := New(ctx, Deps{Store: store, Files: newManager(t), LocationsKey: "locs"})
	require.NoError(t, err)

	res := svc.Dispatcher().Sync(ctx, 0, "", dispatch.OpAddServer, payload.Map{
		payload.KeyServerName:     "Media",
		payload.KeyServerAddr:     "smb://192.168.0.20/media",
		payload.KeyConnectionType: location.ConnSMB,
		payload.KeyServerPort:     445,
		payload.KeyAnonymous:      true,
	})
	require.Equal(t, true, res[payload.KeyResult])
	id := res.Int64(payload.KeyServerID)

	require.NoError(t, svc.Close(ctx))
	require.NoError(t, svc.Close(ctx), "Close is idempotent")

	restarted, err := New(ctx, Deps{Store: store, Files: newManager(t), LocationsKey: "locs"})
	require.NoError(t, err)

	e, ok := restarted.Dispatcher().Registry().Get(id)
	require.True(t, ok)
	assert.Equal(t, "Media", e.ServerName)
	assert.Equal(t, "smb://192.168.0.20/media", e.ServerAddr)
	assert.Equal(t, 445, e.ServerPort)
}

func TestCloseSavesEvenWhenWaitTimesOut(t *testing.T) {
	store := prefs.NewMemoryStore()
	svc, err := New(context.Background(), Deps{Store: store, Files: newManager(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Close(ctx))

	_, err = store.Get(context.Background(), location.DefaultStoreKey)
	assert.NoError(t, err)
}

func TestSharesAreServedFromStore(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	svc, err := New(ctx, Deps{Store: store, Files: newManager(t), SharesKey: "shares"})
	require.NoError(t, err)

	require.NoError(t, svc.Shares().SaveShare(ctx, share.NewRecord("Office", "smb://10.1.1.1/docs", location.ConnSMB)))

	res := svc.Dispatcher().Sync(ctx, 0, "", dispatch.OpGetSharedFolder, payload.Map{
		payload.KeyServerAddr: location.ShareSentinel,
	})
	list, ok := res[payload.KeySharedFolderList].([]location.Entry)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "smb://10.1.1.1/docs", list[0].ServerAddr)
}

func TestFromConfig(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Store.Type = prefs.TypeMemory
	cfg.Files.Root = t.TempDir()

	svc, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	res := svc.Dispatcher().Sync(context.Background(), 1, "", dispatch.OpGetStringMap, nil)
	strs, ok := res[payload.KeyResult].(map[string]string)
	require.True(t, ok)
	assert.NotEmpty(t, strs)
}

func TestFromConfigRejectsMissingRoot(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Store.Type = prefs.TypeMemory
	cfg.Files.Root = "/definitely/not/here"

	_, err := FromConfig(context.Background(), cfg)
	assert.Error(t, err)
}
