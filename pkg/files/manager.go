package files

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
)

// Config configures the root-access file manager.
type Config struct {
	// Root is the host directory exposed as "/".
	Root string `mapstructure:"root" yaml:"root"`

	// ShowHidden includes dot files in listings.
	ShowHidden bool `mapstructure:"show_hidden" yaml:"show_hidden"`

	// CacheTTL bounds how long a directory listing is served from cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`

	// CacheSize is the maximum number of cached listings. Loaded
	// configuration turns 0 into the default; a negative size disables
	// caching.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
}

// Manager combines a Root with a listing cache and a descriptor table.
type Manager struct {
	root  *Root
	cache *Cache
	descs *Descriptors
}

// NewManager builds a Manager from cfg.
func NewManager(cfg Config) (*Manager, error) {
	root, err := NewRoot(cfg.Root, cfg.ShowHidden)
	if err != nil {
		return nil, err
	}
	return &Manager{
		root:  root,
		cache: NewCache(cfg.CacheTTL, cfg.CacheSize),
		descs: NewDescriptors(),
	}, nil
}

// Cache returns the listing cache.
func (m *Manager) Cache() *Cache { return m.cache }

// SharedFolderRootDir lists the virtual root for serverID.
func (m *Manager) SharedFolderRootDir(ctx context.Context, serverID int64) ([]Info, error) {
	return m.FileList(ctx, serverID, "/")
}

// FileList lists dir, serving from the cache when possible.
func (m *Manager) FileList(ctx context.Context, serverID int64, dir string) ([]Info, error) {
	if infos, ok := m.cache.Get(serverID, dir); ok {
		logger.DebugCtx(ctx, "Listing served from cache", logger.KeyPath, dir)
		return infos, nil
	}
	infos, err := m.root.List(ctx, serverID, dir)
	if err != nil {
		return nil, err
	}
	m.cache.Put(serverID, dir, infos)
	return infos, nil
}

// FileObject describes a single path.
func (m *Manager) FileObject(ctx context.Context, serverID int64, p string) (Info, error) {
	return m.root.Stat(ctx, serverID, p)
}

// NewFolder creates name inside parent.
func (m *Manager) NewFolder(ctx context.Context, parent, name string) error {
	if err := m.root.Mkdir(ctx, parent, name); err != nil {
		return err
	}
	m.cache.Invalidate(parent)
	return nil
}

// Rename renames p within its directory.
func (m *Manager) Rename(ctx context.Context, p, newName string) error {
	if err := m.root.Rename(ctx, p, newName); err != nil {
		return err
	}
	m.cache.Invalidate(path.Dir(clean(p)))
	return nil
}

// Delete removes p recursively.
func (m *Manager) Delete(ctx context.Context, p string) error {
	if err := m.root.Remove(ctx, p); err != nil {
		return err
	}
	m.cache.Invalidate(path.Dir(clean(p)))
	return nil
}

// Exists reports whether p exists.
func (m *Manager) Exists(ctx context.Context, p string) (bool, error) {
	return m.root.Exists(ctx, p)
}

// OpenDescriptor opens a regular file for reading and returns a handle that
// a later Upload consumes.
func (m *Manager) OpenDescriptor(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(m.root.hostPath(p))
	if err != nil {
		return "", err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return "", err
	}
	if fi.IsDir() {
		_ = f.Close()
		return "", fmt.Errorf("%s: is a directory", clean(p))
	}
	id, err := m.descs.Put(f)
	if err != nil {
		_ = f.Close()
		return "", err
	}
	logger.DebugCtx(ctx, "Descriptor opened", logger.KeyPath, clean(p), logger.KeyDescriptor, id)
	return id, nil
}

// Upload copies the content behind descriptor into dstFolder/dstName and
// closes the descriptor.
func (m *Manager) Upload(ctx context.Context, descriptor, dstFolder, dstName string, progress ProgressFunc) error {
	f, size, err := m.descs.Take(descriptor)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := m.root.CopyFrom(ctx, f, size, dstFolder, dstName, progress); err != nil {
		return err
	}
	m.cache.Invalidate(dstFolder)
	return nil
}

// Copy copies src to dstFolder/dstName with progress reporting.
func (m *Manager) Copy(ctx context.Context, src, dstFolder, dstName string, progress ProgressFunc) error {
	if err := m.root.Copy(ctx, src, dstFolder, dstName, progress); err != nil {
		return err
	}
	m.cache.Invalidate(dstFolder)
	return nil
}

// Close releases open descriptors.
func (m *Manager) Close() error {
	return m.descs.CloseAll()
}
