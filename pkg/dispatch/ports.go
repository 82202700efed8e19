package dispatch

import (
	"context"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// FileManager performs file operations on behalf of the file opcodes.
// *files.Manager satisfies it.
type FileManager interface {
	SharedFolderRootDir(ctx context.Context, serverID int64) ([]files.Info, error)
	FileList(ctx context.Context, serverID int64, dir string) ([]files.Info, error)
	FileObject(ctx context.Context, serverID int64, p string) (files.Info, error)
	NewFolder(ctx context.Context, parent, name string) error
	Rename(ctx context.Context, p, newName string) error
	Delete(ctx context.Context, p string) error
	Exists(ctx context.Context, p string) (bool, error)
	OpenDescriptor(ctx context.Context, p string) (string, error)
	Upload(ctx context.Context, descriptor, dstFolder, dstName string, progress files.ProgressFunc) error
	Copy(ctx context.Context, src, dstFolder, dstName string, progress files.ProgressFunc) error
}

// ListingCache is cleared by REMOVE_CACHED_FILE_LIST.
type ListingCache interface {
	Clear()
}

// RootLauncher starts the root-location flow.
type RootLauncher interface {
	LaunchRootLocation(ctx context.Context) error
}

// ShareService answers share listing and browsing requests.
// *share.Adapter satisfies it.
type ShareService interface {
	ListShares(ctx context.Context) []location.Entry
	AccessShare(ctx context.Context, serverID int64, address string) []files.Info
	OpenManager(ctx context.Context) error
}

// Elevator acquires elevated privileges for CHECK_PERMISSION.
type Elevator interface {
	Acquire(ctx context.Context) error
}

// StringResources enumerates the string map served by GET_STRING_MAP.
type StringResources interface {
	Strings() map[string]string
}

// ResultCallback receives the terminal result of a request.
type ResultCallback interface {
	OnResult(serverID int64, opcode Opcode, result payload.Map) error
}

// ProgressCallback receives progress of copy operations.
type ProgressCallback interface {
	OnProgress(serverID int64, opcode Opcode, done, total int64) error
}

// ResultFunc adapts a function to ResultCallback.
type ResultFunc func(serverID int64, opcode Opcode, result payload.Map) error

// OnResult calls f.
func (f ResultFunc) OnResult(serverID int64, opcode Opcode, result payload.Map) error {
	return f(serverID, opcode, result)
}

// ProgressFunc adapts a function to ProgressCallback.
type ProgressFunc func(serverID int64, opcode Opcode, done, total int64) error

// OnProgress calls f.
func (f ProgressFunc) OnProgress(serverID int64, opcode Opcode, done, total int64) error {
	return f(serverID, opcode, done, total)
}

// Metrics observes dispatcher activity. A nil Metrics disables collection.
type Metrics interface {
	// RecordRequest records a completed request. outcome is one of
	// "success", "failure" or "panic".
	RecordRequest(opcode string, outcome string, duration time.Duration)

	// SetInFlight sets the number of tracked requests.
	SetInFlight(n int)

	// RecordSuppressed counts a callback suppressed by cancellation.
	RecordSuppressed(opcode string)

	// SetRegistryEntries sets the number of registered locations.
	SetRegistryEntries(n int)
}
