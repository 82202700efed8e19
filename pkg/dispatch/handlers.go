package dispatch

import (
	"context"
	"errors"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/launcher"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// ============================================================================
// Location handlers
// ============================================================================

func handleGetServerList(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	list := d.deps.Registry.Filter(disguiseFilter(req.Type))
	logger.DebugCtx(ctx, "Listing servers", logger.KeyEntries, len(list))
	res[payload.KeyServerList] = list
	res[payload.KeyResult] = true
}

func handleAddServer(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	addr := req.Extras.String(payload.KeyServerAddr)
	serverType := req.Extras.String(payload.KeyServerType)
	route := location.Classify(addr)
	telemetry.SetAttributes(ctx, telemetry.ServerAddr(addr), telemetry.Route(route.String()))

	logger.InfoCtx(ctx, "Adding server",
		logger.KeyServerAddr, addr,
		logger.KeyRoute, route.String(),
		"server_type", serverType)

	switch {
	case route == location.RouteReal:
		e := d.deps.Registry.Add(location.FromFields(req.Extras))
		d.observeRegistry()
		logger.InfoCtx(ctx, "Server stored", logger.KeyNewID, e.ServerID, logger.KeyServerName, e.ServerName)
		res[payload.KeyResult] = true
		res[payload.KeyServerID] = e.ServerID

	case req.Type == location.ConnFTP || serverType == location.ServerTypeRootAccess || route == location.RouteRootPlaceholder:
		d.launchRoot(ctx, res)

	case req.Type == location.ConnFTPS:
		logger.InfoCtx(ctx, "FTPS left to the client's native flow")
		res[payload.KeyResult] = false

	case req.Type == location.ConnSFTP || serverType == location.ServerTypeSMBAccess ||
		route == location.RouteSharePlaceholder || req.Type == location.ConnSMB:
		if err := d.deps.Shares.OpenManager(ctx); err != nil {
			logger.ErrorCtx(ctx, "Opening share manager failed", logger.Err(err))
			res[payload.KeyResult] = false
			return
		}
		res[payload.KeyResult] = true
		res[payload.KeyServerID] = d.deps.Registry.NextID()

	default:
		d.launchRoot(ctx, res)
	}
}

// launchRoot runs the root-location flow. No entry is registered; the
// minted id only acknowledges the request.
func (d *Dispatcher) launchRoot(ctx context.Context, res payload.Map) {
	err := launcher.ErrUnavailable
	if d.deps.Launcher != nil {
		err = d.deps.Launcher.LaunchRootLocation(ctx)
	}
	if err != nil {
		logger.ErrorCtx(ctx, "Launching root location failed", logger.Err(err))
		res[payload.KeyResult] = false
		return
	}
	res[payload.KeyResult] = true
	res[payload.KeyServerID] = d.deps.Registry.NextID()
}

func handleUpdateServer(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	id := req.Extras.Int64(payload.KeyServerID)
	ok := d.deps.Registry.Update(id, req.Extras)
	if !ok {
		logger.WarnCtx(ctx, "Update for unknown server", logger.KeyTargetID, id)
	}
	res[payload.KeyResult] = ok
}

func handleDeleteServer(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	id := req.Extras.Int64(payload.KeyServerID)
	ok := d.deps.Registry.Remove(id)
	if ok {
		d.observeRegistry()
	} else {
		logger.WarnCtx(ctx, "Delete for unknown server", logger.KeyTargetID, id)
	}
	res[payload.KeyResult] = ok
}

func handleFindServer(_ *Dispatcher, _ context.Context, _ *Request, res payload.Map) {
	res[payload.KeyServerList] = location.DefaultEntries(false)
	res[payload.KeyResult] = true
}

func handleGetSharedFolder(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	addr := req.Extras.String(payload.KeyServerAddr)
	id := req.Extras.Int64(payload.KeyServerID)

	var list any
	switch route := location.Classify(addr); {
	case route == location.RouteRootPlaceholder:
		list = d.rootDir(ctx, id)
	case route == location.RouteSharePlaceholder:
		list = d.deps.Shares.ListShares(ctx)
	case addr == location.ShareAddNew:
		if err := d.deps.Shares.OpenManager(ctx); err != nil {
			logger.ErrorCtx(ctx, "Opening share manager failed", logger.Err(err))
		}
		list = []files.Info{}
	case location.HasShareScheme(addr):
		list = d.deps.Shares.AccessShare(ctx, id, addr)
	default:
		if addr != "" {
			logger.WarnCtx(ctx, "Unrecognized address, serving root", logger.KeyServerAddr, addr)
		}
		list = d.rootDir(ctx, id)
	}
	res[payload.KeySharedFolderList] = list
	res[payload.KeyResult] = true
}

func (d *Dispatcher) rootDir(ctx context.Context, serverID int64) []files.Info {
	infos, err := d.deps.Files.SharedFolderRootDir(ctx, serverID)
	if err != nil {
		logger.ErrorCtx(ctx, "Listing root failed", logger.Err(err))
		return []files.Info{}
	}
	return infos
}

// ============================================================================
// Service handlers
// ============================================================================

func handleGetStringMap(d *Dispatcher, _ context.Context, _ *Request, res payload.Map) {
	strs := map[string]string{}
	if d.deps.Strings != nil {
		strs = d.deps.Strings.Strings()
	}
	res[payload.KeyResult] = strs
}

func handleCheckPermission(d *Dispatcher, ctx context.Context, _ *Request, _ payload.Map) {
	if d.deps.Elevator == nil {
		logger.DebugCtx(ctx, "No elevator configured")
		return
	}
	if err := d.deps.Elevator.Acquire(ctx); err != nil {
		logger.WarnCtx(ctx, "Privilege elevation failed", logger.Err(err))
		return
	}
	logger.InfoCtx(ctx, "Privileges elevated")
}

func handleRemoveCachedFileList(d *Dispatcher, ctx context.Context, _ *Request, res payload.Map) {
	if d.deps.Cache != nil {
		d.deps.Cache.Clear()
		logger.DebugCtx(ctx, "Listing cache cleared")
	}
	res[payload.KeyResult] = true
}

// ============================================================================
// File handlers
// ============================================================================

func handleGetFileList(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	dir := req.Extras.String(payload.KeyFilePath)
	infos, err := d.deps.Files.FileList(ctx, req.Extras.Int64(payload.KeyServerID), dir)
	if err != nil {
		logger.ErrorCtx(ctx, "Listing failed", logger.KeyPath, dir, logger.Err(err))
		res[payload.KeyFileList] = []files.Info{}
		res[payload.KeyResult] = false
		return
	}
	res[payload.KeyFileList] = infos
	res[payload.KeyResult] = true
}

func handleGetFileObject(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	p := req.Extras.String(payload.KeyFilePath)
	info, err := d.deps.Files.FileObject(ctx, req.Extras.Int64(payload.KeyServerID), p)
	if err != nil {
		logger.ErrorCtx(ctx, "Stat failed", logger.KeyPath, p, logger.Err(err))
		res[payload.KeyResult] = false
		return
	}
	res[payload.KeyFileObject] = info
	res[payload.KeyResult] = true
}

func handleGetFileDescriptor(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	p := req.Extras.String(payload.KeySourcePath)
	id, err := d.deps.Files.OpenDescriptor(ctx, p)
	if err != nil {
		logger.ErrorCtx(ctx, "Opening descriptor failed", logger.KeyPath, p, logger.Err(err))
		res[payload.KeyResult] = false
		return
	}
	res[payload.KeyFileDescriptor] = id
	res[payload.KeyResult] = true
}

func handleCreateFolder(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	err := d.deps.Files.NewFolder(ctx, req.Extras.String(payload.KeyParentPath), req.Extras.String(payload.KeyNewName))
	setOutcome(ctx, res, "Creating folder failed", err)
}

func handleRename(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	err := d.deps.Files.Rename(ctx, req.Extras.String(payload.KeySourcePath), req.Extras.String(payload.KeyNewName))
	setOutcome(ctx, res, "Rename failed", err)
}

func handleDelete(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	err := d.deps.Files.Delete(ctx, req.Extras.String(payload.KeySourcePath))
	setOutcome(ctx, res, "Delete failed", err)
}

func handleUpload(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	err := d.deps.Files.Upload(ctx,
		req.Extras.String(payload.KeyFileDescriptor),
		req.Extras.String(payload.KeyDstFolderPath),
		req.Extras.String(payload.KeyDstFileName),
		d.progressFor(ctx, req))
	setOutcome(ctx, res, "Upload failed", err)
}

func handleInternalCopy(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	setOutcome(ctx, res, "Copy failed", d.copy(ctx, req))
}

func handleInternalMove(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	err := d.copy(ctx, req)
	if err == nil {
		err = d.deps.Files.Delete(ctx, req.Extras.String(payload.KeySourcePath))
	}
	setOutcome(ctx, res, "Move failed", err)
}

func (d *Dispatcher) copy(ctx context.Context, req *Request) error {
	return d.deps.Files.Copy(ctx,
		req.Extras.String(payload.KeySourcePath),
		req.Extras.String(payload.KeyDstFolderPath),
		req.Extras.String(payload.KeyDstFileName),
		d.progressFor(ctx, req))
}

func handleExist(d *Dispatcher, ctx context.Context, req *Request, res payload.Map) {
	p := req.Extras.String(payload.KeySourcePath)
	ok, err := d.deps.Files.Exists(ctx, p)
	if err != nil {
		logger.WarnCtx(ctx, "Existence check failed", logger.KeyPath, p, logger.Err(err))
	}
	res[payload.KeyResult] = ok
}

// setOutcome records the result of a mutating file operation: isSuccess
// carries the operation outcome while result acknowledges the request.
func setOutcome(ctx context.Context, res payload.Map, msg string, err error) {
	res[payload.KeyIsSuccess] = err == nil
	res[payload.KeyResult] = true
	if err != nil {
		lvl := logger.ErrorCtx
		if errors.Is(err, context.Canceled) {
			lvl = logger.WarnCtx
		}
		lvl(ctx, msg, logger.Err(err))
	}
}

// ============================================================================
// Protocol disguise
// ============================================================================

// disguiseFilter returns the registry predicate answering a server list
// request for the client-declared type. The client only knows FTP, FTPS,
// SFTP and SMB; FTP stands in for root access and SFTP for the share
// browser.
func disguiseFilter(typ string) func(location.Entry) bool {
	switch typ {
	case "":
		return func(location.Entry) bool { return true }
	case location.ConnFTP:
		return func(e location.Entry) bool {
			return e.IsRootPlaceholder() || e.ConnectionType == location.ConnFTP
		}
	case location.ConnFTPS:
		return func(e location.Entry) bool {
			return e.ServerType == location.ServerTypeRootAccess ||
				e.ConnectionType == location.ConnFTP || e.ConnectionType == location.ConnFTPS
		}
	case location.ConnSFTP:
		return func(e location.Entry) bool {
			return e.IsSharePlaceholder() || e.ConnectionType == location.ConnSFTP
		}
	case location.ConnSMB:
		return func(e location.Entry) bool {
			return e.ConnectionType == location.ConnSMB
		}
	default:
		return func(location.Entry) bool { return false }
	}
}
