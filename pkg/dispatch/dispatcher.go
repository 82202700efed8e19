// Package dispatch implements the request dispatcher: it accepts requests
// keyed by opcode and server id, tracks them while they execute, routes them
// to the location registry, the share adapter or the file collaborators, and
// delivers results through a single registered callback.
//
// Cancellation is cooperative and late. Cancel only marks a tracked request;
// the mark is read once, after the handler has finished and the request has
// left tracking, and only decides whether the result callback fires. Work a
// handler already did is never interrupted or undone.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// Request is one accepted request. Its fields are immutable after
// acceptance; only the cancellation mark changes.
type Request struct {
	ID       string
	ServerID int64
	Type     string
	Opcode   Opcode
	Extras   payload.Map
	Accepted time.Time

	cancelled atomic.Bool
}

// Cancelled reports whether Cancel marked the request.
func (r *Request) Cancelled() bool {
	return r.cancelled.Load()
}

// RequestInfo is a point-in-time view of a tracked request.
type RequestInfo struct {
	RequestID  string    `json:"requestId"`
	ServerID   int64     `json:"serverId"`
	Type       string    `json:"type,omitempty"`
	Opcode     Opcode    `json:"opcode"`
	OpcodeName string    `json:"opcodeName"`
	Accepted   time.Time `json:"accepted"`
	Cancelled  bool      `json:"cancelled"`
}

// Deps are the collaborators a Dispatcher routes to. Registry, Files and
// Shares are required; the rest may be nil.
type Deps struct {
	Registry *location.Registry
	Files    FileManager
	Shares   ShareService
	Cache    ListingCache
	Launcher RootLauncher
	Elevator Elevator
	Strings  StringResources
	Metrics  Metrics
}

// Dispatcher routes requests to handlers and tracks them while in flight.
type Dispatcher struct {
	deps Deps

	mu       sync.Mutex
	inflight map[string]*Request
	byServer map[int64][]string // request ids per server id, in acceptance order

	cbMu     sync.Mutex
	result   ResultCallback
	progress ProgressCallback

	wg sync.WaitGroup
}

// New returns a Dispatcher over deps.
func New(deps Deps) (*Dispatcher, error) {
	switch {
	case deps.Registry == nil:
		return nil, errors.New("dispatch: registry is required")
	case deps.Files == nil:
		return nil, errors.New("dispatch: file manager is required")
	case deps.Shares == nil:
		return nil, errors.New("dispatch: share service is required")
	}
	d := &Dispatcher{
		deps:     deps,
		inflight: make(map[string]*Request),
		byServer: make(map[int64][]string),
	}
	d.observeRegistry()
	return d, nil
}

// Registry returns the location registry the dispatcher mutates.
func (d *Dispatcher) Registry() *location.Registry {
	return d.deps.Registry
}

// Async accepts a request and executes it on its own goroutine. It returns
// the request id immediately; completion is signalled through the result
// callback. The request outlives ctx: only ctx's values are carried over.
func (d *Dispatcher) Async(ctx context.Context, serverID int64, typ string, opcode Opcode, extras payload.Map) string {
	req := d.accept(serverID, typ, opcode, extras)
	runCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(runCtx, req)
	}()
	return req.ID
}

// Sync accepts a request, executes it on the calling goroutine and returns
// its result. The result callback is invoked as well unless the request was
// cancelled while it ran; the result is returned either way.
func (d *Dispatcher) Sync(ctx context.Context, serverID int64, typ string, opcode Opcode, extras payload.Map) payload.Map {
	req := d.accept(serverID, typ, opcode, extras)
	return d.run(ctx, req)
}

// Cancel marks the most recently accepted in-flight request for serverID.
// It reports whether such a request was found. A marked request still runs
// to completion; only its result callback is suppressed.
func (d *Dispatcher) Cancel(serverID int64) bool {
	req := d.latest(serverID)
	if req == nil {
		logger.Debug("Cancel found no request", logger.KeyServerID, serverID)
		return false
	}
	req.cancelled.Store(true)
	logger.Info("Request cancelled",
		logger.KeyRequestID, req.ID,
		logger.KeyServerID, serverID,
		logger.KeyOpcode, req.Opcode.String())
	return true
}

// Retry re-submits the most recently accepted in-flight request for
// serverID as a new asynchronous request with identical parameters. It
// returns the new request id and whether a request was found.
func (d *Dispatcher) Retry(ctx context.Context, serverID int64) (string, bool) {
	req := d.latest(serverID)
	if req == nil {
		logger.DebugCtx(ctx, "Retry found no request", logger.KeyServerID, serverID)
		return "", false
	}
	id := d.Async(ctx, req.ServerID, req.Type, req.Opcode, req.Extras.Clone())
	logger.InfoCtx(ctx, "Request retried",
		logger.KeyRequestID, id,
		"retry_of", req.ID,
		logger.KeyServerID, serverID)
	return id, true
}

// RegisterResultCallback installs cb as the result callback, replacing any
// previous one. Last registration wins.
func (d *Dispatcher) RegisterResultCallback(cb ResultCallback) {
	d.cbMu.Lock()
	d.result = cb
	d.cbMu.Unlock()
}

// UnregisterResultCallback clears the result callback, whoever registered it.
func (d *Dispatcher) UnregisterResultCallback() {
	d.cbMu.Lock()
	d.result = nil
	d.cbMu.Unlock()
}

// RegisterProgressCallback installs cb as the progress callback, replacing
// any previous one. Last registration wins.
func (d *Dispatcher) RegisterProgressCallback(cb ProgressCallback) {
	d.cbMu.Lock()
	d.progress = cb
	d.cbMu.Unlock()
}

// UnregisterProgressCallback clears the progress callback, whoever
// registered it.
func (d *Dispatcher) UnregisterProgressCallback() {
	d.cbMu.Lock()
	d.progress = nil
	d.cbMu.Unlock()
}

// InFlight returns the tracked requests ordered by acceptance time.
func (d *Dispatcher) InFlight() []RequestInfo {
	d.mu.Lock()
	out := make([]RequestInfo, 0, len(d.inflight))
	for _, r := range d.inflight {
		out = append(out, RequestInfo{
			RequestID:  r.ID,
			ServerID:   r.ServerID,
			Type:       r.Type,
			Opcode:     r.Opcode,
			OpcodeName: r.Opcode.String(),
			Accepted:   r.Accepted,
			Cancelled:  r.Cancelled(),
		})
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Accepted.Before(out[j].Accepted) })
	return out
}

// Wait blocks until every asynchronous request has completed or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight requests: %w", ctx.Err())
	}
}

func (d *Dispatcher) accept(serverID int64, typ string, opcode Opcode, extras payload.Map) *Request {
	if extras == nil {
		extras = payload.Map{}
	} else {
		extras = extras.Clone()
	}
	req := &Request{
		ID:       uuid.NewString(),
		ServerID: serverID,
		Type:     typ,
		Opcode:   opcode,
		Extras:   extras,
		Accepted: time.Now(),
	}

	d.mu.Lock()
	d.inflight[req.ID] = req
	d.byServer[serverID] = append(d.byServer[serverID], req.ID)
	n := len(d.inflight)
	d.mu.Unlock()

	if d.deps.Metrics != nil {
		d.deps.Metrics.SetInFlight(n)
	}
	return req
}

func (d *Dispatcher) untrack(req *Request) {
	d.mu.Lock()
	delete(d.inflight, req.ID)
	ids := d.byServer[req.ServerID]
	for i, id := range ids {
		if id == req.ID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(d.byServer, req.ServerID)
	} else {
		d.byServer[req.ServerID] = ids
	}
	n := len(d.inflight)
	d.mu.Unlock()

	if d.deps.Metrics != nil {
		d.deps.Metrics.SetInFlight(n)
	}
}

func (d *Dispatcher) latest(serverID int64) *Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := d.byServer[serverID]
	if len(ids) == 0 {
		return nil
	}
	return d.inflight[ids[len(ids)-1]]
}

// run executes req, removes it from tracking and delivers the result unless
// the request was cancelled.
func (d *Dispatcher) run(ctx context.Context, req *Request) payload.Map {
	name := req.Opcode.String()

	ctx, span := telemetry.StartDispatchSpan(ctx, name, req.ID, req.ServerID, req.Type)
	defer span.End()

	lc := logger.FromContext(ctx).
		WithRequest(req.ID, name, req.ServerID, req.Type).
		WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	logger.DebugCtx(ctx, "Request accepted")

	start := time.Now()
	res, outcome := d.execute(ctx, req)
	d.untrack(req)

	if d.deps.Metrics != nil {
		d.deps.Metrics.RecordRequest(name, outcome, time.Since(start))
	}
	if outcome != "success" {
		span.SetStatus(codes.Error, outcome)
	}

	if req.Cancelled() {
		logger.InfoCtx(ctx, "Result suppressed for cancelled request", logger.KeyCancelled, true)
		telemetry.AddEvent(ctx, "callback.suppressed")
		if d.deps.Metrics != nil {
			d.deps.Metrics.RecordSuppressed(name)
		}
		return res
	}

	d.deliver(ctx, req, res)
	logger.DebugCtx(ctx, "Request completed",
		logger.KeySuccess, res.Bool(payload.KeyIsSuccess, false),
		logger.KeyDurationMs, lc.DurationMs())
	return res
}

// execute runs the handler for req. A panicking handler yields a result
// with isSuccess=false.
func (d *Dispatcher) execute(ctx context.Context, req *Request) (res payload.Map, outcome string) {
	res = payload.Map{
		payload.KeyIsSuccess:      true,
		payload.KeyIsValidRequest: true,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, "Handler panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			telemetry.RecordError(ctx, fmt.Errorf("handler panic: %v", r))
			res[payload.KeyIsSuccess] = false
			outcome = "panic"
		}
	}()

	op, ok := opTable[req.Opcode]
	if !ok {
		logger.WarnCtx(ctx, "Unknown opcode accepted without work")
	} else if op.Handler != nil {
		op.Handler(d, ctx, req, res)
	}

	if res.Bool(payload.KeyIsSuccess, true) {
		return res, "success"
	}
	return res, "failure"
}

func (d *Dispatcher) deliver(ctx context.Context, req *Request, res payload.Map) {
	d.cbMu.Lock()
	cb := d.result
	d.cbMu.Unlock()

	if cb == nil {
		logger.WarnCtx(ctx, "No result callback registered, result dropped")
		return
	}
	if err := cb.OnResult(req.ServerID, req.Opcode, res); err != nil {
		logger.WarnCtx(ctx, "Result callback failed", logger.Err(err))
	}
}

// progressFor returns a progress sink tagged with req's server id and
// opcode that forwards to the progress callback registered at call time.
func (d *Dispatcher) progressFor(ctx context.Context, req *Request) func(done, total int64) {
	return func(done, total int64) {
		d.cbMu.Lock()
		cb := d.progress
		d.cbMu.Unlock()
		if cb == nil {
			return
		}
		if err := cb.OnProgress(req.ServerID, req.Opcode, done, total); err != nil {
			logger.DebugCtx(ctx, "Progress callback failed", logger.Err(err))
		}
	}
}

func (d *Dispatcher) observeRegistry() {
	if d.deps.Metrics != nil {
		d.deps.Metrics.SetRegistryEntries(d.deps.Registry.Len())
	}
}
