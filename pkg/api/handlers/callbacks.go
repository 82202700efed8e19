package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/dispatch"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

const (
	callbackBuffer = 64
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 5 * time.Second
)

// errCallbackBacklog is returned to the dispatcher when a client reads
// slower than results are produced. The message is dropped.
var errCallbackBacklog = errors.New("callback connection backlog full")

// ResultMessage is sent on the result channel for every delivered result.
type ResultMessage struct {
	ServerID   int64       `json:"serverId"`
	Opcode     int32       `json:"opcode"`
	OpcodeName string      `json:"opcodeName"`
	Result     payload.Map `json:"result"`
}

// ProgressMessage is sent on the progress channel.
type ProgressMessage struct {
	ServerID   int64    `json:"serverId"`
	Opcode     int32    `json:"opcode"`
	OpcodeName string   `json:"opcodeName"`
	Progress   Progress `json:"progress"`
}

// Progress is the byte count of a running copy.
type Progress struct {
	Done  int64 `json:"done"`
	Total int64 `json:"total"`
}

// CallbackHandler turns WebSocket connections into the dispatcher's result
// and progress callbacks. Each slot holds one connection: the newest
// connection replaces the previous one, and closing any connection clears
// the slot.
type CallbackHandler struct {
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
}

// NewCallbackHandler creates a callback handler.
func NewCallbackHandler(d Dispatcher) *CallbackHandler {
	return &CallbackHandler{
		dispatcher: d,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Results handles GET /api/v1/callbacks/result.
func (h *CallbackHandler) Results(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sendCh := make(chan ResultMessage, callbackBuffer)
	h.dispatcher.RegisterResultCallback(dispatch.ResultFunc(func(serverID int64, opcode dispatch.Opcode, result payload.Map) error {
		msg := ResultMessage{ServerID: serverID, Opcode: int32(opcode), OpcodeName: opcode.String(), Result: result}
		select {
		case sendCh <- msg:
			return nil
		default:
			return errCallbackBacklog
		}
	}))
	defer h.dispatcher.UnregisterResultCallback()

	logger.Info("Result callback connected", logger.KeyClientIP, r.RemoteAddr)
	pump(r, conn, sendCh)
	logger.Info("Result callback disconnected", logger.KeyClientIP, r.RemoteAddr)
}

// Progress handles GET /api/v1/callbacks/progress.
func (h *CallbackHandler) Progress(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sendCh := make(chan ProgressMessage, callbackBuffer)
	h.dispatcher.RegisterProgressCallback(dispatch.ProgressFunc(func(serverID int64, opcode dispatch.Opcode, done, total int64) error {
		msg := ProgressMessage{
			ServerID:   serverID,
			Opcode:     int32(opcode),
			OpcodeName: opcode.String(),
			Progress:   Progress{Done: done, Total: total},
		}
		select {
		case sendCh <- msg:
			return nil
		default:
			return errCallbackBacklog
		}
	}))
	defer h.dispatcher.UnregisterProgressCallback()

	logger.Info("Progress callback connected", logger.KeyClientIP, r.RemoteAddr)
	pump(r, conn, sendCh)
	logger.Info("Progress callback disconnected", logger.KeyClientIP, r.RemoteAddr)
}

// pump writes queued messages to conn until the client goes away. A reader
// goroutine consumes control frames and detects the close.
func pump[T any](r *http.Request, conn *websocket.Conn, sendCh <-chan T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		case msg := <-sendCh:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteJSON(msg)
			if err != nil {
				logger.Debug("Callback write failed", logger.KeyError, err)
				return
			}
		}
	}
}
