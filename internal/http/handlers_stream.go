package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sbobine/sbobine-api/internal/domain/model"
	apperrors "github.com/sbobine/sbobine-api/internal/errors"
	"github.com/sbobine/sbobine-api/internal/service"
)

const (
	defaultStreamPollInterval = time.Second
	streamWriteTimeout        = 10 * time.Second
	streamCloseTimeout        = 2 * time.Second
	streamReadLimit           = 512
)

// StreamHandlers pushes job records over a WebSocket as they change.
type StreamHandlers struct {
	Svc          *service.PipelineService
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Stream upgrades the connection and sends the job record each time its status or
// progress changes. The socket is closed normally after the terminal record.
func (h *StreamHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.PathValue("id"))
	if jobID == "" {
		RenderError(ErrorOpts{W: w, R: r, Err: apperrors.Validation(msgJobIDMissing)})
		return
	}

	// Unknown jobs get a plain 404 rather than an upgraded socket.
	rec, err := h.Svc.Get(r.Context(), jobID)
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(streamReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go drainClient(conn, cancel)

	interval := h.PollInterval
	if interval <= 0 {
		interval = defaultStreamPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *model.JobRecord
	for {
		if changed(last, rec) {
			if err := writeRecord(conn, rec); err != nil {
				h.logDebug(ctx, "stream write failed", jobID, err)
				return
			}
			last = rec
		}
		if rec.Status.IsTerminal() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(rec.Status)),
				time.Now().Add(streamCloseTimeout))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		next, err := h.Svc.Get(ctx, jobID)
		if err != nil {
			h.logDebug(ctx, "stream read failed", jobID, err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, msgInternal),
				time.Now().Add(streamCloseTimeout))
			return
		}
		rec = next
	}
}

// drainClient reads until the peer goes away so control frames are processed.
func drainClient(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func writeRecord(conn *websocket.Conn, rec *model.JobRecord) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Success: true, Data: rec})
}

func changed(prev, next *model.JobRecord) bool {
	if prev == nil {
		return true
	}
	return prev.Status != next.Status || prev.Progress != next.Progress || !prev.UpdatedAt.Equal(next.UpdatedAt)
}

func (h *StreamHandlers) logDebug(ctx context.Context, msg, jobID string, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.DebugContext(ctx, msg, "job_id", jobID, "error", err)
}
