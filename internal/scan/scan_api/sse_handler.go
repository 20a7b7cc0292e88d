package scan_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-attendance/internal/logger"
	"ms-attendance/internal/sse"
)

// SSEHandler streams live attendance updates to operator dashboards.
type SSEHandler struct {
	Logger       *logger.Logger
	EventEmitter *sse.AttendanceEventEmitter
}

func NewSSEHandler(log *logger.Logger, emitter *sse.AttendanceEventEmitter) *SSEHandler {
	return &SSEHandler{
		Logger:       log,
		EventEmitter: emitter,
	}
}

// HandleKegiatanAttendance streams attendance updates for one kegiatan.
func (h *SSEHandler) HandleKegiatanAttendance(w http.ResponseWriter, r *http.Request) {
	kegiatanID, err := strconv.ParseInt(chi.URLParam(r, "kegiatanID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid kegiatan id", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()
	updateChan := h.EventEmitter.Subscribe(ctx, kegiatanID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"kegiatan_id\":%d}\n\n", kegiatanID)
	flusher.Flush()

	if h.Logger != nil {
		h.Logger.Info("SSE", fmt.Sprintf("Client connected to attendance updates for kegiatan %d", kegiatanID))
	}

	for {
		select {
		case update, ok := <-updateChan:
			if !ok {
				return
			}

			jsonData, err := json.Marshal(update)
			if err != nil {
				if h.Logger != nil {
					h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize attendance update: %v", err))
				}
				continue
			}

			fmt.Fprintf(w, "event: attendance\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-ctx.Done():
			if h.Logger != nil {
				h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from kegiatan %d", kegiatanID))
			}
			return
		}
	}
}
