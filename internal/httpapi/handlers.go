package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"cloudpico-kiosk/internal/types"
)

// StatusSource reports the control loop's current state.
type StatusSource interface {
	Status() types.LoopStatus
}

type handlers struct {
	status StatusSource
	// staleAfter marks the kiosk unhealthy when the loop has been stuck in one
	// non-idle state for longer than this. Zero disables the check.
	staleAfter time.Duration
	now        func() time.Time
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	st := h.status.Status()
	if h.staleAfter > 0 && st.State != "idle" && !st.Since.IsZero() && h.now().Sub(st.Since) > h.staleAfter {
		writeError(w, http.StatusServiceUnavailable, "loop stuck in state "+st.State)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "state": st.State})
}

func (h *handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status.Status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}
