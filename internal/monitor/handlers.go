package monitor

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Handler exposes the monitor's JSON API.
type Handler struct {
	session *Session
	journal *Journal
	logger  *zap.Logger
}

// NewHandler creates the monitor API handler. The journal may be nil; the
// history and alert endpoints then return empty lists.
func NewHandler(session *Session, journal *Journal, logger *zap.Logger) *Handler {
	return &Handler{session: session, journal: journal, logger: logger}
}

// RegisterRoutes registers the monitor API routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/monitor/status", h.handleStatus)
	mux.HandleFunc("GET /api/v1/monitor/history", h.handleHistory)
	mux.HandleFunc("GET /api/v1/monitor/alerts", h.handleAlerts)
}

// handleStatus returns the session state, progress, and any active alert.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Status())
}

// handleHistory returns journaled readings, newest first.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeJSON(w, http.StatusOK, []JournalReading{})
		return
	}

	readings, err := h.journal.ListReadings(r.Context(), parseLimit(r, 50))
	if err != nil {
		h.logger.Error("failed to list readings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list readings")
		return
	}
	if readings == nil {
		readings = []JournalReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

// handleAlerts returns journaled alerts, newest first.
func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeJSON(w, http.StatusOK, []Alert{})
		return
	}

	alerts, err := h.journal.ListAlerts(r.Context(), parseLimit(r, 50))
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
