package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/user/edge-probe/internal/delivery/http/request"
	"github.com/user/edge-probe/internal/delivery/http/response"
	"github.com/user/edge-probe/internal/usecase"
)

type Handler struct {
	diagnoser usecase.Diagnoser
	history   usecase.RunHistory
}

func NewHandler(diagnoser usecase.Diagnoser, history usecase.RunHistory) *Handler {
	return &Handler{
		diagnoser: diagnoser,
		history:   history,
	}
}

func (h *Handler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req request.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	run, err := h.diagnoser.Run(r.Context(), req.Force)
	if err != nil {
		if errors.Is(err, usecase.ErrDiagnosedRecently) {
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Failed to run diagnosis", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewRunResponse(run))
}

func (h *Handler) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.history.Latest(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrNoRuns) {
			h.writeJSONError(w, "No diagnosis has been run yet", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get latest run", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewRunResponse(run))
}

func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.writeJSONError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.history.List(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewRunListResponse(runs))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
