package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dbehnke/adlog-decoder/pkg/audit"
	"github.com/dbehnke/adlog-decoder/pkg/logger"
)

// API handles REST API endpoints backed by the run ledger.
type API struct {
	logger *logger.Logger
	runs   *audit.Repository
}

// NewAPI creates a new API instance.
func NewAPI(log *logger.Logger) *API {
	return &API{logger: log}
}

// SetRunRepository wires the audit ledger once it's opened. A nil
// repository makes the endpoints respond with empty results, so the web
// server can run with audit disabled.
func (a *API) SetRunRepository(repo *audit.Repository) {
	a.runs = repo
}

// RunDTO is the JSON shape of one ledger entry.
type RunDTO struct {
	ID             uint   `json:"id"`
	FilePath       string `json:"file_path"`
	Workers        int    `json:"workers"`
	Mode           string `json:"mode"`
	MessagesOut    int    `json:"messages_out"`
	WarningsOut    int    `json:"warnings_out"`
	Succeeded      bool   `json:"succeeded"`
	FailureMessage string `json:"failure_message,omitempty"`
	StartedAt      int64  `json:"started_at"`
	FinishedAt     int64  `json:"finished_at"`
	DurationMS     int64  `json:"duration_ms"`
}

func toRunDTO(r audit.Run) RunDTO {
	return RunDTO{
		ID:             r.ID,
		FilePath:       r.FilePath,
		Workers:        r.Workers,
		Mode:           r.Mode,
		MessagesOut:    r.MessagesOut,
		WarningsOut:    r.WarningsOut,
		Succeeded:      r.Succeeded,
		FailureMessage: r.FailureMessage,
		StartedAt:      r.StartedAt.Unix(),
		FinishedAt:     r.FinishedAt.Unix(),
		DurationMS:     r.DurationMS,
	}
}

// HandleStatus handles GET /api/status.
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	version, _, _ := GetVersionInfo()
	response := map[string]interface{}{
		"status":  "running",
		"service": "adlog-decoder",
		"version": version,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.logger.Error("Failed to encode status response", logger.Error(err))
	}
}

// HandleRuns handles GET /api/runs, returning the most recent decode runs.
func (a *API) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if a.runs == nil {
		if err := json.NewEncoder(w).Encode([]RunDTO{}); err != nil {
			a.logger.Error("Failed to encode runs response", logger.Error(err))
		}
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	runs, err := a.runs.GetRecent(limit)
	if err != nil {
		a.logger.Error("Failed to fetch recent runs", logger.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}

	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		a.logger.Error("Failed to encode runs response", logger.Error(err))
	}
}

// HandleRunByID handles GET /api/runs/{id}.
func (a *API) HandleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if a.runs == nil {
		http.Error(w, "run ledger disabled", http.StatusNotFound)
		return
	}

	run, err := a.runs.GetByID(uint(id))
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toRunDTO(*run)); err != nil {
		a.logger.Error("Failed to encode run response", logger.Error(err))
	}
}
