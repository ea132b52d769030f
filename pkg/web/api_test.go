package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dbehnke/adlog-decoder/pkg/audit"
	"github.com/dbehnke/adlog-decoder/pkg/logger"
)

func TestHandleRuns_NoRepo(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	api := NewAPI(log)

	req := httptest.NewRequest("GET", "/api/runs", nil)
	w := httptest.NewRecorder()

	api.HandleRuns(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response []RunDTO
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response) != 0 {
		t.Errorf("Expected empty list, got %v", response)
	}
}

func TestHandleRuns_WithData(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_api_runs.db"
	defer os.Remove(dbPath)

	store, err := audit.Open(audit.Config{Path: dbPath}, log)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	repo := audit.NewRepository(store.GetDB())

	now := time.Now()
	for i := 0; i < 3; i++ {
		run := &audit.Run{
			FilePath:    "/tmp/flight.bin",
			Workers:     4,
			Mode:        "parallel",
			MessagesOut: 100 * (i + 1),
			WarningsOut: i,
			Succeeded:   true,
			StartedAt:   now.Add(time.Duration(i) * time.Minute),
			FinishedAt:  now.Add(time.Duration(i)*time.Minute + time.Second),
			DurationMS:  1000,
		}
		if err := repo.Create(run); err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	}

	api := NewAPI(log)
	api.SetRunRepository(repo)

	req := httptest.NewRequest("GET", "/api/runs?limit=2", nil)
	w := httptest.NewRecorder()

	api.HandleRuns(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response []RunDTO
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(response))
	}
}

func TestHandleRuns_MethodNotAllowed(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	api := NewAPI(log)

	req := httptest.NewRequest("POST", "/api/runs", nil)
	w := httptest.NewRecorder()

	api.HandleRuns(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestHandleRunByID_NotFoundWithoutRepo(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	api := NewAPI(log)

	req := httptest.NewRequest("GET", "/api/runs/1", nil)
	w := httptest.NewRecorder()

	api.HandleRunByID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleRunByID_WithData(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_api_run_by_id.db"
	defer os.Remove(dbPath)

	store, err := audit.Open(audit.Config{Path: dbPath}, log)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	repo := audit.NewRepository(store.GetDB())
	run := &audit.Run{
		FilePath:    "/tmp/flight.bin",
		Workers:     2,
		Mode:        "cooperative",
		MessagesOut: 50,
		Succeeded:   true,
		StartedAt:   time.Now(),
		FinishedAt:  time.Now().Add(time.Second),
		DurationMS:  500,
	}
	if err := repo.Create(run); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	api := NewAPI(log)
	api.SetRunRepository(repo)

	req := httptest.NewRequest("GET", "/api/runs/1", nil)
	w := httptest.NewRecorder()

	api.HandleRunByID(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var dto RunDTO
	if err := json.NewDecoder(w.Body).Decode(&dto); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if dto.Mode != "cooperative" {
		t.Errorf("Expected mode cooperative, got %q", dto.Mode)
	}
}

func TestHandleRunByID_InvalidID(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	api := NewAPI(log)

	req := httptest.NewRequest("GET", "/api/runs/not-a-number", nil)
	w := httptest.NewRecorder()

	api.HandleRunByID(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	api := NewAPI(log)

	req := httptest.NewRequest("GET", "/api/status", nil)
	w := httptest.NewRecorder()

	api.HandleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "running" {
		t.Errorf("Expected status running, got %v", response["status"])
	}
}
