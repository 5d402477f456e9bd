package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/bitfantasy/moldtrack/internal/workshop/testutil"
	"gorm.io/gorm"
)

func setupEventTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	eventSvc := service.NewEventService(repos.Event, repos.Mold, repos.Machine, repos.Schedule, db)
	h := NewEventHandler(eventSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/events", h.Create)
	api.GET("/events/upcoming", h.ListUpcoming)
	api.GET("/events/:id", h.Get)
	api.PUT("/events/:id", h.Update)
	api.POST("/events/:id/close", h.Close)
	api.GET("/sources/:id/events", h.ListBySource)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func moldStatus(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()
	var mold entity.Mold
	if err := db.First(&mold, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load mold: %v", err)
	}
	return mold.Status
}

func createEvent(t *testing.T, env *testutil.TestEnv, token, sourceID, eventType string) string {
	t.Helper()
	body := map[string]interface{}{
		"source_id":   sourceID,
		"type":        eventType,
		"description": "test event",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating %s event, got %d: %s", eventType, w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

// TestEventDerivesMoldStatus verifies maintenance/repair/processing events drive mold status
func TestEventDerivesMoldStatus(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-ev-001", "M-E001")

	createEvent(t, env, token, "mold-ev-001", entity.EventTypeMaintenance)
	if status := moldStatus(t, env.DB, "mold-ev-001"); status != entity.MoldStatusInMaintenance {
		t.Fatalf("expected in_maintenance after maintenance event, got %s", status)
	}

	// 后写的processing事件覆盖状态
	createEvent(t, env, token, "mold-ev-001", entity.EventTypeProcessing)
	if status := moldStatus(t, env.DB, "mold-ev-001"); status != entity.MoldStatusProcessing {
		t.Fatalf("expected processing after processing event, got %s", status)
	}
}

// TestCostEventLeavesStatusUnchanged verifies cost/other events do not touch mold status
func TestCostEventLeavesStatusUnchanged(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-ev-002", "M-E002")

	createEvent(t, env, token, "mold-ev-002", entity.EventTypeCost)
	if status := moldStatus(t, env.DB, "mold-ev-002"); status != entity.MoldStatusOperational {
		t.Fatalf("expected operational after cost event, got %s", status)
	}
}

// TestCloseEventRecoversMold verifies closure restores operational only when no open events remain
func TestCloseEventRecoversMold(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-ev-003", "M-E003")

	first := createEvent(t, env, token, "mold-ev-003", entity.EventTypeMaintenance)
	second := createEvent(t, env, token, "mold-ev-003", entity.EventTypeRepair)

	// Closing one of two open events leaves status untouched
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events/"+first+"/close", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 closing first event, got %d: %s", w.Code, w.Body.String())
	}
	if status := moldStatus(t, env.DB, "mold-ev-003"); status != entity.MoldStatusInMaintenance {
		t.Fatalf("expected in_maintenance with one event still open, got %s", status)
	}

	// Closing the last open event recovers operational
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events/"+second+"/close", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 closing second event, got %d: %s", w.Code, w.Body.String())
	}
	if status := moldStatus(t, env.DB, "mold-ev-003"); status != entity.MoldStatusOperational {
		t.Fatalf("expected operational after all events closed, got %s", status)
	}

	// Closed event got its actual end date stamped
	var event entity.Event
	if err := env.DB.First(&event, "id = ?", second).Error; err != nil {
		t.Fatalf("failed to load event: %v", err)
	}
	if event.Status != entity.EventStatusClosed || event.ActualEndDate == nil {
		t.Fatalf("expected closed event with actual_end_date, got status=%s end=%v", event.Status, event.ActualEndDate)
	}
}

// TestCloseEventTwiceConflicts verifies a closed event cannot be closed again
func TestCloseEventTwiceConflicts(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-ev-004", "M-E004")
	id := createEvent(t, env, token, "mold-ev-004", entity.EventTypeMaintenance)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events/"+id+"/close", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 first close, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events/"+id+"/close", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second close, got %d: %s", w.Code, w.Body.String())
	}
}

// TestMachineEventDoesNotTouchStatus verifies machine-sourced events never derive status
func TestMachineEventDoesNotTouchStatus(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMachine(t, env.DB, "machine-ev-001", "MC-E001")

	createEvent(t, env, token, "machine-ev-001", entity.EventTypeMaintenance)

	var machine entity.Machine
	if err := env.DB.First(&machine, "id = ?", "machine-ev-001").Error; err != nil {
		t.Fatalf("failed to load machine: %v", err)
	}
	if machine.Status != "operational" {
		t.Fatalf("expected machine status untouched, got %s", machine.Status)
	}
}

// TestEventUnknownSource returns 404
func TestEventUnknownSource(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{"source_id": "no-such-source", "type": entity.EventTypeRepair}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events", body, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown source, got %d: %s", w.Code, w.Body.String())
	}
}

// TestEventUnknownType returns 400
func TestEventUnknownType(t *testing.T) {
	env := setupEventTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-ev-005", "M-E005")
	body := map[string]interface{}{"source_id": "mold-ev-005", "type": "vacation"}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/events", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d: %s", w.Code, w.Body.String())
	}
}
