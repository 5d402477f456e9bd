package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/bitfantasy/moldtrack/internal/workshop/testutil"
)

func setupRequestTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	eventSvc := service.NewEventService(repos.Event, repos.Mold, repos.Machine, repos.Schedule, db)
	requestSvc := service.NewRequestService(repos.Request, repos.Mold, repos.Machine, eventSvc, db)
	h := NewRequestHandler(requestSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/maintenance-requests", h.Create)
	api.GET("/maintenance-requests", h.List)
	api.GET("/maintenance-requests/:id", h.Get)
	api.PUT("/maintenance-requests/:id/status", h.UpdateStatus)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func createRequest(t *testing.T, env *testutil.TestEnv, token, sourceID string) string {
	t.Helper()
	body := map[string]interface{}{
		"source_id":   sourceID,
		"description": "导柱磨损需要更换",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/maintenance-requests", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating request, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

// TestRequestApprovalCreatesMaintenanceEvent verifies approval emits exactly one open event
// and drives the mold into in_maintenance
func TestRequestApprovalCreatesMaintenanceEvent(t *testing.T) {
	env := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	mold := testutil.SeedMold(t, env.DB, "mold-req-001", "M-REQ-001")
	id := createRequest(t, env, token, mold.ID)

	body := map[string]interface{}{"status": "approved"}
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/maintenance-requests/"+id+"/status", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 approving, got %d: %s", w.Code, w.Body.String())
	}

	var events []entity.Event
	if err := env.DB.Where("source_id = ?", mold.ID).Find(&events).Error; err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event after approval, got %d", len(events))
	}
	if events[0].Type != entity.EventTypeMaintenance || events[0].Status != entity.EventStatusOpen {
		t.Fatalf("expected open maintenance event, got type=%s status=%s", events[0].Type, events[0].Status)
	}

	var updated entity.Mold
	env.DB.First(&updated, "id = ?", mold.ID)
	if updated.Status != entity.MoldStatusInMaintenance {
		t.Fatalf("expected mold in_maintenance after approval, got %s", updated.Status)
	}

	// 申请带上了审批人和时间
	var request entity.MaintenanceRequest
	env.DB.First(&request, "id = ?", id)
	if request.DecidedBy == nil || request.DecidedAt == nil {
		t.Fatal("expected decided_by and decided_at to be stamped")
	}
}

// TestRequestRejectionEmitsNoEvent verifies rejection changes only the request
func TestRequestRejectionEmitsNoEvent(t *testing.T) {
	env := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	mold := testutil.SeedMold(t, env.DB, "mold-req-002", "M-REQ-002")
	id := createRequest(t, env, token, mold.ID)

	body := map[string]interface{}{"status": "rejected"}
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/maintenance-requests/"+id+"/status", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 rejecting, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.Event{}).Where("source_id = ?", mold.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no events after rejection, got %d", count)
	}

	var updated entity.Mold
	env.DB.First(&updated, "id = ?", mold.ID)
	if updated.Status != entity.MoldStatusOperational {
		t.Fatalf("expected mold still operational, got %s", updated.Status)
	}
}

// TestRequestDecidedIsFinal verifies non-pending requests reject further transitions
func TestRequestDecidedIsFinal(t *testing.T) {
	env := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	mold := testutil.SeedMold(t, env.DB, "mold-req-003", "M-REQ-003")
	id := createRequest(t, env, token, mold.ID)

	body := map[string]interface{}{"status": "rejected"}
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/maintenance-requests/"+id+"/status", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 rejecting, got %d", w.Code)
	}

	body = map[string]interface{}{"status": "approved"}
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/maintenance-requests/"+id+"/status", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 re-deciding request, got %d: %s", w.Code, w.Body.String())
	}
}

// TestRequestInvalidTargetStatus verifies pending→pending and unknown statuses are rejected
func TestRequestInvalidTargetStatus(t *testing.T) {
	env := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	mold := testutil.SeedMold(t, env.DB, "mold-req-004", "M-REQ-004")
	id := createRequest(t, env, token, mold.ID)

	body := map[string]interface{}{"status": "done"}
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/maintenance-requests/"+id+"/status", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unknown target status, got %d: %s", w.Code, w.Body.String())
	}
}

// TestRequestUnknownSource returns 404
func TestRequestUnknownSource(t *testing.T) {
	env := setupRequestTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{"source_id": "no-such-source", "description": "x"}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/maintenance-requests", body, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
