package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/bitfantasy/moldtrack/internal/workshop/testutil"
)

func setupMachineTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	machineSvc := service.NewMachineService(repos.Machine, repos.Schedule)
	h := NewMachineHandler(machineSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/machines", h.Create)
	api.GET("/machines/:id", h.Get)
	api.POST("/machines/:id/schedules", h.CreateSchedule)
	api.GET("/machines/:id/schedules", h.ListSchedules)
	api.POST("/schedules/:id/complete", h.CompleteSchedule)
	api.DELETE("/schedules/:id", h.DeleteSchedule)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestScheduleCompleteComputesNextDue verifies next_due = last_performed + interval_days
func TestScheduleCompleteComputesNextDue(t *testing.T) {
	env := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	machine := testutil.SeedMachine(t, env.DB, "machine-sch-001", "MC-S001")

	body := map[string]interface{}{"description": "润滑导轨", "interval_days": 30}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/machines/"+machine.ID+"/schedules", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating schedule, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	scheduleID := resp["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/schedules/"+scheduleID+"/complete", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 completing schedule, got %d: %s", w.Code, w.Body.String())
	}

	var schedule entity.MaintenanceSchedule
	if err := env.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		t.Fatalf("failed to load schedule: %v", err)
	}
	if schedule.LastPerformed == nil || schedule.NextDue == nil {
		t.Fatal("expected last_performed and next_due to be set")
	}
	expected := schedule.LastPerformed.AddDate(0, 0, 30)
	if diff := schedule.NextDue.Sub(expected); diff > time.Second || diff < -time.Second {
		t.Fatalf("expected next_due 30 days after last_performed, diff %v", diff)
	}
}

// TestScheduleRejectsNonPositiveInterval verifies interval validation
func TestScheduleRejectsNonPositiveInterval(t *testing.T) {
	env := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	machine := testutil.SeedMachine(t, env.DB, "machine-sch-002", "MC-S002")

	body := map[string]interface{}{"description": "换油", "interval_days": -7}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/machines/"+machine.ID+"/schedules", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative interval, got %d: %s", w.Code, w.Body.String())
	}
}

// TestMachineDetailIncludesSchedules verifies the detail view loads schedule items
func TestMachineDetailIncludesSchedules(t *testing.T) {
	env := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	machine := testutil.SeedMachine(t, env.DB, "machine-sch-003", "MC-S003")

	for _, desc := range []string{"清理料斗", "检查液压"} {
		body := map[string]interface{}{"description": desc, "interval_days": 14}
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/machines/"+machine.ID+"/schedules", body, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/machines/"+machine.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	schedules := resp["data"].(map[string]interface{})["schedules"].([]interface{})
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}
}
