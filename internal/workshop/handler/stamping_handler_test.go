package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/bitfantasy/moldtrack/internal/workshop/testutil"
)

func setupStampingTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	componentSvc := service.NewComponentService(repos.Component, repos.Mold)
	productionSvc := service.NewProductionService(repos.ProductionLog, repos.Component, db)
	stampingSvc := service.NewStampingService(repos.Stamping, repos.Component, db)
	h := NewComponentHandler(componentSvc, productionSvc, stampingSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.PUT("/components/:id/stamping-data", h.UpdateStampingData)
	api.GET("/components/:id/stamping-history", h.ListStampingHistory)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestStampingChangeAppendsHistory verifies only changed keys land in history
func TestStampingChangeAppendsHistory(t *testing.T) {
	env := setupStampingTest(t)
	token := testutil.DefaultTestToken()

	component := testutil.SeedComponent(t, env.DB, "comp-st-001", "CMP-ST001")
	env.DB.Model(component).Update("stamping_data", entity.StringMap{"pressure": "120", "temperature": "210"})

	body := map[string]string{"pressure": "120", "temperature": "215"}
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/components/comp-st-001/stamping-data", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var history []entity.StampingHistory
	if err := env.DB.Where("component_id = ?", "comp-st-001").Find(&history).Error; err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	if len(history[0].ChangedData) != 1 || history[0].ChangedData["temperature"] != "215" {
		t.Fatalf("expected only temperature in changed data, got %v", history[0].ChangedData)
	}
	if history[0].UserID == "" {
		t.Fatal("expected acting user recorded in history")
	}

	// 零件参数已更新，未提交的键保持不动
	var updated entity.Component
	env.DB.First(&updated, "id = ?", "comp-st-001")
	if updated.StampingData["temperature"] != "215" || updated.StampingData["pressure"] != "120" {
		t.Fatalf("unexpected stamping data after change: %v", updated.StampingData)
	}
}

// TestStampingNoopWritesNothing verifies identical submissions produce no history
func TestStampingNoopWritesNothing(t *testing.T) {
	env := setupStampingTest(t)
	token := testutil.DefaultTestToken()

	component := testutil.SeedComponent(t, env.DB, "comp-st-002", "CMP-ST002")
	env.DB.Model(component).Update("stamping_data", entity.StringMap{"pressure": "100"})

	body := map[string]string{"pressure": "100"}
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/components/comp-st-002/stamping-data", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.StampingHistory{}).Where("component_id = ?", "comp-st-002").Count(&count)
	if count != 0 {
		t.Fatalf("expected no history for no-op change, got %d", count)
	}
}

// TestStampingHistoryOrder verifies newest-first history listing
func TestStampingHistoryOrder(t *testing.T) {
	env := setupStampingTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedComponent(t, env.DB, "comp-st-003", "CMP-ST003")

	for _, temp := range []string{"200", "205", "210"} {
		body := map[string]string{"temperature": temp}
		w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/components/comp-st-003/stamping-data", body, token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/components/comp-st-003/stamping-history", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing history, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("expected 3 history records, got %d", len(items))
	}
	first := items[0].(map[string]interface{})["changed_data"].(map[string]interface{})
	if first["temperature"] != "210" {
		t.Fatalf("expected newest change first, got %v", first)
	}
}
