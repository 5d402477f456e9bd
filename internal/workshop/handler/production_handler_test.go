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

func setupProductionTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	componentSvc := service.NewComponentService(repos.Component, repos.Mold)
	productionSvc := service.NewProductionService(repos.ProductionLog, repos.Component, db)
	stampingSvc := service.NewStampingService(repos.Stamping, repos.Component, db)
	h := NewComponentHandler(componentSvc, productionSvc, stampingSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/components/:id", h.Get)
	api.POST("/components/:id/production", h.LogProduction)
	api.GET("/components/:id/production", h.ListProduction)
	api.PUT("/production-logs/:id", h.UpdateProduction)
	api.DELETE("/production-logs/:id", h.DeleteProduction)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func componentCycles(t *testing.T, db *gorm.DB, id string) int64 {
	t.Helper()
	var component entity.Component
	if err := db.First(&component, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load component: %v", err)
	}
	return component.TotalCycles
}

// TestProductionLedgerConservation verifies total_cycles always equals the sum of log totals
func TestProductionLedgerConservation(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedComponent(t, env.DB, "comp-prod-001", "CMP-P001")

	// Log 90 good + 10 scrapped
	body := map[string]interface{}{
		"good_pieces":     90,
		"scrapped_pieces": 10,
		"scrap_reason":    "冷料斑",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/components/comp-prod-001/production", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	logID := resp["data"].(map[string]interface{})["id"].(string)

	if cycles := componentCycles(t, env.DB, "comp-prod-001"); cycles != 100 {
		t.Fatalf("expected total_cycles 100 after logging, got %d", cycles)
	}

	// Correct the record to 95 good + 10 scrapped
	body = map[string]interface{}{
		"good_pieces":     95,
		"scrapped_pieces": 10,
		"scrap_reason":    "冷料斑",
	}
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/production-logs/"+logID, body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 update, got %d: %s", w.Code, w.Body.String())
	}
	if cycles := componentCycles(t, env.DB, "comp-prod-001"); cycles != 105 {
		t.Fatalf("expected total_cycles 105 after correction, got %d", cycles)
	}

	// Delete the record, cycles drop back to zero
	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/production-logs/"+logID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 delete, got %d: %s", w.Code, w.Body.String())
	}
	if cycles := componentCycles(t, env.DB, "comp-prod-001"); cycles != 0 {
		t.Fatalf("expected total_cycles 0 after delete, got %d", cycles)
	}
}

// TestProductionRejectsNegativeCounts verifies validation on piece counts
func TestProductionRejectsNegativeCounts(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedComponent(t, env.DB, "comp-prod-002", "CMP-P002")

	body := map[string]interface{}{
		"good_pieces":     -5,
		"scrapped_pieces": 10,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/components/comp-prod-002/production", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative counts, got %d: %s", w.Code, w.Body.String())
	}
	if cycles := componentCycles(t, env.DB, "comp-prod-002"); cycles != 0 {
		t.Fatalf("expected total_cycles unchanged at 0, got %d", cycles)
	}
}

// TestProductionAccumulatesAcrossLogs verifies multiple logs sum up
func TestProductionAccumulatesAcrossLogs(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedComponent(t, env.DB, "comp-prod-003", "CMP-P003")

	for _, counts := range [][2]int{{50, 2}, {48, 0}, {60, 5}} {
		body := map[string]interface{}{
			"good_pieces":     counts[0],
			"scrapped_pieces": counts[1],
		}
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/components/comp-prod-003/production", body, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	if cycles := componentCycles(t, env.DB, "comp-prod-003"); cycles != 165 {
		t.Fatalf("expected total_cycles 165, got %d", cycles)
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/components/comp-prod-003/production", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("expected 3 production logs, got %d", len(items))
	}
}

// TestProductionUnknownComponent returns 404
func TestProductionUnknownComponent(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{"good_pieces": 10, "scrapped_pieces": 0}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/components/no-such-component/production", body, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

// TestProductionPartialUpdateKeepsOmittedFields verifies a PUT that sends
// only some fields leaves the others untouched
func TestProductionPartialUpdateKeepsOmittedFields(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedComponent(t, env.DB, "comp-prod-005", "CMP-P005")

	body := map[string]interface{}{
		"good_pieces":     90,
		"scrapped_pieces": 10,
		"scrap_reason":    "冷料斑",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/components/comp-prod-005/production", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	logID := resp["data"].(map[string]interface{})["id"].(string)

	// PUT only good_pieces; scrapped and reason must stay
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/production-logs/"+logID, map[string]interface{}{"good_pieces": 95}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 update, got %d: %s", w.Code, w.Body.String())
	}

	var logEntry entity.ProductionLog
	if err := env.DB.First(&logEntry, "id = ?", logID).Error; err != nil {
		t.Fatalf("failed to load production log: %v", err)
	}
	if logEntry.GoodPieces != 95 {
		t.Fatalf("expected good_pieces 95, got %d", logEntry.GoodPieces)
	}
	if logEntry.ScrappedPieces != 10 {
		t.Fatalf("expected scrapped_pieces retained at 10, got %d", logEntry.ScrappedPieces)
	}
	if logEntry.ScrapReason != "冷料斑" {
		t.Fatalf("expected scrap_reason retained, got %q", logEntry.ScrapReason)
	}
	if cycles := componentCycles(t, env.DB, "comp-prod-005"); cycles != 105 {
		t.Fatalf("expected total_cycles 105 after partial update, got %d", cycles)
	}

	// Negative value in a partial update is still rejected
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/production-logs/"+logID, map[string]interface{}{"scrapped_pieces": -1}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative partial update, got %d: %s", w.Code, w.Body.String())
	}
	if cycles := componentCycles(t, env.DB, "comp-prod-005"); cycles != 105 {
		t.Fatalf("expected total_cycles unchanged at 105, got %d", cycles)
	}
}

// TestProductionZeroTotalLogAllowed verifies a good=0/scrapped=0 record is
// accepted and never moves the counter, including on delete
func TestProductionZeroTotalLogAllowed(t *testing.T) {
	env := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedComponent(t, env.DB, "comp-prod-006", "CMP-P006")

	body := map[string]interface{}{
		"good_pieces":     0,
		"scrapped_pieces": 0,
		"scrap_reason":    "试模未出件",
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/components/comp-prod-006/production", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for zero-total log, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	logID := resp["data"].(map[string]interface{})["id"].(string)

	if cycles := componentCycles(t, env.DB, "comp-prod-006"); cycles != 0 {
		t.Fatalf("expected total_cycles 0, got %d", cycles)
	}

	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/production-logs/"+logID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 delete, got %d: %s", w.Code, w.Body.String())
	}
	if cycles := componentCycles(t, env.DB, "comp-prod-006"); cycles != 0 {
		t.Fatalf("expected total_cycles 0 after delete, got %d", cycles)
	}
}
