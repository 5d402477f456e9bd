package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/bitfantasy/moldtrack/internal/workshop/testutil"
)

func setupExportTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	exportSvc := service.NewExportService(repos.ProductionLog, repos.Component, repos.Mold)
	h := NewExportHandler(exportSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/exports/molds", h.ExportMolds)
	api.GET("/exports/components/:id/production", h.ExportProduction)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestExportMoldsCSV verifies the csv format branch returns a header row and
// one line per mold
func TestExportMoldsCSV(t *testing.T) {
	env := setupExportTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-exp-001", "MOLD-E001")
	testutil.SeedMold(t, env.DB, "mold-exp-002", "MOLD-E002")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/exports/molds?format=csv", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 mold rows, got %d lines: %s", len(lines), w.Body.String())
	}
	if !strings.HasPrefix(lines[0], "code,") {
		t.Fatalf("expected csv header row, got %q", lines[0])
	}
	if !strings.Contains(w.Body.String(), "MOLD-E001") || !strings.Contains(w.Body.String(), "MOLD-E002") {
		t.Fatalf("expected both mold codes in export: %s", w.Body.String())
	}
}

// TestExportMoldsXLSXDefault verifies the default format stays xlsx
func TestExportMoldsXLSXDefault(t *testing.T) {
	env := setupExportTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedMold(t, env.DB, "mold-exp-003", "MOLD-E003")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/exports/molds", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("expected xlsx content type, got %q", ct)
	}
}
