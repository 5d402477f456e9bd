package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/moldtrack/internal/middleware"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/bitfantasy/moldtrack/internal/workshop/testutil"
)

func setupUserTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	userSvc := service.NewUserService(repos.User)
	h := NewUserHandler(userSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	admin := api.Group("", middleware.AdminOnly())
	admin.POST("/users", h.Create)
	admin.GET("/users", h.List)
	admin.DELETE("/users/:id", h.Delete)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestUserAdminOnly verifies non-admin tokens are rejected on user management
func TestUserAdminOnly(t *testing.T) {
	env := setupUserTest(t)
	operatorToken := testutil.GenerateTestToken("op-001", "op01", "Operator", false)

	body := map[string]interface{}{"code": "u100", "name": "新同事"}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/users", body, operatorToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", w.Code, w.Body.String())
	}
}

// TestUserCreateAndDuplicateCode verifies creation and unique code handling
func TestUserCreateAndDuplicateCode(t *testing.T) {
	env := setupUserTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{"code": "u200", "name": "王师傅", "allowed_codes": []string{"M-001"}}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/users", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/users", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate code, got %d: %s", w.Code, w.Body.String())
	}
}

// TestUserMissingToken verifies the auth middleware blocks anonymous access
func TestUserMissingToken(t *testing.T) {
	env := setupUserTest(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/users", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
