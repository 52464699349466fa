package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gymplanner/gymplanner/internal/apperr"
	"github.com/gymplanner/gymplanner/internal/models"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthMissingToken(t *testing.T) {
	gate := NewGate(NewTokenService(testAuthConfig()), nil)
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	w := httptest.NewRecorder()
	gate.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

	if called {
		t.Error("handler should not run without a token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 got %d", w.Code)
	}
}

func TestRequireAuthInvalidTokenClearsCookie(t *testing.T) {
	svc := NewTokenService(testAuthConfig())
	gate := NewGate(svc, nil)
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	w := httptest.NewRecorder()
	gate.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	// The stale cookie must be cleared so the client stops replaying it.
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the stale session cookie to be cleared")
	}
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	svc := NewTokenService(testAuthConfig())
	gate := NewGate(svc, nil)
	token, _, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got Identity
	handler := gate.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		got = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.UserID != "u-1" || got.Email != "alice@example.com" || got.Role != models.RoleUser {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestRequireAuthBearerHeaderFallback(t *testing.T) {
	svc := NewTokenService(testAuthConfig())
	gate := NewGate(svc, nil)
	token, _, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	gate.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

	if !called || w.Code != http.StatusOK {
		t.Errorf("expected header token to authenticate, got %d", w.Code)
	}
}

func TestRequireAuthRejectedByVerifier(t *testing.T) {
	svc := NewTokenService(testAuthConfig())
	gate := NewGate(svc, func(_ context.Context, userID, jti string) error {
		return apperr.ErrUnauthenticated
	})
	token, _, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	w := httptest.NewRecorder()
	gate.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

	if called {
		t.Error("handler should not run when the verifier rejects the session")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 got %d", w.Code)
	}
}

func TestRequireAuthVerifierStoreFailure(t *testing.T) {
	// A failing store is not a revoked session: the caller gets 500 and
	// keeps the cookie, instead of being logged out by an outage.
	svc := NewTokenService(testAuthConfig())
	gate := NewGate(svc, func(_ context.Context, userID, jti string) error {
		return apperr.ErrStore
	})
	token, _, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	w := httptest.NewRecorder()
	gate.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

	if called {
		t.Error("handler should not run when the verifier cannot check the session")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 got %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			t.Error("a store failure must not clear the session cookie")
		}
	}
}

func TestRequireRole(t *testing.T) {
	gate := NewGate(NewTokenService(testAuthConfig()), nil)

	run := func(ctx context.Context) *httptest.ResponseRecorder {
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		gate.RequireRole(models.RoleAdmin)(okHandler(&called)).ServeHTTP(w, req)
		return w
	}

	// USER identity on an ADMIN route: forbidden, not unauthenticated.
	w := run(WithIdentity(context.Background(), Identity{UserID: "u-1", Role: models.RoleUser}))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for wrong role, got %d", w.Code)
	}

	// Missing identity is an authentication failure, not a role failure.
	w = run(context.Background())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing identity, got %d", w.Code)
	}

	// Matching role passes.
	w = run(WithIdentity(context.Background(), Identity{UserID: "a-1", Role: models.RoleAdmin}))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", w.Code)
	}
}
