package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gymplanner/gymplanner/internal/config"
	"github.com/gymplanner/gymplanner/internal/models"
)

func testConfig(singleSession bool) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTL:      time.Hour,
			CookieName:    "session",
			SingleSession: singleSession,
		},
	}
}

func newTestServer(t *testing.T, singleSession bool) (*gorm.DB, http.Handler) {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.GroupMuscle{}, &models.Exercise{}, &models.Workout{}, &models.ExerciseInWorkout{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, New(db, testConfig(singleSession))
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: string(hash), Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return &admin
}

// do sends a JSON request with an optional session cookie and decodes the
// response body into out (when out is non-nil).
func do(t *testing.T, h http.Handler, method, path, body, session string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: session})
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200 got %d (%s)", email, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("login did not set a session cookie")
	return ""
}

func TestRegisterOmitsPasswordAndRejectsDuplicates(t *testing.T) {
	_, h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"Alice@Example.com","password":"secret123"}`, "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := raw["password"]; present {
		t.Error("profile response must not contain a password field")
	}
	if raw["email"] != "alice@example.com" {
		t.Errorf("expected normalized email, got %v", raw["email"])
	}

	// Case-insensitive duplicate.
	w = do(t, h, http.MethodPost, "/auth/register", `{"name":"Mallory","email":"ALICE@example.com","password":"other456"}`, "", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 got %d", w.Code)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	_, h := newTestServer(t, false)
	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)

	w := do(t, h, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401 got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"secret123"}`, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: expected 401 got %d", w.Code)
	}
}

func TestUserRoleCannotReachAdminRoutes(t *testing.T) {
	_, h := newTestServer(t, false)
	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)
	session := login(t, h, "alice@example.com", "secret123")

	w := do(t, h, http.MethodPost, "/group-muscles", `{"name":"Legs"}`, session, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for USER on admin route, got %d", w.Code)
	}
	// Distinct from the unauthenticated case.
	w = do(t, h, http.MethodPost, "/group-muscles", `{"name":"Legs"}`, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", w.Code)
	}
}

func TestCatalogCascadeScenario(t *testing.T) {
	db, h := newTestServer(t, false)
	seedAdmin(t, db)
	adminSession := login(t, h, "admin@example.com", "adminpass")

	// Admin creates GroupMuscle "Legs" and Exercise "Squat" under it.
	var group models.GroupMuscle
	w := do(t, h, http.MethodPost, "/group-muscles", `{"name":"Legs","description":"Lower body"}`, adminSession, &group)
	if w.Code != http.StatusCreated {
		t.Fatalf("group: expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var exercise models.Exercise
	w = do(t, h, http.MethodPost, "/exercises", `{"name":"Squat","groupMuscleId":"`+group.ID+`"}`, adminSession, &exercise)
	if w.Code != http.StatusCreated {
		t.Fatalf("exercise: expected 201 got %d (%s)", w.Code, w.Body.String())
	}

	// User A creates a workout with one Squat assignment.
	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)
	userSession := login(t, h, "alice@example.com", "secret123")

	var workout models.Workout
	w = do(t, h, http.MethodPost, "/workouts",
		`{"title":"Day 1","day":1,"exercises":[{"exerciseId":"`+exercise.ID+`","series":3,"reps":10}]}`,
		userSession, &workout)
	if w.Code != http.StatusCreated {
		t.Fatalf("workout: expected 201 got %d (%s)", w.Code, w.Body.String())
	}

	// The list shows one workout with the nested exercise and group joined in.
	var list []models.Workout
	w = do(t, h, http.MethodGet, "/workouts", "", userSession, &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list: expected one workout, got %d (code %d)", len(list), w.Code)
	}
	if len(list[0].Exercises) != 1 ||
		list[0].Exercises[0].Exercise.Name != "Squat" ||
		list[0].Exercises[0].Exercise.GroupMuscle.Name != "Legs" {
		t.Fatalf("expected nested Squat/Legs, got %+v", list[0].Exercises)
	}

	// Admin deletes "Legs": the Squat assignment is removed by cascade but
	// the workout itself survives.
	w = do(t, h, http.MethodDelete, "/group-muscles/"+group.ID, "", adminSession, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cascade delete: expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/workouts", "", userSession, &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list after cascade: expected one workout, got %d", len(list))
	}
	if len(list[0].Exercises) != 0 {
		t.Errorf("expected zero assignments after cascade, got %d", len(list[0].Exercises))
	}
	w = do(t, h, http.MethodGet, "/exercises/"+exercise.ID, "", userSession, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cascaded exercise, got %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/group-muscles/"+group.ID, "", userSession, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted group, got %d", w.Code)
	}
}

func TestOwnershipAcrossUsers(t *testing.T) {
	db, h := newTestServer(t, false)
	seedAdmin(t, db)
	adminSession := login(t, h, "admin@example.com", "adminpass")

	var group models.GroupMuscle
	do(t, h, http.MethodPost, "/group-muscles", `{"name":"Back"}`, adminSession, &group)
	var exercise models.Exercise
	do(t, h, http.MethodPost, "/exercises", `{"name":"Deadlift","groupMuscleId":"`+group.ID+`"}`, adminSession, &exercise)

	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)
	do(t, h, http.MethodPost, "/auth/register", `{"name":"Bob","email":"bob@example.com","password":"secret456"}`, "", nil)
	aliceSession := login(t, h, "alice@example.com", "secret123")
	bobSession := login(t, h, "bob@example.com", "secret456")

	var workout models.Workout
	do(t, h, http.MethodPost, "/workouts",
		`{"title":"Alice day","day":2,"exercises":[{"exerciseId":"`+exercise.ID+`","series":5,"reps":5}]}`,
		aliceSession, &workout)
	assignmentID := workout.Exercises[0].ID

	// All of Bob's attempts on Alice's workout and assignment are forbidden.
	checks := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/workouts/" + workout.ID, ""},
		{http.MethodPatch, "/workouts/" + workout.ID, `{"day":3}`},
		{http.MethodDelete, "/workouts/" + workout.ID, ""},
		{http.MethodPost, "/workouts/" + workout.ID + "/exercises", `{"exerciseId":"` + exercise.ID + `","series":1,"reps":1}`},
		{http.MethodDelete, "/workouts/exercises/" + assignmentID, ""},
	}
	for _, c := range checks {
		if w := do(t, h, c.method, c.path, c.body, bobSession, nil); w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 got %d", c.method, c.path, w.Code)
		}
	}

	// A missing workout is 404, distinguishable from 403.
	if w := do(t, h, http.MethodGet, "/workouts/does-not-exist", "", bobSession, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing workout, got %d", w.Code)
	}

	// Alice's own calls succeed.
	if w := do(t, h, http.MethodPatch, "/workouts/"+workout.ID, `{"day":3}`, aliceSession, nil); w.Code != http.StatusOK {
		t.Errorf("owner update: expected 200 got %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/workouts/exercises/"+assignmentID, "", aliceSession, nil); w.Code != http.StatusOK {
		t.Errorf("owner remove: expected 200 got %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/workouts/"+workout.ID, "", aliceSession, nil); w.Code != http.StatusOK {
		t.Errorf("owner delete: expected 200 got %d", w.Code)
	}
}

func TestSingleSessionLogoutInvalidatesToken(t *testing.T) {
	_, h := newTestServer(t, true)
	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)
	session := login(t, h, "alice@example.com", "secret123")

	if w := do(t, h, http.MethodGet, "/me", "", session, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/auth/logout", "", session, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200 got %d", w.Code)
	}
	// The token is unexpired but its slot is gone.
	if w := do(t, h, http.MethodGet, "/me", "", session, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

func TestSingleSessionNewLoginRevokesOldToken(t *testing.T) {
	_, h := newTestServer(t, true)
	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)

	first := login(t, h, "alice@example.com", "secret123")
	second := login(t, h, "alice@example.com", "secret123")

	if w := do(t, h, http.MethodGet, "/me", "", second, nil); w.Code != http.StatusOK {
		t.Errorf("current token: expected 200 got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/me", "", first, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("overwritten slot: expected 401 got %d", w.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	db, h := newTestServer(t, false)
	seedAdmin(t, db)
	adminSession := login(t, h, "admin@example.com", "adminpass")

	do(t, h, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret123"}`, "", nil)
	var users []map[string]any
	if w := do(t, h, http.MethodGet, "/admin/users", "", adminSession, &users); w.Code != http.StatusOK || len(users) != 2 {
		t.Fatalf("expected 2 users, got %d (code %d)", len(users), w.Code)
	}

	var alice models.User
	if err := db.First(&alice, "email = ?", "alice@example.com").Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	aliceSession := login(t, h, "alice@example.com", "secret123")
	do(t, h, http.MethodPost, "/workouts", `{"title":"W","day":1}`, aliceSession, nil)

	// Admin delete cascades Alice's workouts.
	if w := do(t, h, http.MethodDelete, "/admin/users/"+alice.ID, "", adminSession, nil); w.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200 got %d", w.Code)
	}
	var n int64
	db.Model(&models.Workout{}).Where("user_id = ?", alice.ID).Count(&n)
	if n != 0 {
		t.Errorf("expected cascaded workouts, %d left", n)
	}
	if w := do(t, h, http.MethodGet, "/admin/users/"+alice.ID, "", adminSession, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted user, got %d", w.Code)
	}
}
