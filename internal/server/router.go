// Package server wires routes, middleware, and handlers into the root
// http.Handler.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/gymplanner/gymplanner/internal/auth"
	"github.com/gymplanner/gymplanner/internal/config"
	"github.com/gymplanner/gymplanner/internal/handlers"
	"github.com/gymplanner/gymplanner/internal/httpx"
	"github.com/gymplanner/gymplanner/internal/logger"
	"github.com/gymplanner/gymplanner/internal/models"
	"github.com/gymplanner/gymplanner/internal/services"
)

// New constructs the root handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg *config.Config) http.Handler {
	users := services.NewUserService(db)
	catalog := services.NewCatalogService(db)
	workouts := services.NewWorkoutService(db)

	tokens := auth.NewTokenService(cfg.Auth)
	gate := auth.NewGate(tokens, func(_ context.Context, userID, jti string) error {
		return users.VerifySession(userID, jti, cfg.Auth.SingleSession)
	})

	authHandler := handlers.NewAuthHandler(users, tokens, cfg.Auth.SingleSession)
	userHandler := handlers.NewUserHandler(users)
	adminHandler := handlers.NewAdminHandler(users, workouts)
	catalogHandler := handlers.NewCatalogHandler(catalog)
	workoutHandler := handlers.NewWorkoutHandler(workouts)

	r := chi.NewRouter()
	r.Use(logger.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health endpoints
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public auth routes
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuth)

		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/me", userHandler.Me)
		r.Patch("/me", userHandler.UpdateMe)
		r.Delete("/me", userHandler.DeleteMe)

		// Catalog reads are open to any authenticated user.
		r.Get("/group-muscles", catalogHandler.ListGroupMuscles)
		r.Get("/group-muscles/{id}", catalogHandler.GetGroupMuscle)
		r.Get("/exercises", catalogHandler.ListExercises)
		r.Get("/exercises/{id}", catalogHandler.GetExercise)

		// User-scoped workout routes (ownership guarded in services).
		r.Post("/workouts", workoutHandler.Create)
		r.Get("/workouts", workoutHandler.ListOwn)
		r.Get("/workouts/{id}", workoutHandler.Get)
		r.Patch("/workouts/{id}", workoutHandler.Update)
		r.Delete("/workouts/{id}", workoutHandler.Delete)
		r.Post("/workouts/{id}/exercises", workoutHandler.AddExercise)
		r.Delete("/workouts/exercises/{assignmentID}", workoutHandler.RemoveExercise)

		// Admin routes: role gate, no ownership checks downstream.
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireRole(models.RoleAdmin))

			r.Get("/admin/users", adminHandler.ListUsers)
			r.Get("/admin/users/{id}", adminHandler.GetUser)
			r.Patch("/admin/users/{id}", adminHandler.UpdateUser)
			r.Delete("/admin/users/{id}", adminHandler.DeleteUser)
			r.Get("/admin/workouts", adminHandler.ListWorkouts)

			r.Post("/group-muscles", catalogHandler.CreateGroupMuscle)
			r.Patch("/group-muscles/{id}", catalogHandler.UpdateGroupMuscle)
			r.Delete("/group-muscles/{id}", catalogHandler.DeleteGroupMuscle)
			r.Post("/exercises", catalogHandler.CreateExercise)
			r.Patch("/exercises/{id}", catalogHandler.UpdateExercise)
			r.Delete("/exercises/{id}", catalogHandler.DeleteExercise)
		})
	})

	return r
}
