package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/planpin/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Plan   *apiHandler.PlanHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/restore", authMiddleware(handlers.Auth.Restore))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Task routes
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.ListTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PATCH("/api/v1/tasks/{id}/position", authMiddleware(handlers.Task.UpdatePosition))
	r.PATCH("/api/v1/tasks/{id}/title", authMiddleware(handlers.Task.UpdateTitle))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/checklist", authMiddleware(handlers.Task.AddChecklistItem))
	r.PATCH("/api/v1/tasks/{id}/checklist/{itemId}", authMiddleware(handlers.Task.UpdateChecklistStatus))

	// Plan interaction routes
	r.POST("/api/v1/plan/events", authMiddleware(handlers.Plan.PointerEvent))
	r.PUT("/api/v1/plan/selection", authMiddleware(handlers.Plan.SetSelection))
	r.GET("/api/v1/plan/selection", authMiddleware(handlers.Plan.GetSelection))

	return r
}
