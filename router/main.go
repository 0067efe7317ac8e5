package router

import (
	"github.com/biosecret/go-tasks/handlers"
	"github.com/biosecret/go-tasks/middleware"
	"github.com/gofiber/fiber/v2"
)

// Handlers là các handler cần gắn vào router
type Handlers struct {
	Auth     *handlers.AuthHandler
	Tasks    *handlers.TaskHandler
	Verifier middleware.TokenVerifier
}

// SetupRoutes gắn các route dưới prefix (ví dụ "/api")
func SetupRoutes(app *fiber.App, prefix string, h Handlers) {
	app.Get("/health", handlers.HandleHealthCheck)

	api := app.Group(prefix)

	// /auth/current và /auth/update tự xác thực token trong AuthService
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/current", h.Auth.Current)
	auth.Put("/update", h.Auth.Update)

	tasks := api.Group("/tasks", middleware.JWTMiddleware(h.Verifier))
	tasks.Get("/", h.Tasks.List)
	tasks.Post("/", h.Tasks.Create)
	tasks.Put("/:id", h.Tasks.Update)
	tasks.Delete("/:id", h.Tasks.Delete)
}
