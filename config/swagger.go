package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/biosecret/go-tasks/docs"
)

// AddSwaggerRoutes gắn Swagger UI tại /swagger, giữ lại token đã nhập khi tải lại trang
func AddSwaggerRoutes(app *fiber.App) {
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:                "Task API",
		DocExpansion:         "list",
		PersistAuthorization: true,
	}))
}
