package handlers

import (
	"errors"
	"log"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler chuyển lỗi trả về từ handler/middleware thành JSON.
// Lỗi nội bộ chỉ ghi log, client nhận thông điệp chung.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	appErr := apperrors.From(err)
	if appErr.Kind() == apperrors.KindInternal {
		log.Printf("[%s] %s %s: %v", c.IP(), c.Method(), c.Path(), appErr)
	}

	body := fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	return c.Status(appErr.Code.HTTPStatus()).JSON(body)
}

func invalidBody(err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid request body", err)
}
