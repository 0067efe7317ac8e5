package middleware

import (
	"strings"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/gofiber/fiber/v2"
)

// userIDKey là key trong c.Locals chứa user id đã xác thực
const userIDKey = "user_id"

// TokenVerifier trả về user id trong token hợp lệ
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// BearerToken lấy token từ header "Authorization: Bearer <token>"
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.Unauthenticated("missing token")
	}

	// Tách từ "Bearer <token>"
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.Unauthenticated("invalid token format")
	}
	return strings.TrimSpace(token), nil
}

// JWTMiddleware xác thực access token và lưu user id vào context.
// Middleware không truy cập store.
func JWTMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return err
		}

		userID, err := verifier.VerifyToken(token)
		if err != nil {
			return err
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID trả về user id do JWTMiddleware lưu, rỗng nếu chưa xác thực
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}
