package handlers

import (
	"github.com/biosecret/go-tasks/middleware"
	"github.com/biosecret/go-tasks/models"
	"github.com/biosecret/go-tasks/services"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler gom các route /auth
type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register đăng ký người dùng mới
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.RegisterInput true "Credentials"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input models.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(err)
	}

	user, err := h.svc.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"message": "user registered successfully", "user": user})
}

// Login kiểm tra thông tin đăng nhập và trả về token
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.LoginInput true "Credentials"
// @Success 200 {object} services.LoginResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input models.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(err)
	}

	res, err := h.svc.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(200).JSON(res)
}

// Current trả về hồ sơ của user trong token
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/auth/current [get]
func (h *AuthHandler) Current(c *fiber.Ctx) error {
	token, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}

	user, err := h.svc.ResolveCurrentUser(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.Status(200).JSON(user)
}

// Update cập nhật username, address, phoneNumber
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ProfilePatch true "Fields to change"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/auth/update [put]
func (h *AuthHandler) Update(c *fiber.Ctx) error {
	token, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}

	var patch models.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(err)
	}

	user, err := h.svc.UpdateProfile(c.UserContext(), token, patch)
	if err != nil {
		return err
	}
	return c.Status(200).JSON(user)
}
