package handlers

import (
	"github.com/biosecret/go-tasks/middleware"
	"github.com/biosecret/go-tasks/models"
	"github.com/biosecret/go-tasks/services"
	"github.com/gofiber/fiber/v2"
)

// TaskHandler gom các route /tasks, luôn đứng sau JWTMiddleware
type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List lấy tất cả task của user
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Task
// @Failure 401 {object} map[string]interface{}
// @Router /api/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.svc.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(200).JSON(tasks)
}

// Create tạo mới một task
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.TaskInput true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var input models.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(err)
	}

	task, err := h.svc.Create(c.UserContext(), middleware.UserID(c), input)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(task)
}

// Update cập nhật một task
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param body body models.TaskPatch true "Fields to change"
// @Success 200 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var patch models.TaskPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(err)
	}

	task, err := h.svc.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.Status(200).JSON(task)
}

// Delete xóa một task
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.Status(200).JSON(fiber.Map{"message": "task deleted"})
}
