package services

import (
	"net/mail"
	"strings"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/biosecret/go-tasks/models"
)

const (
	minPasswordLength = 6
	// bcrypt chỉ dùng 72 byte đầu
	maxPasswordBytes = 72
)

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, ".")
}

// validateRegistration kiểm tra toàn bộ các trường, không dừng ở lỗi đầu tiên
func validateRegistration(in models.RegisterInput) (models.RegisterInput, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	var fe apperrors.FieldErrors
	if !validEmail(in.Email) {
		fe.Add("email", "email must be a valid email address")
	}
	switch {
	case len(in.Password) < minPasswordLength:
		fe.Add("password", "password must be at least 6 characters")
	case len(in.Password) > maxPasswordBytes:
		fe.Add("password", "password must be at most 72 bytes")
	}
	if in.DisplayName == "" {
		fe.Add("username", "username is required")
	}
	return in, fe.Err()
}

func validateProfilePatch(p models.ProfilePatch) (models.ProfilePatch, error) {
	var fe apperrors.FieldErrors
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		if name == "" {
			fe.Add("username", "username must not be empty")
		}
		p.DisplayName = &name
	}
	if p.Address != nil {
		address := strings.TrimSpace(*p.Address)
		p.Address = &address
	}
	if p.PhoneNumber != nil {
		phone := strings.TrimSpace(*p.PhoneNumber)
		p.PhoneNumber = &phone
	}
	return p, fe.Err()
}

// validateNewTask trả về task đã chuẩn hóa (chưa có id/owner) hoặc ValidationError
func validateNewTask(in models.TaskInput) (models.Task, error) {
	var fe apperrors.FieldErrors
	task := models.Task{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      models.StatusNotStarted,
		Priority:    models.PriorityMedium,
	}

	if task.Name == "" {
		fe.Add("name", "name is required")
	}
	if strings.TrimSpace(in.DueDate) == "" {
		fe.Add("dueDate", "dueDate is required")
	} else if d, ok := models.ParseDueDate(in.DueDate); ok {
		task.DueDate = d
	} else {
		fe.Add("dueDate", "dueDate must be a valid date (YYYY-MM-DD)")
	}
	if in.Status != "" {
		if st, ok := models.ParseStatus(in.Status); ok {
			task.Status = st
		} else {
			fe.Add("status", "status must be one of not_started, in_progress, done")
		}
	}
	if in.Priority != "" {
		if p, ok := models.ParsePriority(in.Priority); ok {
			task.Priority = p
		} else {
			fe.Add("priority", "priority must be one of high, medium, low")
		}
	}

	if err := fe.Err(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func validateTaskPatch(p models.TaskPatch) (models.TaskChanges, error) {
	var fe apperrors.FieldErrors
	var ch models.TaskChanges

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			fe.Add("name", "name must not be empty")
		}
		ch.Name = &name
	}
	ch.Description = p.Description
	if p.DueDate != nil {
		if d, ok := models.ParseDueDate(*p.DueDate); ok {
			ch.DueDate = &d
		} else {
			fe.Add("dueDate", "dueDate must be a valid date (YYYY-MM-DD)")
		}
	}
	if p.Status != nil {
		if st, ok := models.ParseStatus(*p.Status); ok {
			ch.Status = &st
		} else {
			fe.Add("status", "status must be one of not_started, in_progress, done")
		}
	}
	if p.Priority != nil {
		if pr, ok := models.ParsePriority(*p.Priority); ok {
			ch.Priority = &pr
		} else {
			fe.Add("priority", "priority must be one of high, medium, low")
		}
	}

	if err := fe.Err(); err != nil {
		return models.TaskChanges{}, err
	}
	return ch, nil
}
