package utils

import "github.com/google/uuid"

// GenerateID tạo ID ngẫu nhiên (UUID v4) cho user và task
func GenerateID() string {
	return uuid.NewString()
}
