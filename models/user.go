package models

import "time"

// User là bản ghi người dùng trong store
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"` // chỉ lưu mật khẩu đã được mã hóa (hashed)
	DisplayName  string    `json:"username" bson:"username"`
	Address      string    `json:"address" bson:"address"`
	PhoneNumber  string    `json:"phoneNumber" bson:"phone_number"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// PublicUser là phần thông tin người dùng được phép trả về client
type PublicUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"username"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Public bỏ password hash khỏi bản ghi
func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// RegisterInput là body của POST /auth/register
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"username"`
}

// LoginInput là body của POST /auth/login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfilePatch chỉ chứa các trường được gửi lên, nil nghĩa là giữ nguyên
type ProfilePatch struct {
	DisplayName *string `json:"username,omitempty"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// Empty trả về true khi patch không có trường nào
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.Address == nil && p.PhoneNumber == nil
}
