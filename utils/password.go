package utils

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost giống số vòng salt của backend cũ
const DefaultPasswordCost = 10

// HashPassword băm mật khẩu bằng bcrypt
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultPasswordCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword trả về nil nếu mật khẩu khớp với hash
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
