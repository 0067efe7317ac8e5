package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotLoggedIn được trả về khi chưa có token; giao diện nên chuyển về màn hình đăng nhập
var ErrNotLoggedIn = errors.New("not logged in")

// Error là phản hồi lỗi từ server
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Unauthorized báo token không còn hợp lệ
func (e *Error) Unauthorized() bool {
	return e.Status == 401
}

// IsUnauthorized kiểm tra err có phải lỗi 401 hoặc ErrNotLoggedIn không
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotLoggedIn) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

type errorPayload struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	} `json:"errors"`
}

// decodeError lấy thông điệp theo thứ tự: danh sách lỗi từng trường, "error", "message", fallback
func decodeError(status int, body []byte, fallback string) *Error {
	apiErr := &Error{Status: status, Message: fallback}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	apiErr.Code = payload.Code

	var msgs []string
	for _, fe := range payload.Errors {
		msg := fe.Message
		if msg == "" {
			msg = fe.Msg
		}
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}

	switch {
	case len(msgs) > 0:
		apiErr.Message = strings.Join(msgs, ", ")
	case payload.Error != "":
		apiErr.Message = payload.Error
	case payload.Message != "":
		apiErr.Message = payload.Message
	}
	return apiErr
}
