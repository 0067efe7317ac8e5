// Package apperrors định nghĩa các lỗi nghiệp vụ và cách ánh xạ chúng sang HTTP status.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind là nhóm lỗi mà client nhìn thấy
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindAuth       Kind = "AuthError"
	KindConflict   Kind = "ConflictError"
	KindNotFound   Kind = "NotFoundError"
	KindInternal   Kind = "InternalError"
)

// Code là mã lỗi cụ thể, ổn định để client xử lý
type Code string

const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeTaskNotFound       Code = "TASK_NOT_FOUND"
	CodeInternal           Code = "INTERNAL"
)

// Kind trả về nhóm lỗi của code
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidInput:
		return KindValidation
	case CodeInvalidCredentials, CodeUnauthenticated:
		return KindAuth
	case CodeEmailTaken:
		return KindConflict
	case CodeUserNotFound, CodeTaskNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}

// HTTPStatus ánh xạ code sang HTTP status.
// Sai thông tin đăng nhập và trùng email trả 400 giống backend cũ.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput, CodeInvalidCredentials, CodeEmailTaken:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUserNotFound, CodeTaskNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError mô tả một trường không hợp lệ
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error là lỗi nghiệp vụ có code
type Error struct {
	Code    Code
	Message string       // thông điệp trả về client
	Fields  []FieldError // chỉ có với CodeInvalidInput
	Cause   error        // lỗi gốc, chỉ dùng để ghi log
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is so khớp theo code
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Kind trả về nhóm lỗi
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

// New tạo lỗi với code và message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap tạo lỗi bọc một lỗi gốc
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation tạo lỗi chứa toàn bộ các trường không hợp lệ
func Validation(fields []FieldError) *Error {
	return &Error{Code: CodeInvalidInput, Message: "validation failed", Fields: fields}
}

// Internal bọc lỗi store/hệ thống với message chung
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal server error", cause)
}

// InvalidCredentials dùng chung cho email không tồn tại và sai mật khẩu
func InvalidCredentials() *Error {
	return New(CodeInvalidCredentials, "invalid credentials")
}

// Unauthenticated dùng cho token thiếu, sai định dạng hoặc hết hạn
func Unauthenticated(message string) *Error {
	return New(CodeUnauthenticated, message)
}

// From trả về *Error trong chuỗi lỗi, lỗi lạ được coi là InternalError
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// KindOf trả về nhóm lỗi của err
func KindOf(err error) Kind {
	return From(err).Kind()
}

// Is kiểm tra err có code đã cho
func Is(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// FieldErrors gom lỗi theo từng trường, giữ thứ tự thêm vào
type FieldErrors []FieldError

// Add thêm một lỗi trường
func (fe *FieldErrors) Add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

// Err trả về nil nếu không có lỗi, ngược lại là một ValidationError
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return Validation(fe)
}
