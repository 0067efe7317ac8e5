// Package services chứa nghiệp vụ xác thực và quản lý task.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/biosecret/go-tasks/database"
	"github.com/biosecret/go-tasks/models"
	"github.com/biosecret/go-tasks/utils"
)

// LoginResult là kết quả đăng nhập thành công
type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// AuthService đăng ký, đăng nhập và quản lý hồ sơ người dùng
type AuthService struct {
	store        database.Store
	tokens       *utils.TokenCodec
	passwordCost int
	now          func() time.Time
	// hash giả để email không tồn tại cũng tốn thời gian so khớp như sai mật khẩu
	dummyHash func() string
}

// NewAuthService tạo AuthService, cost = 0 dùng utils.DefaultPasswordCost
func NewAuthService(store database.Store, tokens *utils.TokenCodec, passwordCost int) *AuthService {
	if passwordCost == 0 {
		passwordCost = utils.DefaultPasswordCost
	}
	return &AuthService{
		store:        store,
		tokens:       tokens,
		passwordCost: passwordCost,
		now:          time.Now,
		dummyHash: sync.OnceValue(func() string {
			hash, _ := utils.HashPassword("not-a-real-password", passwordCost)
			return hash
		}),
	}
}

// Register tạo user mới, trùng email trả về ConflictError
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (models.PublicUser, error) {
	in, err := validateRegistration(in)
	if err != nil {
		return models.PublicUser{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.passwordCost)
	if err != nil {
		return models.PublicUser{}, apperrors.Internal(err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := models.User{
		ID:           utils.GenerateID(),
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return models.PublicUser{}, apperrors.New(apperrors.CodeEmailTaken, "email already registered")
		}
		return models.PublicUser{}, apperrors.Internal(err)
	}
	return user.Public(), nil
}

// Login trả về cùng một lỗi cho email không tồn tại và sai mật khẩu
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(in.Email))
	switch {
	case errors.Is(err, database.ErrNotFound):
		_ = utils.CheckPassword(s.dummyHash(), in.Password)
		return LoginResult{}, apperrors.InvalidCredentials()
	case err != nil:
		return LoginResult{}, apperrors.Internal(err)
	}

	if err := utils.CheckPassword(user.PasswordHash, in.Password); err != nil {
		return LoginResult{}, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, apperrors.Internal(err)
	}
	return LoginResult{Token: token, User: user.Public()}, nil
}

// VerifyToken trả về user id trong token, không truy cập store
func (s *AuthService) VerifyToken(token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ResolveCurrentUser xác thực token rồi tải hồ sơ của user trong token
func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (models.PublicUser, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return models.PublicUser{}, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, userError(err)
	}
	return user.Public(), nil
}

// UpdateProfile chỉ cập nhật username, address, phoneNumber có trong patch
func (s *AuthService) UpdateProfile(ctx context.Context, token string, patch models.ProfilePatch) (models.PublicUser, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return models.PublicUser{}, err
	}

	patch, err = validateProfilePatch(patch)
	if err != nil {
		return models.PublicUser{}, err
	}
	if patch.Empty() {
		user, err := s.store.GetUserByID(ctx, userID)
		if err != nil {
			return models.PublicUser{}, userError(err)
		}
		return user.Public(), nil
	}

	user, err := s.store.UpdateUserProfile(ctx, userID, patch, s.now().UTC())
	if err != nil {
		return models.PublicUser{}, userError(err)
	}
	return user.Public(), nil
}

func userError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.New(apperrors.CodeUserNotFound, "user not found")
	}
	return apperrors.Internal(err)
}
