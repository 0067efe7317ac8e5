package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL là thời hạn của session token (7 ngày)
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims là nội dung của session token
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec ký và xác thực session token bằng HS256.
// Không giữ trạng thái thay đổi được nên dùng chung giữa các request.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec tạo codec với secret và thời hạn token
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock trả về bản sao dùng đồng hồ khác (dùng trong test)
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *tc
	cp.now = now
	return &cp
}

// Issue tạo token chứa user id và hạn dùng
func (tc *TokenCodec) Issue(userID string) (string, error) {
	now := tc.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify kiểm tra chữ ký và hạn dùng, trả về AuthError nếu không hợp lệ
func (tc *TokenCodec) Verify(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, apperrors.Unauthenticated("missing token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "token expired", err)
		}
		return Claims{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "invalid or expired token", err)
	}
	if claims.UserID == "" {
		return Claims{}, apperrors.Unauthenticated("invalid or expired token")
	}
	return claims, nil
}
