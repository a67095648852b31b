package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/tasktrack/internal/models"
)

const passwordResetPurpose = "password_reset"

var (
	ErrResetTokenInvalid  = errors.New("invalid reset token")
	ErrResetTokenExpired  = errors.New("expired reset token")
	ErrResetTokenMismatch = errors.New("reset token does not match the account state")
)

// PasswordResetClaims binds a reset link to one user and their current password.
type PasswordResetClaims struct {
	UserID  uint64 `json:"uid"`
	Purpose string `json:"purpose"`
	State   string `json:"state"`
	jwt.RegisteredClaims
}

// PasswordResetTokens issues and checks reset tokens. A token stops working once
// the password or last login changes.
type PasswordResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewPasswordResetTokens(secret string, ttl time.Duration) *PasswordResetTokens {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &PasswordResetTokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// MakeToken signs a token for user.
func (t *PasswordResetTokens) MakeToken(user *models.User) (string, error) {
	now := t.now()
	claims := PasswordResetClaims{
		UserID:  user.ID,
		Purpose: passwordResetPurpose,
		State:   accountState(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// CheckToken verifies raw was issued for user in its current state.
func (t *PasswordResetTokens) CheckToken(user *models.User, raw string) error {
	if user == nil || strings.TrimSpace(raw) == "" {
		return ErrResetTokenInvalid
	}

	claims := &PasswordResetClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrResetTokenExpired
		}
		return ErrResetTokenInvalid
	}

	if claims.Purpose != passwordResetPurpose || claims.UserID != user.ID {
		return ErrResetTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(claims.State), []byte(accountState(user))) != 1 {
		return ErrResetTokenMismatch
	}
	return nil
}

func accountState(user *models.User) string {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.UTC().Truncate(time.Second).Format(time.RFC3339)
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{
		strconv.FormatUint(user.ID, 10),
		user.PasswordHash,
		lastLogin,
		user.EmailAddress(),
	}, "|")))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
