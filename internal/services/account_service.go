package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/utils"
	"gorm.io/gorm"
)

const (
	EmailTakenMessage       = "A user with that email address already exists."
	PasswordMismatchMessage = "The two password fields didn't match"
	WrongOldPasswordMessage = "Your old password was entered incorrectly. Please enter it again."
)

var (
	ErrTooManyAttempts  = errors.New("too many failed login attempts")
	ErrInvalidResetLink = errors.New("invalid password reset link")
)

// AccountService handles registration, login, profile and password flows.
type AccountService struct {
	userRepo   repository.UserRepository
	manager    *UserManager
	references *ReferenceGenerator
	registry   *BackendRegistry
	tokens     *PasswordResetTokens
	mailer     Mailer
	throttle   LoginThrottle
	baseURL    string
	now        func() time.Time
}

// AccountDeps groups the collaborators of AccountService.
type AccountDeps struct {
	UserRepo   repository.UserRepository
	Manager    *UserManager
	References *ReferenceGenerator
	Registry   *BackendRegistry
	Tokens     *PasswordResetTokens
	Mailer     Mailer
	Throttle   LoginThrottle
	BaseURL    string
}

// NewAccountService creates a new AccountService.
func NewAccountService(deps AccountDeps) *AccountService {
	throttle := deps.Throttle
	if throttle == nil {
		throttle = NoopThrottle{}
	}
	return &AccountService{
		userRepo:   deps.UserRepo,
		manager:    deps.Manager,
		references: deps.References,
		registry:   deps.Registry,
		tokens:     deps.Tokens,
		mailer:     deps.Mailer,
		throttle:   throttle,
		baseURL:    strings.TrimRight(deps.BaseURL, "/"),
		now:        time.Now,
	}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=150"`
	Password1  string `json:"password_1" validate:"required"`
	Password2  string `json:"password_2" validate:"required"`
}

// Register validates the form, generates a username and creates the account.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.MiddleName = strings.TrimSpace(input.MiddleName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)

	fieldErrors := utils.ValidateStruct(input)
	if fieldErrors == nil {
		fieldErrors = utils.FieldErrors{}
	}

	if _, bad := fieldErrors["email"]; !bad {
		taken, err := s.userRepo.EmailExists(ctx, models.NormalizeEmail(input.Email), 0)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			fieldErrors.Add("email", EmailTakenMessage)
		}
	}

	if input.Password1 != "" {
		for _, problem := range ValidatePassword(input.Password1, PasswordAttributes{
			Email:     input.Email,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		}) {
			fieldErrors.Add("password_1", problem)
		}
	}
	if input.Password1 != "" && input.Password2 != "" && input.Password1 != input.Password2 {
		fieldErrors.Add("password_2", PasswordMismatchMessage)
	}

	if fieldErrors.HasErrors() {
		return nil, fieldErrors
	}

	username, err := s.references.GenerateUsername(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.manager.CreateUser(ctx, username, input.Password1, UserFields{
		Email:      input.Email,
		FirstName:  input.FirstName,
		MiddleName: input.MiddleName,
		LastName:   input.LastName,
	})
	if errors.Is(err, ErrUserExists) {
		return nil, utils.FieldErrors{"email": {EmailTakenMessage}}
	}
	return user, err
}

// Login authenticates through the registered backends and stamps last_login.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	attemptKey := models.NormalizeEmail(email)
	allowed, err := s.throttle.Allowed(ctx, attemptKey)
	if err != nil {
		logrus.WithError(err).Warn("Login throttle unavailable")
	} else if !allowed {
		return nil, ErrTooManyAttempts
	}

	user, backend, err := s.registry.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) && email != "" {
			if recordErr := s.throttle.RecordFailure(ctx, attemptKey); recordErr != nil {
				logrus.WithError(recordErr).Warn("Failed to record login failure")
			}
		}
		return nil, err
	}

	if err := s.throttle.Reset(ctx, attemptKey); err != nil {
		logrus.WithError(err).Warn("Failed to reset login throttle")
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "backend": backend}).Info("User logged in")
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AccountService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return s.manager.GetUser(ctx, id)
}

// ProfileInput is the profile update form.
type ProfileInput struct {
	FirstName  string `json:"first_name" validate:"max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"max=100"`
	Email      string `json:"email" validate:"omitempty,email,max=150"`
}

// UpdateProfile overwrites the user's names and email.
func (s *AccountService) UpdateProfile(ctx context.Context, user *models.User, input ProfileInput) (*models.User, error) {
	input.Email = strings.TrimSpace(input.Email)

	fieldErrors := utils.ValidateStruct(input)
	if fieldErrors == nil {
		fieldErrors = utils.FieldErrors{}
	}
	if input.Email != "" {
		if _, bad := fieldErrors["email"]; !bad {
			taken, err := s.userRepo.EmailExists(ctx, models.NormalizeEmail(input.Email), user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				fieldErrors.Add("email", EmailTakenMessage)
			}
		}
	}
	if fieldErrors.HasErrors() {
		return nil, fieldErrors
	}

	user.FirstName = models.StringPtr(strings.TrimSpace(input.FirstName))
	user.MiddleName = models.StringPtr(strings.TrimSpace(input.MiddleName))
	user.LastName = models.StringPtr(strings.TrimSpace(input.LastName))
	user.Email = models.StringPtr(input.Email)

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.FieldErrors{"email": {EmailTakenMessage}}
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePasswordInput is the password change form.
type ChangePasswordInput struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

// ChangePassword verifies the old password and stores the new one.
func (s *AccountService) ChangePassword(ctx context.Context, user *models.User, input ChangePasswordInput) error {
	fieldErrors := utils.ValidateStruct(input)
	if fieldErrors == nil {
		fieldErrors = utils.FieldErrors{}
	}
	if input.OldPassword != "" && !s.manager.CheckPassword(user, input.OldPassword) {
		fieldErrors.Add("old_password", WrongOldPasswordMessage)
	}
	s.validateNewPassword(fieldErrors, user, input.NewPassword1, input.NewPassword2)
	if fieldErrors.HasErrors() {
		return fieldErrors
	}
	return s.setPassword(ctx, user, input.NewPassword1)
}

// RequestPasswordReset mails a reset link when email belongs to an active user
// with a usable password. Unknown emails succeed silently.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if fieldErrors := utils.ValidateStruct(struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: email}); fieldErrors != nil {
		return fieldErrors
	}

	user, err := s.userRepo.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive || !user.HasUsablePassword() {
		return nil
	}

	token, err := s.tokens.MakeToken(user)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	link := fmt.Sprintf("%s/password-reset-confirm/%s/%s/", s.baseURL, URLSafeID(user), token)
	return s.mailer.Send(ctx, Message{
		To:      user.EmailAddress(),
		Subject: "Password reset",
		Body:    fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password:\n%s\n", user.FullNames(), link),
	})
}

// SetPasswordInput is the form behind a reset link.
type SetPasswordInput struct {
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

// ResetPassword sets a new password for the user named by uidb64 when token is valid.
func (s *AccountService) ResetPassword(ctx context.Context, uidb64, token string, input SetPasswordInput) error {
	user, err := s.manager.GetUserFromURLSafeID(ctx, uidb64)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetLink
	}
	if err := s.tokens.CheckToken(user, token); err != nil {
		return ErrInvalidResetLink
	}

	fieldErrors := utils.ValidateStruct(input)
	if fieldErrors == nil {
		fieldErrors = utils.FieldErrors{}
	}
	s.validateNewPassword(fieldErrors, user, input.NewPassword1, input.NewPassword2)
	if fieldErrors.HasErrors() {
		return fieldErrors
	}
	return s.setPassword(ctx, user, input.NewPassword1)
}

func (s *AccountService) validateNewPassword(fieldErrors utils.FieldErrors, user *models.User, password1, password2 string) {
	if password1 != "" && password2 != "" && password1 != password2 {
		fieldErrors.Add("new_password2", PasswordMismatchMessage)
		return
	}
	if password2 == "" {
		return
	}
	for _, problem := range ValidatePassword(password2, AttributesOf(user)) {
		fieldErrors.Add("new_password2", problem)
	}
}

func (s *AccountService) setPassword(ctx context.Context, user *models.User, password string) error {
	passwordHash, err := s.manager.MakePassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
