package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired           = &models.ValidationError{Field: "username", Message: "The given username must be set."}
	ErrSuperuserRequiresStaff     = &models.ValidationError{Field: "is_staff", Message: "Superuser must have is_staff=True."}
	ErrSuperuserRequiresSuperuser = &models.ValidationError{Field: "is_superuser", Message: "Superuser must have is_superuser=True."}
	ErrUserExists                 = errors.New("a user with that username or email already exists")
	ErrFailedToHashPassword       = errors.New("failed to hash password")
	ErrUserNotFound               = errors.New("user not found")
)

// UserFields carries the optional columns of a new user. Nil flags take the manager's defaults.
type UserFields struct {
	Email       string
	FirstName   string
	MiddleName  string
	LastName    string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// Bool returns a pointer to v, for UserFields flags.
func Bool(v bool) *bool {
	return &v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// UserManager creates and looks up users.
type UserManager struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	registry *BackendRegistry
}

// NewUserManager creates a new UserManager
func NewUserManager(userRepo repository.UserRepository, hasher PasswordHasher, registry *BackendRegistry) *UserManager {
	return &UserManager{
		userRepo: userRepo,
		hasher:   hasher,
		registry: registry,
	}
}

// CreateUser persists a regular user. An empty password stores an unusable hash.
func (m *UserManager) CreateUser(ctx context.Context, username, password string, fields UserFields) (*models.User, error) {
	fields.IsStaff = Bool(boolOr(fields.IsStaff, false))
	fields.IsSuperuser = Bool(boolOr(fields.IsSuperuser, false))
	return m.create(ctx, username, password, fields)
}

// CreateSuperuser persists a user with both elevation flags set. Passing either flag as false fails.
func (m *UserManager) CreateSuperuser(ctx context.Context, username, password string, fields UserFields) (*models.User, error) {
	if !boolOr(fields.IsStaff, true) {
		return nil, ErrSuperuserRequiresStaff
	}
	if !boolOr(fields.IsSuperuser, true) {
		return nil, ErrSuperuserRequiresSuperuser
	}
	fields.IsStaff = Bool(true)
	fields.IsSuperuser = Bool(true)
	return m.create(ctx, username, password, fields)
}

func (m *UserManager) create(ctx context.Context, username, password string, fields UserFields) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrUsernameRequired
	}

	passwordHash, err := m.MakePassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        models.StringPtr(strings.TrimSpace(fields.Email)),
		PasswordHash: passwordHash,
		FirstName:    models.StringPtr(fields.FirstName),
		MiddleName:   models.StringPtr(fields.MiddleName),
		LastName:     models.StringPtr(fields.LastName),
		IsActive:     boolOr(fields.IsActive, true),
		IsStaff:      *fields.IsStaff,
		IsSuperuser:  *fields.IsSuperuser,
	}

	if err := m.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// MakePassword hashes password, or returns an unusable marker when it is empty.
func (m *UserManager) MakePassword(password string) (string, error) {
	if password == "" {
		secret, err := utils.GenerateSecret(20)
		if err != nil {
			return "", ErrFailedToHashPassword
		}
		return models.UnusablePasswordPrefix + secret, nil
	}

	hashed, err := m.hasher.Hash([]byte(password))
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the user's stored hash.
func (m *UserManager) CheckPassword(user *models.User, password string) bool {
	if !user.HasUsablePassword() || password == "" {
		return false
	}
	return m.hasher.Compare([]byte(user.PasswordHash), []byte(password)) == nil
}

// GetUser retrieves a user by ID.
func (m *UserManager) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := m.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// URLSafeID encodes the user's primary key for use in links.
func URLSafeID(user *models.User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(user.ID, 10)))
}

// GetUserFromURLSafeID decodes an id produced by URLSafeID. Malformed input and
// unknown ids yield a nil user and no error.
func (m *UserManager) GetUserFromURLSafeID(ctx context.Context, encoded string) (*models.User, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, nil
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return nil, nil
	}

	user, err := m.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

type withPermOptions struct {
	isActive          bool
	includeSuperusers bool
	backend           *string
}

// WithPermOption configures WithPerm.
type WithPermOption func(*withPermOptions)

// IsActive limits WithPerm to active (true) or inactive (false) users. Defaults to true.
func IsActive(v bool) WithPermOption {
	return func(o *withPermOptions) { o.isActive = v }
}

// IncludeSuperusers adds superusers to the WithPerm result. Defaults to true.
func IncludeSuperusers(v bool) WithPermOption {
	return func(o *withPermOptions) { o.includeSuperusers = v }
}

// Backend names the registered backend that answers WithPerm.
func Backend(name string) WithPermOption {
	return func(o *withPermOptions) { o.backend = &name }
}

// WithPerm lists users holding perm. Without a Backend option exactly one backend
// must be registered. A backend that cannot answer permission queries yields no users.
func (m *UserManager) WithPerm(ctx context.Context, perm string, opts ...WithPermOption) ([]models.User, error) {
	options := withPermOptions{isActive: true, includeSuperusers: true}
	for _, opt := range opts {
		opt(&options)
	}

	var (
		backend AuthBackend
		err     error
	)
	if options.backend == nil {
		backend, err = m.registry.Default()
	} else {
		backend, err = m.registry.Resolve(*options.backend)
	}
	if err != nil {
		logrus.WithError(err).WithField("perm", perm).Error("Cannot resolve permission backend")
		return nil, err
	}

	permissionBackend, ok := backend.(PermissionBackend)
	if !ok {
		return []models.User{}, nil
	}
	return permissionBackend.WithPerm(ctx, perm, options.isActive, options.includeSuperusers)
}
