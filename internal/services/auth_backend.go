package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/utils"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthBackend is a named strategy held by the BackendRegistry.
type AuthBackend interface {
	Name() string
}

// Authenticator is an AuthBackend that can verify credentials.
type Authenticator interface {
	AuthBackend
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
}

// PermissionBackend is an AuthBackend that can answer permission queries.
type PermissionBackend interface {
	AuthBackend
	WithPerm(ctx context.Context, perm string, isActive, includeSuperusers bool) ([]models.User, error)
	HasPerm(ctx context.Context, user *models.User, perm string) (bool, error)
}

// CanAuthenticate rejects inactive users.
func CanAuthenticate(user *models.User) bool {
	return user != nil && user.IsActive
}

// permissionLookup answers permission queries from the user_permissions table.
type permissionLookup struct {
	userRepo repository.UserRepository
}

func (p permissionLookup) WithPerm(ctx context.Context, perm string, isActive, includeSuperusers bool) ([]models.User, error) {
	users, err := p.userRepo.ListWithPermission(ctx, codename(perm), isActive, includeSuperusers)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with permission: %w", err)
	}
	return users, nil
}

func (p permissionLookup) HasPerm(ctx context.Context, user *models.User, perm string) (bool, error) {
	if !CanAuthenticate(user) {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}
	return p.userRepo.HasPermission(ctx, user.ID, codename(perm))
}

// codename drops an optional "app." label from a permission name.
func codename(perm string) string {
	return perm[strings.LastIndex(perm, ".")+1:]
}

// credentialCheck verifies passwords and burns one hash comparison on misses.
type credentialCheck struct {
	hasher    PasswordHasher
	dummyHash []byte
}

func newCredentialCheck(hasher PasswordHasher) (credentialCheck, error) {
	secret, err := utils.GenerateSecret(16)
	if err != nil {
		return credentialCheck{}, err
	}
	dummyHash, err := hasher.Hash([]byte(secret))
	if err != nil {
		return credentialCheck{}, fmt.Errorf("failed to hash dummy password: %w", err)
	}
	return credentialCheck{hasher: hasher, dummyHash: dummyHash}, nil
}

func (c credentialCheck) burn(password string) {
	_ = c.hasher.Compare(c.dummyHash, []byte(password))
}

func (c credentialCheck) verify(user *models.User, password string) bool {
	if !user.HasUsablePassword() {
		c.burn(password)
		return false
	}
	return c.hasher.Compare([]byte(user.PasswordHash), []byte(password)) == nil
}

// resolve applies the shared accept/reject rules to a lookup result.
func (c credentialCheck) resolve(user *models.User, err error, password string) (*models.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.burn(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	passwordOK := c.verify(user, password)
	if !passwordOK || !CanAuthenticate(user) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EmailBackend authenticates users by email address.
type EmailBackend struct {
	permissionLookup
	check    credentialCheck
	userRepo repository.UserRepository
}

// NewEmailBackend creates a new EmailBackend
func NewEmailBackend(userRepo repository.UserRepository, hasher PasswordHasher) (*EmailBackend, error) {
	check, err := newCredentialCheck(hasher)
	if err != nil {
		return nil, err
	}
	return &EmailBackend{
		permissionLookup: permissionLookup{userRepo: userRepo},
		check:            check,
		userRepo:         userRepo,
	}, nil
}

func (b *EmailBackend) Name() string {
	return "email"
}

// Authenticate returns the active user owning email whose password matches.
// Blank input is rejected before any lookup.
func (b *EmailBackend) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := b.userRepo.FindByEmail(ctx, models.NormalizeEmail(email))
	return b.check.resolve(user, err, password)
}

// ModelBackend authenticates users by their generated username.
type ModelBackend struct {
	permissionLookup
	check    credentialCheck
	userRepo repository.UserRepository
}

// NewModelBackend creates a new ModelBackend
func NewModelBackend(userRepo repository.UserRepository, hasher PasswordHasher) (*ModelBackend, error) {
	check, err := newCredentialCheck(hasher)
	if err != nil {
		return nil, err
	}
	return &ModelBackend{
		permissionLookup: permissionLookup{userRepo: userRepo},
		check:            check,
		userRepo:         userRepo,
	}, nil
}

func (b *ModelBackend) Name() string {
	return "model"
}

func (b *ModelBackend) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := b.userRepo.FindByUsername(ctx, username)
	return b.check.resolve(user, err, password)
}
