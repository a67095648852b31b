package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Correct-Horse-42"

// accountFixture wires the account stack against an in-memory database.
type accountFixture struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	hasher   *BcryptHasher
	registry *BackendRegistry
	manager  *UserManager
	tokens   *PasswordResetTokens
	mailer   *recordingMailer
	service  *AccountService
}

func newAccountFixture(t *testing.T, throttle LoginThrottle) *accountFixture {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	hasher := &BcryptHasher{Cost: bcrypt.MinCost}

	emailBackend, err := NewEmailBackend(userRepo, hasher)
	require.NoError(t, err)
	registry, err := NewBackendRegistry(emailBackend)
	require.NoError(t, err)

	manager := NewUserManager(userRepo, hasher, registry)
	tokens := NewPasswordResetTokens("test-secret", time.Hour)
	mailer := &recordingMailer{}

	service := NewAccountService(AccountDeps{
		UserRepo:   userRepo,
		Manager:    manager,
		References: NewReferenceGenerator(repository.NewReferenceRepository(db)),
		Registry:   registry,
		Tokens:     tokens,
		Mailer:     mailer,
		Throttle:   throttle,
		BaseURL:    "http://tasks.test/",
	})

	return &accountFixture{
		db:       db,
		userRepo: userRepo,
		hasher:   hasher,
		registry: registry,
		manager:  manager,
		tokens:   tokens,
		mailer:   mailer,
		service:  service,
	}
}

func (f *accountFixture) register(t *testing.T, email string) RegisterInput {
	t.Helper()

	input := RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password1: testPassword,
		Password2: testPassword,
	}
	_, err := f.service.Register(context.Background(), input)
	require.NoError(t, err)
	return input
}
