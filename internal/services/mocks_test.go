package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yukikurage/tasktrack/internal/models"
)

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUserRepository) ListWithPermission(ctx context.Context, codename string, isActive bool, includeSuperusers bool) ([]models.User, error) {
	args := m.Called(ctx, codename, isActive, includeSuperusers)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUserRepository) HasPermission(ctx context.Context, userID uint64, codename string) (bool, error) {
	args := m.Called(ctx, userID, codename)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) GrantPermission(ctx context.Context, userID uint64, codename string) error {
	return m.Called(ctx, userID, codename).Error(0)
}

type mockPasswordHasher struct{ mock.Mock }

func (m *mockPasswordHasher) Hash(p []byte) ([]byte, error) {
	args := m.Called(p)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockPasswordHasher) Compare(stored, supplied []byte) error {
	return m.Called(stored, supplied).Error(0)
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	sent []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

// namedBackend supports neither authentication nor permission queries.
type namedBackend string

func (b namedBackend) Name() string { return string(b) }
