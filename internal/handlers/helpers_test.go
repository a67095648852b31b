package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/middleware"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Correct-Horse-42"

type outbox struct {
	messages []services.Message
}

func (o *outbox) Send(_ context.Context, msg services.Message) error {
	o.messages = append(o.messages, msg)
	return nil
}

// testApp is the full router over an in-memory database with a cookie session store.
type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	manager *services.UserManager
	outbox  *outbox
	users   int
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	hasher := &services.BcryptHasher{Cost: bcrypt.MinCost}

	emailBackend, err := services.NewEmailBackend(userRepo, hasher)
	require.NoError(t, err)
	registry, err := services.NewBackendRegistry(emailBackend)
	require.NoError(t, err)
	manager := services.NewUserManager(userRepo, hasher, registry)
	mail := &outbox{}

	accountService := services.NewAccountService(services.AccountDeps{
		UserRepo:   userRepo,
		Manager:    manager,
		References: services.NewReferenceGenerator(repository.NewReferenceRepository(db)),
		Registry:   registry,
		Tokens:     services.NewPasswordResetTokens("test-secret", time.Hour),
		Mailer:     mail,
		BaseURL:    "http://tasks.test",
	})
	taskService := services.NewTaskService(taskRepo, repository.NewLookupRepository(db), userRepo, nil)
	dashboardService := services.NewDashboardService(taskRepo, time.UTC)

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(quiet))
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, Routes{
		Auth:        NewAuthHandler(accountService),
		Tasks:       NewTaskHandler(taskService, dashboardService),
		TaskService: taskService,
		UserRepo:    userRepo,
	})

	return &testApp{db: db, router: r, manager: manager, outbox: mail}
}

func (a *testApp) createUser(t *testing.T, email string, superuser bool) *models.User {
	t.Helper()

	a.users++
	username := services.FormatReference(constants.UsernamePrefix, uint64(a.users))
	fields := services.UserFields{Email: email, FirstName: "Test", LastName: fmt.Sprintf("User%d", a.users)}

	var (
		user *models.User
		err  error
	)
	if superuser {
		user, err = a.manager.CreateSuperuser(context.Background(), username, testPassword, fields)
	} else {
		user, err = a.manager.CreateUser(context.Background(), username, testPassword, fields)
	}
	require.NoError(t, err)
	return user
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login posts the credentials and returns the session cookies.
func (a *testApp) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := a.do(t, http.MethodPost, "/login/", map[string]string{"email": email, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
