package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/tasktrack/internal/models"
	"github.com/yukikurage/tasktrack/internal/utils"
)

func requireFieldErrors(t *testing.T, err error) utils.FieldErrors {
	t.Helper()

	var fieldErrors utils.FieldErrors
	require.True(t, errors.As(err, &fieldErrors), "expected field errors, got %v", err)
	return fieldErrors
}

func TestRegister(t *testing.T) {
	f := newAccountFixture(t, nil)

	user, err := f.service.Register(context.Background(), RegisterInput{
		FirstName:  " Ada ",
		MiddleName: "King",
		LastName:   "Lovelace",
		Email:      "ada@EXAMPLE.com",
		Password1:  testPassword,
		Password2:  testPassword,
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^user-\d{6,}$`), user.Username)
	assert.Equal(t, "ada@example.com", user.EmailAddress())
	assert.Equal(t, "Ada King Lovelace", user.FullNames())
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.True(t, f.manager.CheckPassword(user, testPassword))
}

func TestRegister_UsernamesAreDistinct(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()

	f.register(t, "first@example.com")
	f.register(t, "second@example.com")

	first, err := f.userRepo.FindByEmail(ctx, "first@example.com")
	require.NoError(t, err)
	second, err := f.userRepo.FindByEmail(ctx, "second@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.Username, second.Username)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAccountFixture(t, nil)
	f.register(t, "ada@example.com")

	input := RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "ADA@example.com",
		Password1: testPassword,
		Password2: testPassword,
	}
	_, err := f.service.Register(context.Background(), input)

	assert.Equal(t, []string{EmailTakenMessage}, requireFieldErrors(t, err)["email"])
}

func TestRegister_PasswordMismatch(t *testing.T) {
	f := newAccountFixture(t, nil)

	_, err := f.service.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password1: testPassword,
		Password2: testPassword + "!",
	})

	assert.Equal(t, []string{PasswordMismatchMessage}, requireFieldErrors(t, err)["password_2"])

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newAccountFixture(t, nil)

	_, err := f.service.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password1: "1234",
		Password2: "1234",
	})

	problems := requireFieldErrors(t, err)["password_1"]
	assert.Len(t, problems, 2)
	assert.Contains(t, problems, "This password is entirely numeric.")
}

func TestRegister_MissingFields(t *testing.T) {
	f := newAccountFixture(t, nil)

	_, err := f.service.Register(context.Background(), RegisterInput{Email: "not-an-email"})

	fieldErrors := requireFieldErrors(t, err)
	for _, field := range []string{"first_name", "last_name", "email", "password_1", "password_2"} {
		assert.Contains(t, fieldErrors, field)
	}
}

func TestLogin(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")

	user, err := f.service.Login(ctx, "ada@example.com", testPassword)
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)

	stored, err := f.userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, err = f.service.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")
	require.NoError(t, f.db.Model(&models.User{}).Where("email = ?", "ada@example.com").UpdateColumn("is_active", false).Error)

	_, err := f.service.Login(ctx, "ada@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// lockedThrottle blocks once failures reaches limit.
type lockedThrottle struct {
	limit    int
	failures map[string]int
}

func (l *lockedThrottle) Allowed(_ context.Context, key string) (bool, error) {
	return l.failures[strings.ToLower(key)] < l.limit, nil
}

func (l *lockedThrottle) RecordFailure(_ context.Context, key string) error {
	l.failures[strings.ToLower(key)]++
	return nil
}

func (l *lockedThrottle) Reset(_ context.Context, key string) error {
	delete(l.failures, strings.ToLower(key))
	return nil
}

func TestLogin_Throttled(t *testing.T) {
	throttle := &lockedThrottle{limit: 2, failures: map[string]int{}}
	f := newAccountFixture(t, throttle)
	ctx := context.Background()
	f.register(t, "ada@example.com")

	for i := 0; i < 2; i++ {
		_, err := f.service.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.service.Login(ctx, "ada@example.com", testPassword)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	throttle := &lockedThrottle{limit: 3, failures: map[string]int{}}
	f := newAccountFixture(t, throttle)
	ctx := context.Background()
	f.register(t, "ada@example.com")

	_, err := f.service.Login(ctx, "ada@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.service.Login(ctx, "ada@example.com", testPassword)
	require.NoError(t, err)

	assert.Zero(t, throttle.failures["ada@example.com"])
}

func TestUpdateProfile(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")
	f.register(t, "grace@example.com")

	user, err := f.userRepo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = f.service.UpdateProfile(ctx, user, ProfileInput{FirstName: "Ada", Email: "Grace@example.com"})
	assert.Equal(t, []string{EmailTakenMessage}, requireFieldErrors(t, err)["email"])

	updated, err := f.service.UpdateProfile(ctx, user, ProfileInput{
		FirstName: "Augusta",
		LastName:  "King",
		Email:     "augusta@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", updated.FullNames())

	stored, err := f.userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "augusta@example.com", stored.EmailAddress())
	assert.Nil(t, stored.MiddleName)
}

func TestUpdateProfile_KeepsOwnEmail(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")

	user, err := f.userRepo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = f.service.UpdateProfile(ctx, user, ProfileInput{FirstName: "Ada", Email: "ada@example.com"})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")

	user, err := f.userRepo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	err = f.service.ChangePassword(ctx, user, ChangePasswordInput{
		OldPassword:  "not-my-password",
		NewPassword1: "Brand-New-Secret-7",
		NewPassword2: "Brand-New-Secret-7",
	})
	assert.Equal(t, []string{WrongOldPasswordMessage}, requireFieldErrors(t, err)["old_password"])

	err = f.service.ChangePassword(ctx, user, ChangePasswordInput{
		OldPassword:  testPassword,
		NewPassword1: "Brand-New-Secret-7",
		NewPassword2: "Brand-New-Secret-8",
	})
	assert.Equal(t, []string{PasswordMismatchMessage}, requireFieldErrors(t, err)["new_password2"])

	require.NoError(t, f.service.ChangePassword(ctx, user, ChangePasswordInput{
		OldPassword:  testPassword,
		NewPassword1: "Brand-New-Secret-7",
		NewPassword2: "Brand-New-Secret-7",
	}))

	_, err = f.service.Login(ctx, "ada@example.com", "Brand-New-Secret-7")
	assert.NoError(t, err)
	_, err = f.service.Login(ctx, "ada@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

var resetLinkPattern = regexp.MustCompile(`http://tasks\.test/password-reset-confirm/([^/]+)/([^/]+)/`)

func requestResetLink(t *testing.T, f *accountFixture, email string) (string, string) {
	t.Helper()

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), email))
	require.NotEmpty(t, f.mailer.sent)

	last := f.mailer.sent[len(f.mailer.sent)-1]
	match := resetLinkPattern.FindStringSubmatch(last.Body)
	require.Len(t, match, 3, last.Body)
	return match[1], match[2]
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")

	uid, token := requestResetLink(t, f, "ada@example.com")
	assert.Equal(t, "ada@example.com", f.mailer.sent[0].To)

	newPassword := SetPasswordInput{NewPassword1: "Reset-Secret-99", NewPassword2: "Reset-Secret-99"}
	require.NoError(t, f.service.ResetPassword(ctx, uid, token, newPassword))

	_, err := f.service.Login(ctx, "ada@example.com", "Reset-Secret-99")
	require.NoError(t, err)

	// The password changed, so the same link no longer works.
	err = f.service.ResetPassword(ctx, uid, token, SetPasswordInput{NewPassword1: "Another-Secret-1", NewPassword2: "Another-Secret-1"})
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := newAccountFixture(t, nil)

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, f.mailer.sent)
}

func TestPasswordReset_InvalidEmail(t *testing.T) {
	f := newAccountFixture(t, nil)

	err := f.service.RequestPasswordReset(context.Background(), "not-an-email")
	assert.Contains(t, requireFieldErrors(t, err), "email")
}

func TestPasswordReset_BadLink(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")
	uid, token := requestResetLink(t, f, "ada@example.com")
	input := SetPasswordInput{NewPassword1: "Reset-Secret-99", NewPassword2: "Reset-Secret-99"}

	assert.ErrorIs(t, f.service.ResetPassword(ctx, "@@@", token, input), ErrInvalidResetLink)
	assert.ErrorIs(t, f.service.ResetPassword(ctx, uid, token+"x", input), ErrInvalidResetLink)
	assert.ErrorIs(t, f.service.ResetPassword(ctx, uid, "", input), ErrInvalidResetLink)
}

func TestPasswordReset_MismatchKeepsLinkUsable(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()
	f.register(t, "ada@example.com")
	uid, token := requestResetLink(t, f, "ada@example.com")

	err := f.service.ResetPassword(ctx, uid, token, SetPasswordInput{NewPassword1: "Reset-Secret-99", NewPassword2: "Reset-Secret-98"})
	assert.Equal(t, []string{PasswordMismatchMessage}, requireFieldErrors(t, err)["new_password2"])

	assert.NoError(t, f.service.ResetPassword(ctx, uid, token, SetPasswordInput{NewPassword1: "Reset-Secret-99", NewPassword2: "Reset-Secret-99"}))
}
