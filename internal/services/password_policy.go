package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/models"
)

// PasswordAttributes are the personal values a password must not resemble.
type PasswordAttributes struct {
	Email     string
	FirstName string
	LastName  string
}

// AttributesOf collects the personal values of an existing user.
func AttributesOf(user *models.User) PasswordAttributes {
	if user == nil {
		return PasswordAttributes{}
	}
	return PasswordAttributes{
		Email:     user.EmailAddress(),
		FirstName: user.ShortName(),
		LastName:  derefString(user.LastName),
	}
}

// ValidatePassword returns the reasons password is rejected, or nil.
func ValidatePassword(password string, attrs PasswordAttributes) []string {
	var problems []string

	if similar := similarAttribute(password, attrs); similar != "" {
		problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", similar))
	}
	if len([]rune(password)) < constants.MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", constants.MinPasswordLength))
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

func similarAttribute(password string, attrs PasswordAttributes) string {
	lowered := strings.ToLower(password)
	if len(lowered) < 3 {
		return ""
	}

	local := attrs.Email
	if at := strings.LastIndex(local, "@"); at >= 0 {
		local = local[:at]
	}

	candidates := []struct {
		label string
		value string
	}{
		{"email address", local},
		{"first name", attrs.FirstName},
		{"last name", attrs.LastName},
	}
	for _, candidate := range candidates {
		value := strings.ToLower(strings.TrimSpace(candidate.value))
		if len(value) < 3 {
			continue
		}
		if strings.Contains(lowered, value) || strings.Contains(value, lowered) {
			return candidate.label
		}
	}
	return ""
}

func isNumeric(value string) bool {
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
