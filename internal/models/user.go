package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// UnusablePasswordPrefix marks a password hash that never verifies.
const UnusablePasswordPrefix = "!"

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        *string    `gorm:"type:varchar(150);uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    *string    `gorm:"type:varchar(100)" json:"first_name"`
	MiddleName   *string    `gorm:"type:varchar(100)" json:"middle_name"`
	LastName     *string    `gorm:"type:varchar(100)" json:"last_name"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	IsStaff      bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null;default:false" json:"is_superuser"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   time.Time  `gorm:"not null" json:"date_joined"`

	// Relations
	Permissions []Permission `gorm:"many2many:user_permissions;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeSave normalizes the email and stamps the join date on first save.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	if u.Email != nil {
		normalized := NormalizeEmail(*u.Email)
		if normalized == "" {
			u.Email = nil
		} else {
			u.Email = &normalized
		}
	}
	return nil
}

func (u User) String() string {
	return u.Username
}

// EmailAddress returns the email or an empty string.
func (u User) EmailAddress() string {
	return deref(u.Email)
}

// FirstNames returns the first and middle names as a single string.
func (u User) FirstNames() string {
	return joinNames(u.FirstName, u.MiddleName)
}

// FullNames returns first, middle and last name, skipping blanks.
func (u User) FullNames() string {
	return joinNames(u.FirstName, u.MiddleName, u.LastName)
}

func (u User) ShortName() string {
	return deref(u.FirstName)
}

// HasUsablePassword reports whether the stored hash can ever verify.
func (u User) HasUsablePassword() bool {
	return u.PasswordHash != "" && !strings.HasPrefix(u.PasswordHash, UnusablePasswordPrefix)
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func joinNames(names ...*string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if value := strings.TrimSpace(deref(name)); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// StringPtr returns nil for an empty string.
func StringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
