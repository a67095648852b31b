package dto

import (
	"time"

	"github.com/yukikurage/tasktrack/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	MiddleName  string     `json:"middle_name"`
	LastName    string     `json:"last_name"`
	FullNames   string     `json:"full_names"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	DateJoined  time.Time  `json:"date_joined"`
}

// UserChoiceDTO is an entry of an assignee select box
type UserChoiceDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FullNames string `json:"full_names"`
}

// ProfileDTO is the profile page view model
type ProfileDTO struct {
	User       UserDTO `json:"user"`
	IsEditable bool    `json:"is_editable"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.EmailAddress(),
		FirstName:   deref(user.FirstName),
		MiddleName:  deref(user.MiddleName),
		LastName:    deref(user.LastName),
		FullNames:   user.FullNames(),
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		LastLogin:   user.LastLogin,
		DateJoined:  user.DateJoined,
	}
}

func ToUserChoiceDTOs(users []models.User) []UserChoiceDTO {
	choices := make([]UserChoiceDTO, len(users))
	for i, user := range users {
		choices[i] = UserChoiceDTO{
			ID:        user.ID,
			Username:  user.Username,
			FullNames: user.FullNames(),
		}
	}
	return choices
}

// UserDisplay names user from the viewer's point of view.
func UserDisplay(user models.User, viewer *models.User) string {
	if viewer != nil && user.ID == viewer.ID {
		return "Me"
	}
	return user.FullNames()
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
