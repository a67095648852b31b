package models

import (
	"time"

	"gorm.io/gorm"
)

// DueDateBeforeCreationMessage is reported when a due date precedes the creation date.
const DueDateBeforeCreationMessage = "Due date cannot be earlier than the creation date."

type Task struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"type:varchar(250);not null" json:"title"`
	DueDate      *time.Time `gorm:"type:date" json:"due_date"`
	Description  *string    `gorm:"type:text" json:"description"`
	PriorityID   uint64     `gorm:"not null;index" json:"priority_id"`
	StatusID     uint64     `gorm:"not null;index" json:"status_id"`
	AssignedToID uint64     `gorm:"not null;index" json:"assigned_to_id"`
	CreatedByID  uint64     `gorm:"not null;index" json:"created_by_id"`
	UpdatedByID  uint64     `gorm:"not null;index" json:"updated_by_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Priority   Priority `gorm:"foreignKey:PriorityID;constraint:OnDelete:CASCADE" json:"priority,omitempty"`
	Status     Status   `gorm:"foreignKey:StatusID;constraint:OnDelete:CASCADE" json:"status,omitempty"`
	AssignedTo User     `gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE" json:"assigned_to,omitempty"`
	CreatedBy  User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"created_by,omitempty"`
	UpdatedBy  User     `gorm:"foreignKey:UpdatedByID;constraint:OnDelete:CASCADE" json:"updated_by,omitempty"`
}

// BeforeSave enforces that the due date does not precede the creation date.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Title == "" {
		return newValidationError("title", "This field is required.")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.DueDate != nil && DateBefore(*t.DueDate, t.CreatedAt) {
		return newValidationError("due_date", DueDateBeforeCreationMessage)
	}
	return nil
}

func (t Task) String() string {
	return t.Title
}

// DateBefore compares the calendar dates of a and b, ignoring clock and location.
func DateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// DateOf truncates a timestamp to midnight of its calendar date, keeping the location.
func DateOf(ts time.Time) time.Time {
	year, month, day := ts.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, ts.Location())
}
