package models

import (
	"time"

	"gorm.io/gorm"
)

type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "LOW"
	PriorityMedium   PriorityLevel = "MEDIUM"
	PriorityHigh     PriorityLevel = "HIGH"
	PriorityCritical PriorityLevel = "CRITICAL"
)

// PriorityLevels lists the priority vocabulary in display order.
var PriorityLevels = []PriorityLevel{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p PriorityLevel) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return string(p)
}

func (p PriorityLevel) Colour() string {
	switch p {
	case PriorityLow:
		return "warning"
	case PriorityMedium:
		return "info"
	case PriorityHigh:
		return "success"
	case PriorityCritical:
		return "danger"
	}
	return ""
}

func (p PriorityLevel) Valid() bool {
	for _, level := range PriorityLevels {
		if p == level {
			return true
		}
	}
	return false
}

type StatusType string

const (
	StatusPending    StatusType = "PENDING"
	StatusInProgress StatusType = "IN_PROGRESS"
	StatusCompleted  StatusType = "COMPLETED"
	StatusCancelled  StatusType = "CANCELLED"
)

// StatusTypes lists the status vocabulary in display order.
var StatusTypes = []StatusType{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

func (s StatusType) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

func (s StatusType) Colour() string {
	switch s {
	case StatusPending:
		return "warning"
	case StatusInProgress:
		return "info"
	case StatusCompleted:
		return "success"
	case StatusCancelled:
		return "danger"
	}
	return ""
}

func (s StatusType) Valid() bool {
	for _, status := range StatusTypes {
		if s == status {
			return true
		}
	}
	return false
}

type Priority struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        PriorityLevel `gorm:"type:varchar(50);uniqueIndex;not null;default:'LOW'" json:"name"`
	Description *string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
}

// BeforeSave rejects names outside the vocabulary and names already in use.
func (p *Priority) BeforeSave(tx *gorm.DB) error {
	if p.Name == "" {
		p.Name = PriorityLow
	}
	if !p.Name.Valid() {
		return newValidationError("name", "Select a valid choice.")
	}

	var count int64
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Priority{}).
		Where("name = ? AND id <> ?", p.Name, p.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("name", "A priority with this name already exists.")
	}
	return nil
}

func (p Priority) String() string {
	return string(p.Name)
}

type Status struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        StatusType `gorm:"type:varchar(50);uniqueIndex;not null;default:'PENDING'" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName keeps the plural used by the rest of the schema.
func (Status) TableName() string {
	return "statuses"
}

// BeforeSave rejects names outside the vocabulary and names already in use.
func (s *Status) BeforeSave(tx *gorm.DB) error {
	if s.Name == "" {
		s.Name = StatusPending
	}
	if !s.Name.Valid() {
		return newValidationError("name", "Select a valid choice.")
	}

	var count int64
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Status{}).
		Where("name = ? AND id <> ?", s.Name, s.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("name", "A status with this name already exists.")
	}
	return nil
}

func (s Status) String() string {
	return string(s.Name)
}
