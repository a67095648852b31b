package models

import "time"

// Reference is an append-only counter row used to mint unique identifiers.
type Reference struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
