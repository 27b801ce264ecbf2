// Package models holds the server-side note record.
package models

import "time"

// Note is a stored note. Timestamps are UTC with second precision.
type Note struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
