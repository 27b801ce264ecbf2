// Package models defines the note shapes shared by the gateway, the cache and
// the editor.
package models

import (
	"strings"
	"time"
)

// Note is a note as the remote store knows it. A note with an empty ID has
// never been persisted.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt *int64 `json:"created_at,omitempty"`
	UpdatedAt *int64 `json:"updated_at,omitempty"`
}

// IsNew reports whether the note has no store-assigned id yet.
func (n Note) IsNew() bool {
	return n.ID == ""
}

// Clone returns a deep copy, so timestamp pointers are not shared.
func (n Note) Clone() Note {
	c := n
	if n.CreatedAt != nil {
		v := *n.CreatedAt
		c.CreatedAt = &v
	}
	if n.UpdatedAt != nil {
		v := *n.UpdatedAt
		c.UpdatedAt = &v
	}
	return c
}

// UpsertRequest is the PUT /notes body. ID is omitted for a new note.
type UpsertRequest struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpsertResponse carries the id the store persisted the note under.
type UpsertResponse struct {
	ID string `json:"id"`
}

// Draft is the editor's private, mutable copy of a note's text fields.
type Draft struct {
	Title   string
	Content string
}

// DraftOf copies the editable fields of n.
func DraftOf(n Note) Draft {
	return Draft{Title: n.Title, Content: n.Content}
}

// Timestamp wraps a unix-seconds value as the optional pointer used by Note.
func Timestamp(sec int64) *int64 {
	return &sec
}

// FormatTimestamp renders ts (seconds since epoch) with layout in loc. An
// absent timestamp renders as fallback instead of the epoch.
func FormatTimestamp(ts *int64, layout string, loc *time.Location, fallback string) string {
	if ts == nil {
		return fallback
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(*ts, 0).In(loc).Format(layout)
}

// Preview returns at most maxLines non-blank lines of content, trimmed.
func Preview(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := make([]string, 0, maxLines)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}
