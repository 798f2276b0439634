// Package models defines the domain types shared across the application.
package models

import "time"

// NoteMetadata is a lightweight representation of a Markdown note,
// returned by list operations and used by the index sync.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link represents a directed reference from a note to a target, which may
// be another note or an attachment file.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"` // "link" or "embed"
}
