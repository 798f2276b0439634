package models

import "time"

// Attachment represents an image file in the vault. Identity is the
// vault-relative path; timestamps come from the file system and may be
// zero when the platform does not expose a creation time.
type Attachment struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Ext       string    `json:"ext"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Move records a single executed (or planned) rename.
type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
}
