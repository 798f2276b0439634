// Package storage defines the vault file-system abstraction.
package storage

import (
	"time"

	"github.com/bamboovfx/obsidian-image-manager/internal/models"
)

// Kind discriminates the Entry variant.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// Entry is a tagged file-or-folder variant returned by Stat and ListDir.
// Callers narrow with IsFile/IsFolder before relying on file attributes.
type Entry struct {
	Path      string
	Name      string
	Kind      Kind
	Size      int64
	CreatedAt time.Time // zero when the platform exposes no creation time
	UpdatedAt time.Time
}

// IsFile reports whether the entry is a regular file.
func (e Entry) IsFile() bool { return e.Kind == KindFile }

// IsFolder reports whether the entry is a directory.
func (e Entry) IsFolder() bool { return e.Kind == KindFolder }

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and use forward slashes.
type Provider interface {
	// ListNotes returns metadata for every .md file under dir.
	ListNotes(dir string) ([]models.NoteMetadata, error)
	// ListFiles returns an entry for every regular file under dir.
	ListFiles(dir string) ([]Entry, error)
	// ListDir returns the direct (non-recursive) children of dir.
	ListDir(dir string) ([]Entry, error)
	// Stat returns the entry at path.
	Stat(path string) (Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parent directories.
	Move(oldPath, newPath string) error
	// EnsureDir creates dir (and parents) if missing.
	EnsureDir(dir string) error
}
