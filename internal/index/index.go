package index

import "github.com/bamboovfx/obsidian-image-manager/internal/models"

// LinkIndex defines the interface for link-index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type LinkIndex interface {
	UpsertNote(n NoteRow, links []models.Link) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	ReferencingNotes(targets ...string) ([]string, error)
	RenameTarget(oldTarget, newTarget string) error
	Close() error
}

// Verify *DB satisfies LinkIndex at compile time.
var _ LinkIndex = (*DB)(nil)
