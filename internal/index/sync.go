package index

import (
	"log/slog"
	"time"

	"github.com/bamboovfx/obsidian-image-manager/internal/checksum"
	"github.com/bamboovfx/obsidian-image-manager/internal/models"
	"github.com/bamboovfx/obsidian-image-manager/internal/parser"
	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// Sync walks the vault and brings the link index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.ListNotes("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexNote(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexNote parses note data and upserts it with its outgoing references.
// Exported so the organizer can reindex notes it has rewritten.
func IndexNote(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	links := make([]models.Link, 0, len(res.Refs))
	for _, r := range res.Refs {
		typ := "link"
		if r.Embed {
			typ = "embed"
		}
		links = append(links, models.Link{Source: path, Target: r.Target, Type: typ})
	}

	return db.UpsertNote(NoteRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		Tags:      res.Tags,
		UpdatedAt: time.Now(),
	}, links)
}
