package organizer

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bamboovfx/obsidian-image-manager/internal/apperr"
	"github.com/bamboovfx/obsidian-image-manager/internal/parser"
	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// imageExts is the recognized image extension set, matched case-insensitively.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".svg": true, ".webp": true,
}

// isImage reports whether name carries a recognized image extension.
func isImage(name string) bool {
	return imageExts[strings.ToLower(path.Ext(name))]
}

// collector accumulates candidates, deduplicating by path and excluding
// files whose base name already carries the prefix.
type collector struct {
	prefix string
	seen   map[string]struct{}
	out    []storage.Entry
}

func newCollector(prefix string) *collector {
	return &collector{prefix: prefix, seen: make(map[string]struct{})}
}

func (c *collector) add(e storage.Entry) {
	if !e.IsFile() || !isImage(e.Name) {
		return
	}
	if strings.HasPrefix(e.Name, c.prefix) {
		return // already renamed
	}
	if _, ok := c.seen[e.Path]; ok {
		return
	}
	c.seen[e.Path] = struct{}{}
	c.out = append(c.out, e)
}

// collect produces the deduplicated candidate set for the request's scope.
// Scope modes are mutually exclusive: a targeted note wins, otherwise the
// target folder is scanned, optionally scooping vault-root files as well.
func (s *Service) collect(req Request) ([]storage.Entry, error) {
	c := newCollector(req.Prefix)

	if req.NotePath != "" {
		if err := s.collectFromNote(c, req.NotePath); err != nil {
			return nil, err
		}
		return c.out, nil
	}

	children, err := s.store.ListDir(req.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("organizer: list target folder: %w", err)
	}
	for _, e := range children {
		c.add(e)
	}

	if req.ScoopVaultRoot {
		root, err := s.store.ListDir("")
		if err != nil {
			return nil, fmt.Errorf("organizer: list vault root: %w", err)
		}
		for _, e := range root {
			c.add(e)
		}
	}

	return c.out, nil
}

// collectFromNote gathers every image the note embeds or links. Dangling
// references are silently skipped; a missing or non-Markdown note path is a
// precondition failure.
func (s *Service) collectFromNote(c *collector, notePath string) error {
	entry, err := s.store.Stat(notePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("organizer: note %q: %w", notePath, apperr.ErrNotFound)
		}
		return err
	}
	if !entry.IsFile() || !strings.HasSuffix(entry.Name, ".md") {
		return fmt.Errorf("organizer: %q is not a Markdown note: %w", notePath, apperr.ErrConfig)
	}

	data, err := s.store.Read(notePath)
	if err != nil {
		return err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	for _, ref := range res.Refs {
		if !isImage(ref.Target) {
			continue
		}
		resolved, ok := s.resolveRef(notePath, ref.Target)
		if !ok {
			continue // dangling reference
		}
		c.add(resolved)
	}
	return nil
}
