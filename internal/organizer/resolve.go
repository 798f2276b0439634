package organizer

import (
	"path"
	"sort"
	"strings"

	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// resolveRef resolves a raw link target from a note to a concrete vault
// file: exact vault-relative path first, then relative to the note's own
// directory, then a basename match across the whole vault. Returns false
// when the target does not resolve to a file (dangling reference).
func (s *Service) resolveRef(notePath, target string) (storage.Entry, bool) {
	target = strings.TrimPrefix(path.Clean(strings.ReplaceAll(target, "\\", "/")), "./")
	if target == "" || target == "." {
		return storage.Entry{}, false
	}

	noteDir := path.Dir(notePath)
	if noteDir == "." {
		noteDir = ""
	}

	tryPaths := []string{target}
	if noteDir != "" {
		tryPaths = append(tryPaths, path.Join(noteDir, target))
	}
	for _, p := range tryPaths {
		if e, err := s.store.Stat(p); err == nil && e.IsFile() {
			return e, true
		}
	}

	// Bare basename: search the vault, shortest path wins for determinism.
	if !strings.Contains(target, "/") {
		files, err := s.store.ListFiles("")
		if err != nil {
			return storage.Entry{}, false
		}
		var matches []storage.Entry
		for _, e := range files {
			if strings.EqualFold(e.Name, target) {
				matches = append(matches, e)
			}
		}
		if len(matches) > 0 {
			sort.Slice(matches, func(i, j int) bool {
				if len(matches[i].Path) != len(matches[j].Path) {
					return len(matches[i].Path) < len(matches[j].Path)
				}
				return matches[i].Path < matches[j].Path
			})
			return matches[0], true
		}
	}

	return storage.Entry{}, false
}
