// Package organizer implements attachment renaming: it collects image files
// in scope, assigns them sequential prefixed names, moves them into the
// target folder, and repoints the Markdown references that embed them.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/bamboovfx/obsidian-image-manager/internal/apperr"
	"github.com/bamboovfx/obsidian-image-manager/internal/index"
	"github.com/bamboovfx/obsidian-image-manager/internal/models"
	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// Rewrite scopes.
const (
	RewriteScopeVault = "vault" // repoint every note the link index knows about
	RewriteScopeNote  = "note"  // repoint only the targeted note
)

// DefaultExtension is assigned to candidates that have no extension, unless
// the request overrides it.
const DefaultExtension = ".png"

// Request carries one invocation's configuration. All paths are
// vault-relative.
type Request struct {
	Prefix         string
	TargetDir      string
	ReferenceDir   string // defaults to TargetDir
	NotePath       string // restricts candidates to this note's references
	ScoopVaultRoot bool   // include vault-root images when no note is targeted
	RewriteScope   string // "vault" (default) or "note"
	DefaultExt     string // extension for extensionless files, defaults to ".png"
	DryRun         bool   // plan without moving or rewriting
}

// Report summarizes a run. NextIndex is the counter value a subsequent run
// would start from.
type Report struct {
	Moves     []models.Move `json:"moves"`
	Rewritten []string      `json:"rewritten"`
	NextIndex int           `json:"next_index"`
	DryRun    bool          `json:"dry_run"`
}

// Count returns the number of files moved (or planned, when dry-running).
func (r *Report) Count() int { return len(r.Moves) }

// Service coordinates storage and the link index for organize runs.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new organizer service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// PreviewNextIndex reports the index the next assigned name would use,
// without collecting candidates or touching any file.
func (s *Service) PreviewNextIndex(_ context.Context, req Request) (int, error) {
	req = withDefaults(req)
	if err := s.checkPreconditions(req); err != nil {
		return 0, err
	}
	names, err := s.referenceNames(req.ReferenceDir)
	if err != nil {
		return 0, err
	}
	return NextIndex(names, req.Prefix), nil
}

// Run executes one organize pass: collect, seed the counter from the
// reference directory, order, then move file by file. Moves are applied
// individually, not transactionally; a failure aborts the remaining batch
// and the report returned alongside the error covers the moves that did
// happen.
func (s *Service) Run(_ context.Context, req Request) (*Report, error) {
	req = withDefaults(req)
	if err := s.checkPreconditions(req); err != nil {
		return nil, err
	}

	candidates, err := s.collect(req)
	if err != nil {
		return nil, err
	}

	names, err := s.referenceNames(req.ReferenceDir)
	if err != nil {
		return nil, err
	}
	counter := NextIndex(names, req.Prefix)

	used := make(map[string]struct{}, len(names))
	for _, n := range names {
		used[n] = struct{}{}
	}

	orderCandidates(candidates)

	report := &Report{Moves: []models.Move{}, Rewritten: []string{}, DryRun: req.DryRun}
	rewritten := make(map[string]struct{})

	for _, cand := range candidates {
		ext := path.Ext(cand.Name)
		if ext == "" {
			ext = req.DefaultExt
		}

		name := req.Prefix + strconv.Itoa(counter) + ext
		for {
			if _, taken := used[name]; !taken {
				break
			}
			counter++
			name = req.Prefix + strconv.Itoa(counter) + ext
		}
		newPath := path.Join(req.TargetDir, name)

		if !req.DryRun {
			if err := s.store.Move(cand.Path, newPath); err != nil {
				report.NextIndex = counter
				return report, fmt.Errorf("organizer: move %s: %w", cand.Path, err)
			}
			if err := s.rewriteReferences(req, cand.Path, newPath, rewritten); err != nil {
				report.NextIndex = counter
				return report, err
			}
			slog.Info("organize: moved",
				slog.String("from", cand.Path),
				slog.String("to", newPath))
		}

		report.Moves = append(report.Moves, models.Move{From: cand.Path, To: newPath})
		used[name] = struct{}{}
		counter++
	}

	for p := range rewritten {
		report.Rewritten = append(report.Rewritten, p)
	}
	sort.Strings(report.Rewritten)
	report.NextIndex = counter
	return report, nil
}

// withDefaults fills derived request fields.
func withDefaults(req Request) Request {
	if req.ReferenceDir == "" {
		req.ReferenceDir = req.TargetDir
	}
	if req.RewriteScope == "" {
		req.RewriteScope = RewriteScopeVault
	}
	if req.DefaultExt == "" {
		req.DefaultExt = DefaultExtension
	}
	return req
}

// checkPreconditions rejects the request before any collection or mutation
// starts: empty prefix, missing target or reference directory.
func (s *Service) checkPreconditions(req Request) error {
	if req.Prefix == "" {
		return fmt.Errorf("organizer: prefix is required: %w", apperr.ErrConfig)
	}
	if req.TargetDir == "" {
		return fmt.Errorf("organizer: target directory is required: %w", apperr.ErrConfig)
	}
	for _, dir := range []string{req.TargetDir, req.ReferenceDir} {
		entry, err := s.store.Stat(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("organizer: directory %q does not exist: %w", dir, apperr.ErrConfig)
			}
			return err
		}
		if !entry.IsFolder() {
			return fmt.Errorf("organizer: %q is not a folder: %w", dir, apperr.ErrConfig)
		}
	}
	switch req.RewriteScope {
	case RewriteScopeVault, RewriteScopeNote:
	default:
		return fmt.Errorf("organizer: unknown rewrite scope %q: %w", req.RewriteScope, apperr.ErrConfig)
	}
	return nil
}

// referenceNames snapshots the file names in the reference directory.
func (s *Service) referenceNames(dir string) ([]string, error) {
	children, err := s.store.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("organizer: list reference folder: %w", err)
	}
	names := make([]string, 0, len(children))
	for _, e := range children {
		if e.IsFile() {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// rewriteReferences repoints textual references to the moved file. In note
// scope only the targeted note is rewritten; in vault scope the link index
// supplies every note referencing the file by path or basename.
func (s *Service) rewriteReferences(req Request, oldPath, newPath string, rewritten map[string]struct{}) error {
	var notes []string
	if req.RewriteScope == RewriteScopeNote && req.NotePath != "" {
		notes = []string{req.NotePath}
	} else {
		var err error
		notes, err = s.db.ReferencingNotes(oldPath, path.Base(oldPath))
		if err != nil {
			return fmt.Errorf("organizer: lookup referencing notes: %w", err)
		}
		// The targeted note may not be indexed yet; make sure it is covered.
		if req.NotePath != "" && !contains(notes, req.NotePath) {
			notes = append(notes, req.NotePath)
		}
	}

	for _, notePath := range notes {
		data, err := s.store.Read(notePath)
		if err != nil {
			return fmt.Errorf("organizer: read note %s: %w", notePath, err)
		}
		updated, changed := RewriteRefs(string(data), oldPath, newPath)
		if !changed {
			continue
		}
		if err := s.store.Write(notePath, []byte(updated)); err != nil {
			return fmt.Errorf("organizer: rewrite note %s: %w", notePath, err)
		}
		if err := index.IndexNote(s.db, notePath, []byte(updated)); err != nil {
			slog.Warn("organize: reindex after rewrite failed",
				slog.String("path", notePath),
				slog.String("error", err.Error()))
		}
		rewritten[notePath] = struct{}{}
	}

	// Keep backlink queries accurate for targets nothing re-parsed.
	if err := s.db.RenameTarget(oldPath, newPath); err != nil {
		return err
	}
	return s.db.RenameTarget(path.Base(oldPath), path.Base(newPath))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
