package api

import (
	"context"
	"errors"
	"os"
	"path"
	"sort"

	"github.com/bamboovfx/obsidian-image-manager/internal/index"
	"github.com/bamboovfx/obsidian-image-manager/internal/models"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// Service coordinates storage, the link index, and the organizer for the API
// layer. defaults carries the configured organize settings; request bodies
// override individual fields per call.
type Service struct {
	store     storage.Provider
	db        *index.DB
	organizer *organizer.Service
	defaults  organizer.Request
}

// NewService creates a new API service.
func NewService(store storage.Provider, db *index.DB, org *organizer.Service, defaults organizer.Request) *Service {
	return &Service{store: store, db: db, organizer: org, defaults: defaults}
}

// merge overlays non-empty override fields onto the configured defaults.
func (s *Service) merge(req OrganizeRequest) organizer.Request {
	out := s.defaults
	if req.Prefix != "" {
		out.Prefix = req.Prefix
	}
	if req.TargetDir != "" {
		out.TargetDir = req.TargetDir
	}
	if req.ReferenceDir != "" {
		out.ReferenceDir = req.ReferenceDir
	}
	if req.NotePath != "" {
		out.NotePath = req.NotePath
	}
	if req.ScoopVaultRoot != nil {
		out.ScoopVaultRoot = *req.ScoopVaultRoot
	}
	if req.RewriteScope != "" {
		out.RewriteScope = req.RewriteScope
	}
	out.DryRun = req.DryRun
	return out
}

// Organize runs one organize pass with the merged settings.
func (s *Service) Organize(ctx context.Context, req OrganizeRequest) (*organizer.Report, error) {
	return s.organizer.Run(ctx, s.merge(req))
}

// NextIndex previews the next assigned index without moving anything.
func (s *Service) NextIndex(ctx context.Context, req OrganizeRequest) (string, int, error) {
	merged := s.merge(req)
	n, err := s.organizer.PreviewNextIndex(ctx, merged)
	return merged.Prefix, n, err
}

// ListAttachments returns the files directly inside the target directory.
// A missing directory yields an empty list: the folder is created lazily on
// the first upload or organize run.
func (s *Service) ListAttachments(_ context.Context) ([]AttachmentItem, error) {
	entries, err := s.store.ListDir(s.defaults.TargetDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []AttachmentItem{}, nil
		}
		return nil, err
	}
	items := []AttachmentItem{}
	for _, e := range entries {
		if !e.IsFile() {
			continue
		}
		items = append(items, AttachmentItem{
			Attachment: models.Attachment{
				Path:      e.Path,
				Name:      e.Name,
				Ext:       path.Ext(e.Name),
				Size:      e.Size,
				CreatedAt: e.CreatedAt,
				UpdatedAt: e.UpdatedAt,
			},
			URL: "/attachments/" + e.Name,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Backlinks returns the notes whose links point at the target, matched both
// by full vault path and by bare basename (the common wikilink form).
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	notes, err := s.db.ReferencingNotes(target, path.Base(target))
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []string{}
	}
	return notes, nil
}
