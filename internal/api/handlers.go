package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bamboovfx/obsidian-image-manager/internal/apperr"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
)

// Notifier receives organize outcomes for broadcasting. The SSE broker
// satisfies this interface.
type Notifier interface {
	PublishOrganizeReport(report *organizer.Report)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *Service
	notify Notifier
}

// NewHandler creates a new Handler. notify may be nil.
func NewHandler(svc *Service, notify Notifier) *Handler {
	return &Handler{svc: svc, notify: notify}
}

// Organize handles POST /api/organize. An empty body runs with the
// configured defaults.
func (h *Handler) Organize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OrganizeRequest
	// An empty body runs the defaults; a malformed body is rejected.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	report, err := h.svc.Organize(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrConfig):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		default:
			slog.Error("organize failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	if h.notify != nil && !report.DryRun && report.Count() > 0 {
		h.notify.PublishOrganizeReport(report)
	}
	writeJSON(w, http.StatusOK, report)
}

// NextIndex handles GET /api/organize/next-index. Query parameters prefix
// and reference_dir override the configured defaults.
func (h *Handler) NextIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := OrganizeRequest{
		Prefix:       q.Get("prefix"),
		ReferenceDir: q.Get("reference_dir"),
	}
	prefix, n, err := h.svc.NextIndex(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperr.ErrConfig) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("next index failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, NextIndexResponse{Prefix: prefix, NextIndex: n})
}

// ListAttachments handles GET /api/attachments.
func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAttachments(r.Context())
	if err != nil {
		slog.Error("list attachments failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, AttachmentListResponse{Attachments: items, Total: len(items)})
}

// Backlinks handles GET /api/backlinks?target=<path>.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'target' is required"))
		return
	}
	notes, err := h.svc.Backlinks(r.Context(), target)
	if err != nil {
		slog.Error("backlinks failed", slog.String("target", target), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Target: target, Notes: notes})
}
