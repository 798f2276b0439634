package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// notify, if non-nil, receives organize reports for broadcasting.
// vaultRoot and attachDir locate the attachment directory on disk.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler, notify Notifier, vaultRoot, attachDir string) chi.Router {
	h := NewHandler(svc, notify)
	ah := NewAttachmentHandler(vaultRoot, attachDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Organize.
	r.Post("/organize", h.Organize)
	r.Get("/organize/next-index", h.NextIndex)

	// Attachments.
	r.Get("/attachments", h.ListAttachments)
	r.Post("/attachments", ah.Upload)

	// Backlinks.
	r.Get("/backlinks", h.Backlinks)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
