package api

import (
	"github.com/bamboovfx/obsidian-image-manager/internal/models"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
)

// OrganizeRequest is the request body for POST /api/organize. Every field is
// an override; fields left empty fall back to the configured defaults.
// ScoopVaultRoot is a pointer so that an explicit false can override a true
// default.
type OrganizeRequest struct {
	Prefix         string `json:"prefix,omitempty"`
	TargetDir      string `json:"target_dir,omitempty"`
	ReferenceDir   string `json:"reference_dir,omitempty"`
	NotePath       string `json:"note_path,omitempty"`
	ScoopVaultRoot *bool  `json:"scoop_vault_root,omitempty"`
	RewriteScope   string `json:"rewrite_scope,omitempty"`
	DryRun         bool   `json:"dry_run,omitempty"`
}

// OrganizeResponse is the response body for POST /api/organize (aliased from
// the domain layer).
type OrganizeResponse = organizer.Report

// NextIndexResponse is the response body for GET /api/organize/next-index.
type NextIndexResponse struct {
	Prefix    string `json:"prefix"`
	NextIndex int    `json:"next_index"`
}

// AttachmentItem describes one file in the attachment folder.
type AttachmentItem struct {
	models.Attachment
	URL string `json:"url"`
}

// AttachmentListResponse wraps attachment listings.
type AttachmentListResponse struct {
	Attachments []AttachmentItem `json:"attachments"`
	Total       int              `json:"total"`
}

// BacklinksResponse lists the notes that reference a target file.
type BacklinksResponse struct {
	Target string   `json:"target"`
	Notes  []string `json:"notes"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
