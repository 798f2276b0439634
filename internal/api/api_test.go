package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bamboovfx/obsidian-image-manager/internal/index"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
	"github.com/bamboovfx/obsidian-image-manager/internal/testutil"
)

// testEnv sets up a temp vault, SQLite DB, services, and router for testing.
// authToken="" means disabled mode.
func testEnv(t *testing.T, authToken string) (http.Handler, string, *index.DB) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	defaults := organizer.Request{Prefix: "T", TargetDir: "attachments", RewriteScope: organizer.RewriteScopeVault}
	org := organizer.NewService(store, db)
	svc := NewService(store, db, org, defaults)

	enabled := authToken != ""
	router := NewRouter(svc, enabled, authToken, nil, nil, vaultDir, "attachments")
	return router, vaultDir, db
}

func writeFile(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	abs := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOrganizeEndpoint(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")
	writeFile(t, vaultDir, "attachments/cat.png", "png-bytes")
	writeFile(t, vaultDir, "attachments/dog.jpg", "jpg-bytes")

	req := httptest.NewRequest(http.MethodPost, "/organize", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var report OrganizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(report.Moves))
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "attachments", "T0.png")); err != nil {
		t.Errorf("T0.png not on disk: %v", err)
	}
}

func TestOrganizeEndpoint_DryRun(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")
	writeFile(t, vaultDir, "attachments/cat.png", "png-bytes")

	body, _ := json.Marshal(OrganizeRequest{DryRun: true})
	req := httptest.NewRequest(http.MethodPost, "/organize", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var report OrganizeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &report)
	if !report.DryRun || len(report.Moves) != 1 {
		t.Errorf("report = %+v", report)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "attachments", "cat.png")); err != nil {
		t.Errorf("dry run must not move files: %v", err)
	}
}

func TestOrganizeEndpoint_BadConfig(t *testing.T) {
	router, _, _ := testEnv(t, "")

	body, _ := json.Marshal(OrganizeRequest{RewriteScope: "everywhere"})
	req := httptest.NewRequest(http.MethodPost, "/organize", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestOrganizeEndpoint_MissingNote(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")
	writeFile(t, vaultDir, "attachments/.keep", "")

	body, _ := json.Marshal(OrganizeRequest{NotePath: "nope.md"})
	req := httptest.NewRequest(http.MethodPost, "/organize", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestNextIndexEndpoint(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")
	writeFile(t, vaultDir, "attachments/T0.png", "a")
	writeFile(t, vaultDir, "attachments/T2.jpg", "b")

	req := httptest.NewRequest(http.MethodGet, "/organize/next-index", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp NextIndexResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Prefix != "T" || resp.NextIndex != 3 {
		t.Errorf("resp = %+v, want T/3", resp)
	}
}

func TestListAttachmentsEndpoint(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")
	writeFile(t, vaultDir, "attachments/T0.png", "a")
	writeFile(t, vaultDir, "attachments/T1.jpg", "bb")

	req := httptest.NewRequest(http.MethodGet, "/attachments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp AttachmentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Attachments[0].Name != "T0.png" || resp.Attachments[0].URL != "/attachments/T0.png" {
		t.Errorf("first item = %+v", resp.Attachments[0])
	}
}

func TestListAttachmentsEndpoint_MissingDir(t *testing.T) {
	router, _, _ := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/attachments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp AttachmentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 0 {
		t.Errorf("total = %d, want 0", resp.Total)
	}
}

func TestBacklinksEndpoint(t *testing.T) {
	router, vaultDir, db := testEnv(t, "")
	writeFile(t, vaultDir, "pets.md", "![[T0.png]]\n")
	if err := index.IndexNote(db, "pets.md", []byte("![[T0.png]]\n")); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/backlinks?target=attachments/T0.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp BacklinksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Notes) != 1 || resp.Notes[0] != "pets.md" {
		t.Errorf("notes = %v, want [pets.md]", resp.Notes)
	}
}

func TestBacklinksEndpoint_MissingTarget(t *testing.T) {
	router, _, _ := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/backlinks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthEnforced(t *testing.T) {
	router, _, _ := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/attachments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/attachments", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/attachments", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", w.Code)
	}
}

func TestUploadAndServe(t *testing.T) {
	router, vaultDir, _ := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp AttachmentUploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Filename != "photo.png" || resp.Size != 9 {
		t.Errorf("resp = %+v", resp)
	}

	// Serve the uploaded file through the public file route.
	fr := chi.NewRouter()
	fr.Get("/attachments/{filename}", NewAttachmentHandler(vaultDir, "attachments").ServeFile)
	req = httptest.NewRequest(http.MethodGet, "/attachments/photo.png", nil)
	w = httptest.NewRecorder()
	fr.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Errorf("serve status = %d, body = %q", w.Code, w.Body.String())
	}
}

func TestSafeNameRejectsTraversal(t *testing.T) {
	h := NewAttachmentHandler(t.TempDir(), "attachments")
	for _, name := range []string{"", "../escape.png", "sub/child.png", ".."} {
		if _, err := h.safeName(name); err == nil {
			t.Errorf("safeName(%q) should fail", name)
		}
	}
	if _, err := h.safeName("T0.png"); err != nil {
		t.Errorf("safeName(T0.png): %v", err)
	}
}
