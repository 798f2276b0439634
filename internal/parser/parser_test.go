package parser

import (
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - vault\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) < 2 || r.Tags[0] != "go" || r.Tags[1] != "vault" {
		t.Errorf("tags = %v, want [go vault]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestExtractRefs_LinksAndEmbeds(t *testing.T) {
	body := "Here ![[cat.png]] and [[dog.jpg|caption]].\nAlso [[Note A]] and ![[cat.png]] again."
	refs := ExtractRefs(body)
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3: %v", len(refs), refs)
	}
	if refs[0].Raw != "![[cat.png]]" || refs[0].Target != "cat.png" || !refs[0].Embed {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Target != "dog.jpg" || refs[1].Embed {
		t.Errorf("refs[1] = %+v", refs[1])
	}
	if refs[2].Target != "Note A" {
		t.Errorf("refs[2] = %+v", refs[2])
	}
}

func TestExtractRefs_MarkdownImages(t *testing.T) {
	body := "![alt](img/cat.png) and ![](dog.jpg) but not ![ext](https://example.com/x.png)"
	refs := ExtractRefs(body)
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2: %v", len(refs), refs)
	}
	if refs[0].Target != "img/cat.png" || !refs[0].Embed {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Target != "dog.jpg" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}

func TestExtractRefs_HeadingAndEmptyTargets(t *testing.T) {
	refs := ExtractRefs("see [[ ]] and [[|alias]] and [[Note#Section]]")
	if len(refs) != 1 {
		t.Fatalf("refs = %v, want just Note", refs)
	}
	if refs[0].Target != "Note" {
		t.Errorf("target = %q, want Note", refs[0].Target)
	}
}

func TestParse_LinkTargetsDeduplicated(t *testing.T) {
	r, err := Parse([]byte("[[A]] ![[A]] [[B|x]]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Links) != 2 || r.Links[0] != "A" || r.Links[1] != "B" {
		t.Errorf("links = %v, want [A B]", r.Links)
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{
		"tags": []any{"alpha"},
	}
	body := "Some text #beta and #alpha again."
	tags := extractTags(body, fm)
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "FM Title"}
	if got := deriveTitle(fm, "# H1 Title\n"); got != "FM Title" {
		t.Errorf("title = %q, want FM Title", got)
	}
	if got := deriveTitle(nil, "text\n# H1 Title\n"); got != "H1 Title" {
		t.Errorf("title = %q, want H1 Title", got)
	}
}
