// Package parser extracts frontmatter, references, and tags from Markdown
// content. Reference extraction is pure string work so the organizer can be
// tested without any storage behind it.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`(!?)\[\[(.*?)\]\]`)
	mdImageRe  = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Ref is a single reference occurrence in a note body.
type Ref struct {
	Raw    string // full matched syntax, e.g. "![[cat.png]]" or "![x](img/cat.png)"
	Target string // link target with alias and heading stripped
	Embed  bool   // true for ![[...]] and ![...](...)
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Refs        []Ref
	Links       []string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, body, references, and tags from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	refs := ExtractRefs(body)
	tags := extractTags(body, fm)
	title := deriveTitle(fm, body)

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Refs:        refs,
		Links:       linkTargets(refs),
		Tags:        tags,
		Title:       title,
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: fall back to body-only, no error.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// ExtractRefs returns every wikilink, embed, and Markdown image reference in
// body, deduplicated by raw occurrence. Aliases ([[t|alias]]) and heading
// anchors ([[t#h]]) are stripped from the target.
func ExtractRefs(body string) []Ref {
	seen := make(map[string]struct{})
	var out []Ref

	add := func(raw, target string, embed bool) {
		target = strings.TrimSpace(target)
		if target == "" {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		out = append(out, Ref{Raw: raw, Target: target, Embed: embed})
	}

	for _, m := range wikilinkRe.FindAllStringSubmatch(body, -1) {
		raw, bang, inner := m[0], m[1], m[2]
		target := inner
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		add(raw, target, bang == "!")
	}

	for _, m := range mdImageRe.FindAllStringSubmatch(body, -1) {
		raw, target := m[0], m[1]
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		// External URLs are not vault references.
		if strings.Contains(target, "://") {
			continue
		}
		add(raw, target, true)
	}

	return out
}

// linkTargets returns deduplicated targets across all refs, for the index.
func linkTargets(refs []Ref) []string {
	seen := make(map[string]struct{}, len(refs))
	var out []string
	for _, r := range refs {
		if _, ok := seen[r.Target]; ok {
			continue
		}
		seen[r.Target] = struct{}{}
		out = append(out, r.Target)
	}
	return out
}

// extractTags collects #tags from body and from frontmatter "tags" field.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string

	if fm != nil {
		if raw, ok := fm["tags"]; ok {
			switch v := raw.(type) {
			case []interface{}:
				for _, item := range v {
					if s, ok := item.(string); ok {
						s = strings.TrimSpace(s)
						if s != "" {
							if _, dup := seen[s]; !dup {
								seen[s] = struct{}{}
								out = append(out, s)
							}
						}
					}
				}
			}
		}
	}

	matches := tagRe.FindAllStringSubmatch(body, -1)
	for _, m := range matches {
		t := m[1]
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
