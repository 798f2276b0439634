package organizer

import (
	"path"
	"strings"

	"github.com/bamboovfx/obsidian-image-manager/internal/parser"
)

// RewriteRefs repoints every reference to oldPath — by full vault path or
// bare basename — at newPath, and reports whether anything changed.
// Fenced code blocks and inline code spans are left untouched. Wikilinks
// keep their alias and heading parts and stay basename-style unless the
// original target carried a path; Markdown image URLs always get the full
// new path.
func RewriteRefs(content, oldPath, newPath string) (string, bool) {
	oldBase := path.Base(oldPath)
	lines := strings.Split(content, "\n")
	changed := false

	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, ref := range parser.ExtractRefs(line) {
			if !refMatches(ref.Target, oldPath, oldBase) {
				continue
			}
			newRaw := rewriteRaw(ref.Raw, newPath)
			if newRaw == ref.Raw {
				continue
			}
			updated := replaceOutsideInlineCode(lines[i], ref.Raw, newRaw)
			if updated != lines[i] {
				lines[i] = updated
				changed = true
			}
		}
	}

	if !changed {
		return content, false
	}
	return strings.Join(lines, "\n"), true
}

// refMatches reports whether a ref target points at the moved file.
func refMatches(target, oldPath, oldBase string) bool {
	target = strings.TrimPrefix(strings.ReplaceAll(target, "\\", "/"), "./")
	return strings.EqualFold(target, oldPath) || strings.EqualFold(target, oldBase)
}

// rewriteRaw rebuilds a raw reference with its target replaced.
func rewriteRaw(raw, newPath string) string {
	switch {
	case strings.HasPrefix(raw, "![["), strings.HasPrefix(raw, "[["):
		bang := ""
		inner := raw
		if strings.HasPrefix(inner, "!") {
			bang = "!"
			inner = inner[1:]
		}
		inner = strings.TrimPrefix(inner, "[[")
		inner = strings.TrimSuffix(inner, "]]")

		var alias, subpath string
		if idx := strings.Index(inner, "|"); idx >= 0 {
			alias = inner[idx:] // includes |
			inner = inner[:idx]
		}
		if idx := strings.Index(inner, "#"); idx >= 0 {
			subpath = inner[idx:] // includes #
			inner = inner[:idx]
		}

		// Basename-style links stay basename-style.
		target := path.Base(newPath)
		if strings.Contains(inner, "/") {
			target = newPath
		}
		return bang + "[[" + target + subpath + alias + "]]"

	case strings.HasPrefix(raw, "!["):
		// Markdown image: ![alt](url) or ![alt](url#frag).
		start := strings.Index(raw, "](")
		if start < 0 {
			return raw
		}
		textPart := raw[:start+2]
		urlPart := strings.TrimSuffix(raw[start+2:], ")")

		var frag string
		if idx := strings.Index(urlPart, "#"); idx >= 0 {
			frag = urlPart[idx:]
		}
		return textPart + newPath + frag + ")"
	}
	return raw
}

// replaceOutsideInlineCode replaces occurrences of old with new in line,
// but only outside backtick-delimited inline code spans.
func replaceOutsideInlineCode(line, old, new string) string {
	var result strings.Builder
	i := 0
	for i < len(line) {
		if line[i] == '`' {
			end := strings.IndexByte(line[i+1:], '`')
			if end < 0 {
				// No closing backtick: rest of line is code.
				result.WriteString(line[i:])
				return result.String()
			}
			span := line[i : i+1+end+1]
			result.WriteString(span)
			i += len(span)
			continue
		}
		if strings.HasPrefix(line[i:], old) {
			result.WriteString(new)
			i += len(old)
			continue
		}
		result.WriteByte(line[i])
		i++
	}
	return result.String()
}
