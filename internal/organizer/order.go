package organizer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// orderCandidates stable-sorts candidates into the deterministic processing
// order: creation time ascending (zero sorts first), modification time
// ascending, then natural name comparison as the final tie-break.
func orderCandidates(candidates []storage.Entry) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return naturalLess(a.Name, b.Name)
	})
}

// naturalLess compares two strings case-insensitively, treating digit runs
// as numbers, so "img2.png" sorts before "img10.png".
func naturalLess(a, b string) bool {
	ar, br := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		ca, cb := ar[i], br[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			// Compare the full digit runs numerically: skip leading zeros,
			// then longer run wins, then lexicographic on equal length.
			si, sj := i, j
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ar)-i < len(br)-j
}
