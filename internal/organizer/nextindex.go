package organizer

import (
	"regexp"
	"strconv"
)

// NextIndex computes the lowest unused sequence number for prefix given the
// file names already present in the reference directory. A name matches when
// it is exactly `<prefix><digits>.<ext>`; an empty digit group counts as
// index 0. Returns max matched index + 1, or 0 when nothing matches.
func NextIndex(names []string, prefix string) int {
	// The prefix is user input; quote it so regex metacharacters are literal.
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d*)\.[^.]+$`)

	max := -1
	for _, name := range names {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		idx := 0
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			idx = n
		}
		if idx > max {
			max = idx
		}
	}
	return max + 1
}
