package organizer

import (
	"testing"
	"time"

	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"img2.png", "img10.png", true},
		{"img10.png", "img2.png", false},
		{"a.png", "b.png", true},
		{"A.png", "b.png", true},  // case-insensitive
		{"img2.png", "IMG10.png", true},
		{"img02.png", "img2.png", false}, // equal numerically, longer left side
		{"img.png", "img1.png", true},
		{"same.png", "same.png", false},
	}
	for _, tc := range cases {
		if got := naturalLess(tc.a, tc.b); got != tc.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOrderCandidates(t *testing.T) {
	ts := func(sec int64) time.Time { return time.Unix(sec, 0) }

	entries := []storage.Entry{
		{Path: "b.png", Name: "b.png", CreatedAt: ts(5), UpdatedAt: ts(5)},
		{Path: "a.png", Name: "a.png", CreatedAt: ts(3), UpdatedAt: ts(9)},
		{Path: "c.png", Name: "c.png", CreatedAt: ts(3), UpdatedAt: ts(4)},
	}
	orderCandidates(entries)

	want := []string{"c.png", "a.png", "b.png"} // ctime 3/4, ctime 3/9, ctime 5
	for i, w := range want {
		if entries[i].Name != w {
			t.Fatalf("order = %v, want %v", names(entries), want)
		}
	}
}

func TestOrderCandidates_NameTieBreakIsNatural(t *testing.T) {
	now := time.Unix(100, 0)
	entries := []storage.Entry{
		{Path: "shot10.png", Name: "shot10.png", CreatedAt: now, UpdatedAt: now},
		{Path: "shot2.png", Name: "shot2.png", CreatedAt: now, UpdatedAt: now},
	}
	orderCandidates(entries)
	if entries[0].Name != "shot2.png" {
		t.Errorf("order = %v, want shot2 before shot10", names(entries))
	}
}

func TestOrderCandidates_MissingCreationTimeSortsFirst(t *testing.T) {
	entries := []storage.Entry{
		{Path: "b.png", Name: "b.png", CreatedAt: time.Unix(1, 0), UpdatedAt: time.Unix(1, 0)},
		{Path: "a.png", Name: "a.png", UpdatedAt: time.Unix(99, 0)}, // zero ctime
	}
	orderCandidates(entries)
	if entries[0].Name != "a.png" {
		t.Errorf("order = %v, want zero-ctime file first", names(entries))
	}
}

func names(entries []storage.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
