//go:build !linux

package storage

import (
	"os"
	"time"
)

// creationTime is unavailable on this platform; callers treat zero as
// "no creation time" and fall back to the modification time.
func creationTime(_ os.FileInfo) time.Time {
	return time.Time{}
}
