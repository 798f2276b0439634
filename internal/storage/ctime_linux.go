//go:build linux

package storage

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the closest thing Linux offers to a file creation
// time: the inode change time. Returns zero when the stat payload is not
// the expected type.
func creationTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
}
