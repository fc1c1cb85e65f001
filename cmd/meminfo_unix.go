//go:build unix

package cmd

import "golang.org/x/sys/unix"

// maxRSS returns the peak resident set size as getrusage reports it:
// kilobytes on Linux, bytes on Darwin.
func maxRSS() (int64, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, false
	}
	return int64(ru.Maxrss), true
}
