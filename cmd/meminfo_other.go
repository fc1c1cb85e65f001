//go:build !unix

package cmd

func maxRSS() (int64, bool) {
	return 0, false
}
