//go:build windows

package cmd

// ioctlTermWidth is unavailable on Windows; termWidth falls back to $COLUMNS.
func ioctlTermWidth() int {
	return 0
}
