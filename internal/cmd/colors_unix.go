//go:build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// ioctlTermWidth asks the kernel for the width of the terminal on stdout.
// It returns 0 when stdout is not a terminal.
func ioctlTermWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0
	}
	return int(ws.Col)
}
