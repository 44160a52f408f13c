package cli

import (
	"os"
	"strings"
)

// isTerminalFD reports whether f is attached to a character device. It is
// also what decides plain versus styled Markdown output for `ask`.
func isTerminalFD(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// isInteractiveTerminal gates the full-screen chat UI: both ends of the
// terminal must be real and TERM must name something capable.
func isInteractiveTerminal() bool {
	if !isTerminalFD(os.Stdin) || !isTerminalFD(os.Stdout) {
		return false
	}
	switch strings.TrimSpace(strings.ToLower(os.Getenv("TERM"))) {
	case "", "dumb":
		return false
	}
	return true
}
