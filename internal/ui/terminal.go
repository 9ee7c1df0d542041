package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether ANSI colors should be written to stdout.
func ShouldUseColor() bool {
	return colorWanted(os.Getenv, term.IsTerminal(int(os.Stdout.Fd())))
}

// colorWanted applies NO_COLOR (https://no-color.org), CLICOLOR_FORCE and
// CLICOLOR in that order, then falls back to whether output is a terminal.
func colorWanted(getenv func(string) string, tty bool) bool {
	switch {
	case getenv("NO_COLOR") != "":
		return false
	case strings.TrimSpace(getenv("CLICOLOR_FORCE")) == "1":
		return true
	case strings.TrimSpace(getenv("CLICOLOR")) == "0":
		return false
	}
	return tty
}
