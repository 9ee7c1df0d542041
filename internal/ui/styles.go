package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorLinked = 114 // green
	colorSkip   = 179 // yellow
	colorError  = 167 // red
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderLinked returns s in green, used for applied records and written links.
func RenderLinked(s string) string { return render(colorLinked, s) }

// RenderSkipped returns s in yellow, used for skipped edges and pending records.
func RenderSkipped(s string) string { return render(colorSkip, s) }

// RenderError returns s in red.
func RenderError(s string) string { return render(colorError, s) }

// RenderStatus colors an annotation status name.
func RenderStatus(status string) string {
	switch status {
	case "applied":
		return RenderLinked(status)
	case "pending":
		return RenderSkipped(status)
	case "error":
		return RenderError(status)
	}
	return status
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
