package diag

import "github.com/fatih/color"

// Color definitions for diagnostic output, following the teacher's
// cmd/cpu/debug.go convention of one color.Color per semantic role rather
// than ad-hoc ANSI codes sprinkled through format strings.
var (
	colorPosition = color.New(color.FgCyan)
	colorError    = color.New(color.FgRed, color.Bold)
	colorMessage  = color.New(color.FgWhite)
)

// Format renders a Diagnostic for terminal output with its position,
// message, and wrapped error each colorized by role. Plain Error() output
// stays uncolored for log files and test assertions.
func Format(d *Diagnostic) string {
	pos := colorPosition.Sprint(d.Pos.String())
	if d.Message == "" {
		return pos + ": " + colorError.Sprint(d.Err)
	}
	return pos + ": " + colorMessage.Sprint(d.Message) + ": " + colorError.Sprint(d.Err)
}
