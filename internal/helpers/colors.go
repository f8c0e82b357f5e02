package helpers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"coursework-roadmap/internal/models"
)

var (
	// SuccessColor for successful operations
	SuccessColor = color.New(color.FgGreen, color.Bold)

	// ErrorColor for error messages
	ErrorColor = color.New(color.FgRed, color.Bold)

	// WarningColor for warning messages
	WarningColor = color.New(color.FgYellow, color.Bold)

	// InfoColor for informational messages
	InfoColor = color.New(color.FgCyan, color.Bold)

	// TitleColor for titles and headers
	TitleColor = color.New(color.FgMagenta, color.Bold)

	// MutedColor for secondary details
	MutedColor = color.New(color.FgHiBlack)
)

// Out is where the printers write. Tests swap it for a buffer.
var Out io.Writer = color.Output

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	SuccessColor.Fprintf(Out, "✅ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	ErrorColor.Fprintf(Out, "❌ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	WarningColor.Fprintf(Out, "⚠️  "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	InfoColor.Fprintf(Out, "ℹ️  "+format+"\n", args...)
}

// PrintTitle prints a title
func PrintTitle(format string, args ...interface{}) {
	TitleColor.Fprintf(Out, "🎯 "+format+"\n", args...)
}

// PrintProgress prints a progress message
func PrintProgress(current, total int, message string) {
	InfoColor.Fprintf(Out, "📊 [%d/%d] %s\n", current, total, message)
}

// PrintLine prints plain text
func PrintLine(format string, args ...interface{}) {
	fmt.Fprintf(Out, format+"\n", args...)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(Out, strings.Repeat("─", 80))
}

// StatusBadge renders a task status with its color
func StatusBadge(status models.TaskStatus) string {
	switch status {
	case models.StatusDone:
		return SuccessColor.Sprint("[done]")
	case models.StatusInProgress:
		return WarningColor.Sprint("[in progress]")
	default:
		return MutedColor.Sprint("[todo]")
	}
}

// MustDoMarker highlights priority-0 tasks
func MustDoMarker(task models.Task) string {
	if task.IsMustDo() {
		return ErrorColor.Sprint(" ★ must do")
	}
	return ""
}

// ProgressBar renders ratio (0..1) as a bar of width cells
func ProgressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]" +
		fmt.Sprintf(" %3.0f%%", ratio*100)
}

// IsTerminal checks if output is going to a terminal
func IsTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
