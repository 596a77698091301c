package cmd

import (
	"github.com/fatih/color"

	"github.com/headgrade/headgrade/internal/scanner"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// formatGrade colors a letter grade by how alarming it is.
func formatGrade(grade string) string {
	switch grade {
	case "A", "B":
		return colorSuccess(grade)
	case "C", "D":
		return colorWarn(grade)
	default:
		return colorError(grade)
	}
}

// formatSeverity colors a severity label for console output.
func formatSeverity(severity scanner.Severity) string {
	switch severity {
	case scanner.SeverityHigh:
		return colorError(string(severity))
	case scanner.SeverityMedium:
		return colorWarn(string(severity))
	case scanner.SeverityLow:
		return colorInfo(string(severity))
	default:
		return string(severity)
	}
}
