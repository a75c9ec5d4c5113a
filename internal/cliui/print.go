// Package cliui holds voxengine's small set of styled console helpers,
// trimmed from the teacher's internal/cli package (jivetalking's palette and
// print helpers) down to what the batch CLI actually prints: a banner,
// version/error/success lines, and per-file summaries.
package cliui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#4169E1")
	mutedColor   = lipgloss.Color("#888888")
	successColor = lipgloss.Color("#00AA00")
	errorColor   = lipgloss.Color("#CC3333")

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	KeyStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	ValueStyle = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
)

// PrintBanner prints the application banner.
func PrintBanner() {
	fmt.Println(TitleStyle.Render("voxengine"))
	fmt.Println(KeyStyle.Render("offline voice processing engine"))
	fmt.Println()
}

// PrintVersion prints version information.
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("voxengine"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints a labeled key/value line.
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}
