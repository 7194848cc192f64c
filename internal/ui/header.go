// Package ui renders the styled terminal output of the setup CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorBlue  = lipgloss.Color("#3b82f6")
	colorGreen = lipgloss.Color("#22c55e")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorGreen)
)

const headerRule = "=============="

// Header renders the section banner printed before each setup phase.
func Header(text string) string {
	banner := fmt.Sprintf("%s %s %s", headerRule, text, headerRule)
	if !stdoutIsTerminal() {
		return banner
	}
	return headerStyle.Render(banner)
}

// Done renders a completion line.
func Done(text string) string {
	if !stdoutIsTerminal() {
		return text
	}
	return doneStyle.Render(text)
}

// PrintHeader writes a section banner to stdout.
func PrintHeader(text string) {
	fmt.Println(Header(text))
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
