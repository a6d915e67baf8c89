package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// styler applies lipgloss styles only when color output is enabled.
type styler struct {
	color bool
}

func newStyler(noColor bool) styler {
	return styler{color: !noColor && term.IsTerminal(int(os.Stdout.Fd()))}
}

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

func (s styler) title(text string) string   { return s.render(titleStyle, text) }
func (s styler) heading(text string) string { return s.render(headingStyle, text) }
func (s styler) name(text string) string    { return s.render(nameStyle, text) }
func (s styler) typ(text string) string     { return s.render(typeStyle, text) }
func (s styler) flags(text string) string   { return s.render(flagStyle, text) }
func (s styler) err(text string) string     { return s.render(errorStyle, text) }
