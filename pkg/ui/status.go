// Package ui renders the transfer status in the terminal. The four
// user-visible states mirror the trigger control injected into the page:
// ready, processing, success, error.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	processingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// RenderState renders one of the four user-visible states.
func RenderState(state string) string {
	switch state {
	case "armed", "ready":
		return readyStyle.Render("● ready")
	case "processing":
		return processingStyle.Render("● processing")
	case "success":
		return successStyle.Render("● success")
	case "error":
		return errorStyle.Render("● error")
	default:
		return dimStyle.Render("● " + state)
	}
}

// RenderToast renders a toast message for terminal echo.
func RenderToast(level, message string) string {
	var style lipgloss.Style
	switch level {
	case "success":
		style = successStyle
	case "error":
		style = errorStyle
	default:
		style = dimStyle
	}
	return fmt.Sprintf("%s %s", style.Render(level+":"), message)
}

// RenderInfo renders a dim informational line.
func RenderInfo(message string) string {
	return dimStyle.Render(message)
}
