package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/vburojevic/check_journal/internal/domain"
)

// Styles holds the lipgloss styles used for terminal output
var Styles = struct {
	// Status keywords
	OK       lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
	Unknown  lipgloss.Style

	// Listing labels
	Label lipgloss.Style
}{
	OK:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red
	Unknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true), // Magenta

	Label: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

// KeywordStyle returns the style for a status keyword
func KeywordStyle(kind domain.StatusKind) lipgloss.Style {
	switch kind {
	case domain.StatusOK:
		return Styles.OK
	case domain.StatusWarning:
		return Styles.Warning
	case domain.StatusCritical:
		return Styles.Critical
	default:
		return Styles.Unknown
	}
}

// IsTerminal reports whether w is a terminal. Monitoring frameworks capture
// stdout through a pipe, so styling is off for them.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
