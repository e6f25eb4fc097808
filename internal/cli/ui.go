package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	primary   = lipgloss.Color("#7C3AED")
	secondary = lipgloss.Color("#3B82F6")
	success   = lipgloss.Color("#10B981")
	warning   = lipgloss.Color("#F59E0B")
	failure   = lipgloss.Color("#EF4444")
	muted     = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(secondary)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warning)
	infoStyle    = lipgloss.NewStyle().Foreground(secondary)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	keyStyle     = lipgloss.NewStyle().Foreground(primary).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
)

func banner() string {
	return titleStyle.Render("▸ sitepipe")
}

func divider() string {
	return mutedStyle.Render("─────────────────────────────────────────")
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, infoStyle.Render("• "+fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func printError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render(key+":"), valueStyle.Render(value))
}
