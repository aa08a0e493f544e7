package deps

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	installedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	optionalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// RenderReport formats probe results as a human-readable grouped report.
// Missing engines are fatal-colored; missing encoders only limit the
// available output formats.
func RenderReport(statuses []Status) string {
	var report strings.Builder

	report.WriteString(titleStyle.Render("Toolchain Report"))
	report.WriteString("\n\n")

	report.WriteString("Speech engines (one required):\n")
	writeGroup(&report, statuses, RoleEngine, missingStyle)

	report.WriteString("\nEncoders (per output format):\n")
	writeGroup(&report, statuses, RoleEncoder, optionalStyle)

	report.WriteString("\nUsable output formats: ")
	report.WriteString(strings.Join(EncodableFormats(statuses), ", "))
	report.WriteString("\n")

	if err := Summarize(statuses); err != nil {
		report.WriteString("\n")
		report.WriteString(missingStyle.Render(err.Error()))
		report.WriteString("\n")
	}

	return report.String()
}

func writeGroup(report *strings.Builder, statuses []Status, role string, absentStyle lipgloss.Style) {
	for _, s := range statuses {
		if s.Role != role {
			continue
		}

		label := s.Name
		if len(s.Formats) > 0 {
			label = fmt.Sprintf("%s (%s)", s.Name, strings.Join(s.Formats, ", "))
		}

		if s.Installed {
			report.WriteString(installedStyle.Render("  ✓ " + label + ": "))
			report.WriteString(s.Version)
			report.WriteString("\n")
			continue
		}

		report.WriteString(absentStyle.Render("  ✗ " + label + ": "))
		report.WriteString("not installed\n")
		if s.Instructions != "" {
			report.WriteString("    " + s.Instructions + "\n")
		}
	}
}
