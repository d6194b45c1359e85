package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/stats"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printGraphStats prints graph size and cache status on a single line.
func printGraphStats(units, edges int, cached bool) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	sep := StyleDim.Render(" · ")
	fmt.Println("  " +
		StyleDim.Render(fmt.Sprintf("%d units", units)) + sep +
		StyleDim.Render(fmt.Sprintf("%d edges", edges)) + sep +
		statusStyle.Render(status))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Diagnostics
// =============================================================================

// printOutcome reports how a districting run ended.
func printOutcome(d districting.Diagnostics, allowed int) {
	switch d.Reason {
	case districting.ReasonConverged:
		printSuccess("Converged: deviation %s (allowed %d)", StyleNumber.Render(strconv.Itoa(d.Deviation)), allowed)
	case districting.ReasonDeadlock:
		printError("Growth deadlocked: partial plan with %d unassigned units", len(d.UnresolvedUnits))
	default:
		printWarning("Stopped (%s): deviation %d, allowed %d", d.Reason, d.Deviation, allowed)
	}
	printKeyValue("Target", strconv.Itoa(d.Target))
	printKeyValue("Rounds", strconv.Itoa(d.Rounds))
	for _, is := range d.Issues {
		printDetail("%s: %s", is.Code, is.Message)
	}
	if len(d.Islands) > 0 {
		printWarning("%d districts are split into several pieces", len(d.Islands))
	}
}

// =============================================================================
// Statistics Table
// =============================================================================

// renderStatsTable renders a statistics summary as a bordered table with a
// statewide footer row.
func renderStatsTable(w io.Writer, s stats.Summary, attrs []string) {
	withMargin := s.Statewide.Margin != nil
	withDensity := s.Statewide.Density != nil

	headers := []string{"District", "Units", "Population", "Deviation"}
	if withMargin {
		headers = append(headers, "Margin")
	}
	if withDensity {
		headers = append(headers, "Density")
	}
	headers = append(headers, attrs...)

	row := func(label string, r stats.Row, dev string) []string {
		out := []string{label, strconv.Itoa(r.Units), strconv.Itoa(r.Population), dev}
		if withMargin {
			out = append(out, formatRatio(r.Margin, "%+.3f"))
		}
		if withDensity {
			out = append(out, formatRatio(r.Density, "%.1f"))
		}
		for _, a := range attrs {
			out = append(out, strconv.FormatFloat(r.Attrs[a], 'f', -1, 64))
		}
		return out
	}

	rows := make([][]string, 0, len(s.Districts)+1)
	for _, r := range s.Districts {
		rows = append(rows, row(strconv.Itoa(r.District), r, fmt.Sprintf("%+d", r.Deviation)))
	}
	rows = append(rows, row("All", s.Statewide, ""))
	last := len(rows) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case r == -1:
				return styleHeader.Padding(0, 1)
			case r == last:
				return base.Bold(true)
			case col == 3 && r < len(s.Districts) && s.Districts[r].Deviation < 0:
				return base.Foreground(colorYellow)
			case col == 0:
				return base.Foreground(colorCyan)
			}
			return base
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%s %s  %s %s  %s %s\n",
		StyleDim.Render("target"), StyleValue.Render(strconv.Itoa(s.Target)),
		StyleDim.Render("deviation"), StyleValue.Render(strconv.Itoa(s.Deviation)),
		StyleDim.Render("unassigned"), StyleValue.Render(strconv.Itoa(s.Unassigned)))
}

func formatRatio(v *float64, format string) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf(format, *v)
}
