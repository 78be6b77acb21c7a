package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/RMahshie/dwarfmag/pkg/models"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
	missingCell = "-"
)

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styleTitle.Render(title))
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printLink(w io.Writer, url string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleLink.Render(url))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// renderMagnitudes lays the table out with one row per temperature
func renderMagnitudes(mags models.MagnitudeTable) string {
	filters := mags.Filters()
	t := newTable(append([]string{"Teff"}, filters...)...)
	for _, teff := range mags.Temperatures() {
		row := []string{strconv.Itoa(teff)}
		for _, id := range filters {
			v, ok := mags.Lookup(id, teff)
			row = append(row, formatMag(v, ok))
		}
		t.Row(row...)
	}
	return t.String()
}

func renderLimits(limits []models.DetectionLimit) string {
	t := newTable("Filter", "Teff", "M", "m_lim", "d (pc)")
	for _, l := range limits {
		t.Row(
			l.FilterID,
			strconv.Itoa(l.Teff),
			formatMag(l.AbsMagnitude, true),
			formatMag(l.LimitingMag, true),
			strconv.FormatFloat(l.DistancePc, 'f', 1, 64),
		)
	}
	return t.String()
}

func renderFilters(refs []models.FilterRef) string {
	t := newTable("ID", "Band", "Path")
	for _, r := range refs {
		band := "broad"
		if r.NarrowBand {
			band = "narrow"
		}
		t.Row(r.ID, band, r.Path)
	}
	return t.String()
}

func formatMag(v float64, ok bool) string {
	if !ok || math.IsNaN(v) {
		return missingCell
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
