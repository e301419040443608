package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lanebook/pkg/lane"
	"github.com/matzehuels/lanebook/pkg/notes"
	"github.com/matzehuels/lanebook/pkg/session"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleFull     = lipgloss.NewStyle().Foreground(colorGreen)
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

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// statsLine summarizes a chart on one line, e.g. "64 measures · 32 lanes · fresh".
func statsLine(st session.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d measures", st.Measures),
		fmt.Sprintf("%d lanes", st.Lanes),
		fmt.Sprintf("%d notes", st.Notes),
	}
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	line := "  "
	for _, p := range parts {
		line += StyleDim.Render(p) + StyleDim.Render(" · ")
	}
	return line + status
}

// laneRows returns one table row per lane: number, tick span, fill,
// fragments and note count.
func laneRows(v session.View) [][]string {
	perLane := notesPerLane(v.Notes)
	rows := make([][]string, 0, v.Lanes.Len())
	for _, l := range v.Lanes.Lanes() {
		rows = append(rows, []string{
			fmt.Sprintf("%d", l.Index()+1),
			fmt.Sprintf("%d-%d", l.StartTick(), l.EndTick()),
			fmt.Sprintf("%3.0f%%", 100*float64(l.Occupied())/float64(l.Capacity())),
			fragments(l),
			fmt.Sprintf("%d", perLane[l.Index()]),
		})
	}
	return rows
}

func fragments(l *lane.Lane) string {
	parts := make([]string, 0, l.Len())
	for _, e := range l.Entries() {
		s := fmt.Sprintf("#%03d", e.Measure.Index()+1)
		if e.Range != e.Measure.FullRange() {
			s += fmt.Sprintf("[%d-%d]", e.Range.Inf, e.Range.Sup)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func notesPerLane(nb *notes.Book) map[int]int {
	counts := make(map[int]int)
	add := func(n *notes.Note) {
		if n.LaneIndex >= 0 {
			counts[n.LaneIndex]++
		}
	}
	for _, group := range [][]*notes.Note{nb.Shorts(), nb.Airs(), nb.Attributes()} {
		for _, n := range group {
			add(n)
		}
	}
	for _, group := range [][]*notes.Long{nb.Holds(), nb.Slides(), nb.AirHolds()} {
		for _, l := range group {
			for _, s := range l.Steps {
				add(s)
			}
		}
	}
	return counts
}

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

// laneTable renders rows as a bordered table. Rows whose lane is full are
// highlighted; highlight < 0 disables the cursor row.
func laneTable(rows [][]string, highlight int) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Lane", "Ticks", "Fill", "Measures", "Notes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case row == highlight:
				return StyleTitle
			case col == 2 && strings.TrimSpace(rows[row][2]) == "100%":
				return styleFull
			case col == 1:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		}).
		Render()
}
