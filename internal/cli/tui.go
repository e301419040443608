package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/session"
)

// viewCommand opens an interactive lane browser.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "view [chart.toml]",
		Short:             "Browse a chart's lanes interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScripts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runView(ctx context.Context, input string) error {
	runner, script, opts, err := c.prepare(ctx, input)
	if err != nil {
		return err
	}
	defer runner.Close()

	sess, err := runner.Build(ctx, script, opts)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	if sess.Stats().Lanes == 0 {
		printWarning("%s has no measures", script.Name)
		return nil
	}
	_, err = tea.NewProgram(NewLaneListModel(sess, script.Name), tea.WithContext(ctx)).Run()
	return err
}

// laneKeyMap holds the key bindings of the lane browser.
type laneKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Detail   key.Binding
	Refill   key.Binding
	Quit     key.Binding
}

var laneKeys = laneKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Detail: key.NewBinding(
		key.WithKeys("enter", "d"),
		key.WithHelp("⏎", "details"),
	),
	Refill: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "refill"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

func (k laneKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Detail, k.Refill, k.Quit}
}

func (k laneKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.PageUp, k.PageDown}, {k.Detail, k.Refill, k.Quit}}
}

// LaneListModel is the bubbletea model behind `lanebook view`.
type LaneListModel struct {
	Title  string
	Cursor int
	Offset int
	Height int
	Detail bool

	sess   *session.Session
	rows   [][]string
	detail string
	status string
	help   help.Model
}

// NewLaneListModel returns a browser over the lanes of sess.
func NewLaneListModel(sess *session.Session, title string) LaneListModel {
	m := LaneListModel{Title: title, Height: 15, sess: sess, help: help.New()}
	return m.refresh()
}

func (m LaneListModel) Init() tea.Cmd { return nil }

func (m LaneListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, laneKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, laneKeys.Up):
			m = m.move(-1)
		case key.Matches(msg, laneKeys.Down):
			m = m.move(1)
		case key.Matches(msg, laneKeys.PageUp):
			m = m.move(-m.Height)
		case key.Matches(msg, laneKeys.PageDown):
			m = m.move(m.Height)
		case key.Matches(msg, laneKeys.Detail):
			m.Detail = !m.Detail
		case key.Matches(msg, laneKeys.Refill):
			if err := m.sess.FillLanes(); err != nil {
				m.status = errors.UserMessage(err)
			} else {
				m.status = "lanes refilled"
			}
		}
		m = m.refresh()
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height/2-6)
		m.help.Width = msg.Width
		m = m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta lanes and keeps it on screen.
func (m LaneListModel) move(delta int) LaneListModel {
	m.Cursor = max(0, min(len(m.rows)-1, m.Cursor+delta))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m LaneListModel) refresh() LaneListModel {
	_ = m.sess.Read(func(v session.View) error {
		m.rows = laneRows(v)
		m.detail = ""
		if m.Cursor < v.Lanes.Len() {
			m.detail = laneDetail(v, m.Cursor)
		}
		return nil
	})
	return m.move(0)
}

func (m LaneListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(m.help.View(laneKeys))
	b.WriteString("\n\n")

	end := min(len(m.rows), m.Offset+m.Height)
	b.WriteString(laneTable(m.rows[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	if m.status != "" {
		b.WriteString("  " + StyleWarning.Render(m.status))
	}
	if m.Detail {
		b.WriteString("\n\n")
		b.WriteString(m.detail)
	}
	b.WriteString("\n")
	return b.String()
}

// laneDetail lists the fragments of lane i and counts its notes by kind.
func laneDetail(v session.View, i int) string {
	l := v.Lanes.At(i)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", StyleTitle.Render(fmt.Sprintf("Lane %d", i+1)))
	for _, e := range l.Entries() {
		fmt.Fprintf(&b, "  %s  beats %d-%d  ticks %d-%d\n",
			StyleValue.Render(e.Measure.String()), e.Range.Inf, e.Range.Sup, e.StartTick(), e.StartTick()+e.Ticks())
	}

	kinds := make(map[string]int)
	for _, n := range v.Notes.NotesInTickRange(l.StartTick(), l.EndTick()-1) {
		if n.LaneIndex == i {
			kinds[n.Kind.String()]++
		}
	}
	if len(kinds) == 0 {
		b.WriteString(StyleDim.Render("  no notes"))
		return b.String()
	}
	parts := make([]string, 0, len(kinds))
	for _, k := range slices.Sorted(maps.Keys(kinds)) {
		parts = append(parts, fmt.Sprintf("%s ×%d", k, kinds[k]))
	}
	b.WriteString("  " + StyleNumber.Render(strings.Join(parts, ", ")))
	return b.String()
}

var _ tea.Model = LaneListModel{}
