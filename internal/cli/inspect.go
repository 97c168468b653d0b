package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/pipeline"
)

var (
	inspectHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	inspectCursorStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	inspectDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		eventsPath string
		ed         editorFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [diagram.json]",
		Short: "Browse the triggers and actions of a replay",
		Long: `Replay an event script and browse what the engine did: one row per trigger
with its cascade passes, and the actions it produced for the selected row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], eventsPath, ed)
		},
	}

	cmd.Flags().StringVarP(&eventsPath, "events", "e", "", "event script (default: recalculate everything)")
	ed.register(cmd)
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, eventsPath string, ed editorFlags) error {
	res, err := c.replay(ctx, input, eventsPath, ed, true, false)
	if err != nil {
		return err
	}
	if len(res.Steps) == 0 {
		printInfo("No triggers were produced")
		return nil
	}
	_, err = tea.NewProgram(newStepListModel(res.Steps, res.Stats), tea.WithContext(ctx)).Run()
	return err
}

// stepListModel is the bubbletea model of the inspect view.
type stepListModel struct {
	steps  []pipeline.Step
	stats  pipeline.Stats
	cursor int
	offset int
	height int
}

func newStepListModel(steps []pipeline.Step, stats pipeline.Stats) stepListModel {
	return stepListModel{steps: steps, stats: stats, height: 10}
}

func (m stepListModel) Init() tea.Cmd { return nil }

func (m stepListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.steps)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "home", "g":
			m.cursor, m.offset = 0, 0
		case "end", "G":
			m.cursor = len(m.steps) - 1
			m.offset = max(0, m.cursor-m.height+1)
		}
	case tea.WindowSizeMsg:
		m.height = max(3, msg.Height/2-4)
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
	}
	return m, nil
}

func (m stepListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Replay"))
	b.WriteString("  ")
	b.WriteString(statsLine(m.stats, false))
	b.WriteString("\n")
	b.WriteString(inspectDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.steps))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		s := m.steps[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(s.Event),
			string(s.Op),
			s.Trigger,
			strconv.Itoa(len(s.Passes)),
			strconv.Itoa(len(s.Actions)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Event", "Op", "Trigger", "Passes", "Actions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return inspectHeaderStyle
			}
			if m.offset+row == m.cursor {
				return inspectCursorStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.detail())
	return b.String()
}

// detail renders the passes and actions of the selected step.
func (m stepListModel) detail() string {
	if len(m.steps) == 0 {
		return ""
	}
	s := m.steps[m.cursor]

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("trace %s", s.Trace)))
	b.WriteString("\n")
	for i, pass := range s.Passes {
		fmt.Fprintf(&b, "  pass %d: %s\n", i+1, strings.Join(pass, ", "))
	}
	for _, rec := range s.Actions {
		body, err := json.Marshal(rec.Action)
		if err != nil {
			body = []byte(err.Error())
		}
		fmt.Fprintf(&b, "  %s %s\n", StyleValue.Render(string(rec.Kind)), inspectDimStyle.Render(string(body)))
	}
	if len(s.Actions) == 0 {
		b.WriteString(inspectDimStyle.Render("  no actions"))
		b.WriteString("\n")
	}
	return b.String()
}
