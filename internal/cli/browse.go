package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newBrowseCmd creates the browse command: an interactive terminal view of
// the laid-out graph.
func newBrowseCmd() *cobra.Command {
	var opts sourceOpts

	cmd := &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse the node graph interactively in the terminal",
		Long: `Run the pipeline and open an interactive node list. The detail pane shows
the selected node's group, position, and topic connections.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			popts, err := opts.pipelineOptions(ctx, args[0])
			if err != nil {
				return err
			}
			runner := opts.newRunner(ctx)
			defer runner.Close()

			result, err := runner.Execute(ctx, popts)
			if err != nil {
				return err
			}

			model := newGraphBrowserModel(result.Graph)
			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.align, "align", false, "recenter the final layout around the origin")
	return cmd
}

// =============================================================================
// graphBrowserModel - Interactive node inspection
// =============================================================================

// nodeRow is one list entry with the topic connections precomputed.
type nodeRow struct {
	node       *rosgraph.Node
	publishes  []string
	subscribes []string
}

// graphBrowserModel is the bubbletea model for browsing a laid-out graph.
type graphBrowserModel struct {
	rows   []nodeRow
	cursor int
	height int
	offset int
}

func newGraphBrowserModel(g *rosgraph.Graph) graphBrowserModel {
	nodes := g.Nodes()
	rows := make([]nodeRow, len(nodes))
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		rows[i] = nodeRow{node: n}
		index[n.Name] = i
	}
	for _, e := range g.Edges() {
		if i, ok := index[e.From]; ok {
			rows[i].publishes = append(rows[i].publishes, e.Topic)
		}
		if i, ok := index[e.To]; ok {
			rows[i].subscribes = append(rows[i].subscribes, e.Topic)
		}
	}
	return graphBrowserModel{rows: rows, height: 15}
}

func (m graphBrowserModel) Init() tea.Cmd {
	return nil
}

func (m graphBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m graphBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Node Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  graph is empty"))
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			r.node.Name,
			r.node.Group,
			fmt.Sprintf("%d↑ %d↓", len(r.publishes), len(r.subscribes)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Group", "Topics").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}

// detailView renders the detail pane for the selected node.
func (m graphBrowserModel) detailView() string {
	r := m.rows[m.cursor]
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + StyleValue.Render(r.node.Name) + "\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  group %s · pos (%.3f, %.3f)",
		r.node.Group, r.node.Pos[0], r.node.Pos[1])) + "\n")

	if len(r.publishes) > 0 {
		b.WriteString(listDimStyle.Render("  publishes  "+strings.Join(r.publishes, ", ")) + "\n")
	}
	if len(r.subscribes) > 0 {
		b.WriteString(listDimStyle.Render("  subscribes "+strings.Join(r.subscribes, ", ")) + "\n")
	}
	if len(r.node.CallbackGroups) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d callback groups", len(r.node.CallbackGroups))) + "\n")
	}
	return b.String()
}
