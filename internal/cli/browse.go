package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// browseCommand creates the browse command, an interactive view of the
// scanned model.
func (c *CLI) browseCommand() *cobra.Command {
	var opts scanOpts
	var modelPath string

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse assemblies and packages interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.modelFromArgs(cmd, args, modelPath, opts)
			if err != nil {
				return err
			}
			prog := tea.NewProgram(newBrowseModel(m), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&modelPath, "model", "", "read the model from a JSON export instead of scanning")
	return cmd
}

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseModel is the bubbletea model: an assembly table that drills down
// into the selected assembly's packages.
type browseModel struct {
	repo     *model.Model
	selected *model.Assembly // nil while on the assembly list
	cursor   int
	offset   int
	height   int
}

func newBrowseModel(m *model.Model) browseModel {
	return browseModel{repo: m, height: 15}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) rows() int {
	if m.selected != nil {
		return len(m.selected.PackageIDs)
	}
	return len(m.repo.Assemblies)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.selected != nil {
				m.selected = nil
				m.cursor, m.offset = 0, 0
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < m.rows()-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.selected == nil && len(m.repo.Assemblies) > 0 {
				m.selected = &m.repo.Assemblies[m.cursor]
				m.cursor, m.offset = 0, 0
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	if m.selected != nil {
		return m.packagesView()
	}
	return m.assembliesView()
}

func (m browseModel) assembliesView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Assemblies · %s", m.repo.RepoName)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ packages  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.repo.Assemblies))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		a := m.repo.Assemblies[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor, a.Name, string(a.Kind), a.Root,
			fmt.Sprintf("%d", len(a.PackageIDs)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Assembly", "Kind", "Root", "Packages").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.repo.Assemblies))))
	return b.String()
}

func (m browseModel) packagesView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Packages · %s", m.selected.Name)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  esc back  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.selected.PackageIDs))
	for i := m.offset; i < end; i++ {
		p := m.repo.PackageByID(m.selected.PackageIDs[i])
		if p == nil {
			continue
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-30s %-10s %s", cursor, p.Name, p.BuildSystem, listDimStyle.Render(p.RelPath))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")

		if i == m.cursor && len(p.Dependencies) > 0 {
			b.WriteString(listDimStyle.Render("      uses: " + strings.Join(p.Dependencies, ", ")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.selected.PackageIDs))))
	return b.String()
}
