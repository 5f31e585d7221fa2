package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lablink-dev/figgen/pkg/process"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FigureListModel - Interactive figure selection
// =============================================================================

// FigureListModel is the bubbletea model behind bare `figgen plot`.
type FigureListModel struct {
	Figures  []figureSpec
	Cursor   int
	Selected string
}

// NewFigureListModel creates a picker over the plottable figures.
func NewFigureListModel() FigureListModel {
	return FigureListModel{Figures: figureSpecs}
}

func (m FigureListModel) Init() tea.Cmd {
	return nil
}

func (m FigureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Figures)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Figures[m.Cursor].name
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FigureListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Figure"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Figures {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-12s %s", cursor, f.name, listDimStyle.Render(f.title))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Figures))))

	return b.String()
}

// pickFigure runs the interactive picker and returns the chosen figure
// name, empty when the user quit without choosing.
func pickFigure() (string, error) {
	p := tea.NewProgram(NewFigureListModel())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := finalModel.(FigureListModel)
	if !ok {
		return "", nil
	}
	return m.Selected, nil
}

// =============================================================================
// Quality Table
// =============================================================================

// qualityTable renders processing quality entries as a bordered table.
func qualityTable(entries []process.QualityEntry) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Package,
			e.Status,
			fmt.Sprintf("%d", e.Count),
			dateWindow(e.First, e.Last),
			e.Reason,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Status", "Points", "Window", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(entries) {
				if entries[row].Status == process.StatusIncluded {
					return lipgloss.NewStyle().Foreground(colorGreen)
				}
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}

// dateWindow formats the first-to-last record dates of a package.
func dateWindow(first, last time.Time) string {
	if first.IsZero() {
		return "-"
	}
	return first.Format("2006-01") + " to " + last.Format("2006-01")
}
