package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// DatasetListModel - Interactive state selection
// =============================================================================

// DatasetListModel is the bubbletea model for picking a dataset.
type DatasetListModel struct {
	Datasets []pipeline.Dataset
	Cursor   int
	Selected *pipeline.Dataset
	Height   int
	Offset   int
	filter   string
}

// NewDatasetListModel creates a picker over datasets.
func NewDatasetListModel(datasets []pipeline.Dataset) DatasetListModel {
	return DatasetListModel{Datasets: datasets, Height: 15}
}

func (m DatasetListModel) Init() tea.Cmd {
	return nil
}

func (m DatasetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.move(-1)
		case tea.KeyDown:
			m.move(1)
		case tea.KeyEnter:
			if len(m.Datasets) > 0 {
				ds := m.Datasets[m.Cursor]
				m.Selected = &ds
			}
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.filter != "" {
				m.filter = m.filter[:len(m.filter)-1]
			}
		case tea.KeyRunes:
			// Typing a state code jumps to the first match.
			m.filter += strings.ToUpper(string(msg.Runes))
			m.jump()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m *DatasetListModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.Datasets) {
		return
	}
	m.Cursor = next
	m.scroll()
}

func (m *DatasetListModel) jump() {
	for i, ds := range m.Datasets {
		if strings.HasPrefix(strings.ToUpper(ds.Code), m.filter) {
			m.Cursor = i
			m.scroll()
			return
		}
	}
}

func (m *DatasetListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m DatasetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select State"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  type a code to jump  ⏎ select  esc quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Datasets))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		ds := m.Datasets[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, ds.Code, ds.Name, ds.Format})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Code", "Name", "Format").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Datasets))))
	if m.filter != "" {
		b.WriteString(listDimStyle.Render("  " + m.filter))
	}
	return b.String()
}

// pickDataset runs the picker over the datasets in dir.
func pickDataset(dir string) (pipeline.Dataset, error) {
	datasets, err := pipeline.ListDatasets(dir)
	if err != nil {
		return pipeline.Dataset{}, err
	}
	if len(datasets) == 0 {
		return pipeline.Dataset{}, errors.New(errors.ErrCodeNotFound,
			"no datasets in %s; pass a graph file or --state", dir)
	}

	final, err := tea.NewProgram(NewDatasetListModel(datasets)).Run()
	if err != nil {
		return pipeline.Dataset{}, fmt.Errorf("dataset picker: %w", err)
	}
	m := final.(DatasetListModel)
	if m.Selected == nil {
		return pipeline.Dataset{}, errors.New(errors.ErrCodeInvalidInput, "no dataset selected")
	}
	return *m.Selected, nil
}
