package browse

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/cmps/pkg/search"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the browser
const (
	ListViewMode ViewMode = iota
	DetailViewMode
)

// Describer produces the inspection report for an extension
type Describer interface {
	Describe(extension string) search.Report
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model represents the Bubble Tea model for the template browser
type Model struct {
	entries   []search.Entry
	describer Describer
	cursor    int
	viewMode  ViewMode
	extWidth  int
	width     int
	height    int

	detail       []string // Lines of the report being viewed
	detailOffset int
}

// NewModel creates a new browser model
func NewModel(entries []search.Entry, describer Describer) Model {
	extWidth := 0
	for _, e := range entries {
		extWidth = max(extWidth, len(e.Extension))
	}

	return Model{
		entries:   entries,
		describer: describer,
		viewMode:  ListViewMode,
		extWidth:  extWidth,
	}
}

// Cursor returns the index of the highlighted entry
func (m Model) Cursor() int {
	return m.cursor
}

// Mode returns the current view mode
func (m Model) Mode() ViewMode {
	return m.viewMode
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg)
		case DetailViewMode:
			return m.updateDetailView(msg)
		}
	}

	return m, nil
}

// updateListView handles key presses in list view mode
func (m Model) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		m.cursor = max(len(m.entries)-1, 0)

	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		report := m.describer.Describe(m.entries[m.cursor].Extension)
		m.detail = strings.Split(strings.TrimRight(FormatDetailedItem(report), "\n"), "\n")
		m.detailOffset = 0
		m.viewMode = DetailViewMode
	}

	return m, nil
}

// updateDetailView handles key presses in detail view mode
func (m Model) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		m.viewMode = ListViewMode
		m.detail = nil

	case "up", "k":
		if m.detailOffset > 0 {
			m.detailOffset--
		}

	case "down", "j":
		if m.detailOffset < len(m.detail)-1 {
			m.detailOffset++
		}
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case ListViewMode:
		return m.renderListView()
	case DetailViewMode:
		return m.renderDetailView()
	}
	return ""
}

// renderListView renders the list view
func (m Model) renderListView() string {
	var b strings.Builder

	header := fmt.Sprintf("cmps templates (%d extensions)", len(m.entries))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString("  No templates found\n")
	}

	// Account for header, footer, and padding
	start, end := visibleWindow(len(m.entries), m.cursor, m.height-6)
	for i := start; i < end; i++ {
		line := FormatCompactListItem(i, m.entries[i], m.extWidth)

		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: show template • q: quit"))

	return b.String()
}

// renderDetailView renders the detail view
func (m Model) renderDetailView() string {
	var b strings.Builder

	lines := m.detail[m.detailOffset:]
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[:m.height-2]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")

	b.WriteString(footerStyle.Render("↑/↓ or j/k: scroll • esc: back to list • q: quit"))

	return b.String()
}

// Run starts the Bubble Tea program
func Run(entries []search.Entry, describer Describer, out io.Writer) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No templates to browse")
		return nil
	}

	p := tea.NewProgram(NewModel(entries, describer), tea.WithAltScreen(), tea.WithOutput(out))
	_, err := p.Run()
	return err
}
