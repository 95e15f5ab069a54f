package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scdig/internal/formatter"
	"github.com/desertthunder/scdig/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryView ViewState = iota
	ConfirmView
)

// Model is the category picker shown before links are opened.
type Model struct {
	view      ViewState
	summary   *models.Summary
	skip      int
	limit     int
	width     int
	height    int
	list      list.Model
	links     []formatter.Link
	choice    string
	confirmed bool
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a picker over the categories of summary.
//
// skip and limit are applied when previewing how many links a choice opens.
func NewModel(summary *models.Summary, skip, limit int) *Model {
	l := list.New(categoryItems(summary), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Open links from"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return &Model{
		view:    CategoryView,
		summary: summary,
		skip:    skip,
		limit:   limit,
		list:    l,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd { return nil }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CategoryView:
			return m.handleCategoryKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case CategoryView:
		return m.renderCategories()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

// Choice returns the picked category name and whether opening was confirmed.
func (m *Model) Choice() (string, bool) {
	return m.choice, m.confirmed
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		item, ok := m.list.SelectedItem().(categoryItem)
		if !ok {
			return m, nil
		}
		links, err := formatter.Flatten(m.summary, item.name, m.skip, m.limit)
		m.choice, m.links, m.err = item.name, links, err
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.err != nil || len(m.links) == 0 {
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = CategoryView
		m.choice, m.links, m.err = "", nil, nil
		return m, nil
	case key.Matches(msg, m.keys.quit):
		m.choice = ""
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) renderCategories() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
}

func (m *Model) renderConfirm() string {
	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", Error(fmt.Sprintf("Error: %v", m.err)), m.help.ShortHelpView(helpKeys[1:]))
	}
	if len(m.links) == 0 {
		return fmt.Sprintf("%s\n\n%s", Warning(fmt.Sprintf("No links to open in %s", m.choice)), m.help.ShortHelpView(helpKeys[1:]))
	}

	title := Title(fmt.Sprintf("Open %d links from %s?", len(m.links), m.choice))
	var preview string
	for i, l := range m.links {
		if i == 5 {
			preview += Muted(fmt.Sprintf("\n  … %d more", len(m.links)-i))
			break
		}
		preview += fmt.Sprintf("\n  • %s %s", l.Title, Muted(l.URL))
	}
	return fmt.Sprintf("%s%s\n\n%s", title, preview, m.help.ShortHelpView(helpKeys))
}

// PickCategory runs the picker on in/out and returns the chosen category.
//
// ok is false when the user quit without confirming.
func PickCategory(summary *models.Summary, skip, limit int, in io.Reader, out io.Writer) (choice string, ok bool, err error) {
	m := NewModel(summary, skip, limit)
	final, err := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", false, fmt.Errorf("category picker failed: %w", err)
	}
	choice, ok = final.(*Model).Choice()
	return choice, ok, nil
}
