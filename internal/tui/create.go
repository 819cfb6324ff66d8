package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/store"
)

// CreateModel is the create-project modal.
type CreateModel struct {
	store *store.Store
	ctx   context.Context

	form    projectForm
	spinner spinner.Model
	saving  bool
	banner  banner
	width   int
	height  int
}

// NewCreateModel creates the form pre-filled with the given kind, so a new
// project lands on the tab the user was looking at.
func NewCreateModel(s *store.Store, ctx context.Context, kind domain.Kind) CreateModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return CreateModel{
		store:   s,
		ctx:     ctx,
		form:    newProjectForm(domain.NewDraft(kind)),
		spinner: sp,
	}
}

// Init initializes the create modal.
func (m CreateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

// Update handles messages.
func (m CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m.form).setWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProjectSavedMsg:
		if !msg.Created {
			return m, nil
		}
		m.saving = false
		if msg.Err != nil {
			// Draft stays intact so the user can retry
			m.banner = errorBanner(fmt.Sprintf("Save failed: %v", msg.Err))
			return m, nil
		}
		return m, func() tea.Msg { return CloseModalMsg{} }

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, (&m.form).updateFocused(msg)
}

// handleKeyPress processes keyboard input.
func (m CreateModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.saving {
		// One submission at a time
		return m, nil
	}

	switch msg.String() {
	case "esc":
		// Discard the draft
		return m, func() tea.Msg { return CloseModalMsg{} }

	case "ctrl+s":
		m.saving = true
		m.banner = banner{}
		draft := m.form.apply(domain.NewDraft(m.form.kind))
		return m, tea.Batch(m.spinner.Tick, m.save(draft))
	}

	cmd, _ := (&m.form).handleKey(msg)
	return m, cmd
}

// save commits the draft through the store.
func (m CreateModel) save(draft domain.Project) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.store.Create(m.ctx, draft)
		return ProjectSavedMsg{Project: rec, Created: true, Err: err}
	}
}

// View renders the form.
func (m CreateModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("New project"))
	b.WriteString("\n\n")
	b.WriteString(m.form.view())

	b.WriteString("\n")
	if m.saving {
		b.WriteString(m.spinner.View() + " Saving...")
	} else if m.banner.text != "" {
		b.WriteString(m.banner.View())
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("ctrl+s: save • tab: next field • ←/→: change selects • esc: cancel"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
