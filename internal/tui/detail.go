package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/store"
)

// detailMode is the modal's state: reading the record or editing a draft.
type detailMode int

const (
	modeViewing detailMode = iota
	modeEditing
)

// DetailModel shows one project. Viewing renders the committed record;
// pressing 'e' snapshots it into an editable form. Cancel always restores
// the committed record verbatim, commit replaces it only on success.
type DetailModel struct {
	store *store.Store
	ctx   context.Context

	// baseline is the last committed record; the form never touches it
	baseline domain.Project

	mode     detailMode
	form     projectForm
	viewport viewport.Model
	spinner  spinner.Model
	saving   bool
	banner   banner

	width  int
	height int
}

// NewDetailModel creates the detail modal in viewing mode.
func NewDetailModel(s *store.Store, ctx context.Context, project domain.Project) DetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	vp := viewport.New(80, 16) // Resized on WindowSizeMsg
	vp.MouseWheelEnabled = true

	m := DetailModel{
		store:    s,
		ctx:      ctx,
		baseline: project,
		viewport: vp,
		spinner:  sp,
	}
	m.updateViewportContent()
	return m
}

// Init initializes the detail modal.
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

// Update handles messages.
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = msg.Height - 10
		if m.viewport.Height < 5 {
			m.viewport.Height = 5
		}
		(&m.form).setWidth(msg.Width)
		m.updateViewportContent()
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProjectSavedMsg:
		if msg.Created {
			return m, nil
		}
		m.saving = false
		if msg.Err != nil {
			// Stay in editing with the draft preserved
			m.banner = errorBanner(fmt.Sprintf("Update failed: %v", msg.Err))
			return m, nil
		}
		m.baseline = msg.Project
		m.mode = modeViewing
		m.banner = successBanner("Project updated")
		m.updateViewportContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.mode == modeEditing {
		return m, (&m.form).updateFocused(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKeyPress processes keyboard input.
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.saving {
		return m, nil
	}

	if m.mode == modeEditing {
		switch msg.String() {
		case "esc":
			// Discard the draft; the baseline was never touched
			m.mode = modeViewing
			m.banner = banner{}
			return m, nil
		case "ctrl+s":
			m.saving = true
			m.banner = banner{}
			edited := m.form.apply(m.baseline)
			return m, tea.Batch(m.spinner.Tick, m.commit(edited))
		}
		cmd, _ := (&m.form).handleKey(msg)
		return m, cmd
	}

	// Viewing mode
	switch msg.String() {
	case "q", "esc":
		return m, func() tea.Msg { return CloseModalMsg{} }
	case "e":
		m.mode = modeEditing
		m.form = newProjectForm(m.baseline)
		(&m.form).setWidth(m.width)
		m.banner = banner{}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// commit sends the edited record through the store.
func (m DetailModel) commit(edited domain.Project) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.store.Update(m.ctx, edited)
		return ProjectSavedMsg{Project: rec, Created: false, Err: err}
	}
}

// View renders the modal.
func (m DetailModel) View() string {
	var b strings.Builder

	name := m.baseline.Name
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(TitleStyle.Render(name))
	b.WriteString("\n")

	visibility := "private"
	if m.baseline.IsPublic {
		visibility = "public"
	}
	b.WriteString(PriorityStyle(string(m.baseline.Priority)).Render(string(m.baseline.Priority)))
	b.WriteString(" ")
	b.WriteString(ChipStyle.Render(visibility))
	b.WriteString("\n\n")

	if m.mode == modeEditing {
		b.WriteString(m.form.view())
		b.WriteString("\n")
		if m.saving {
			b.WriteString(m.spinner.View() + " Saving...")
		} else if m.banner.text != "" {
			b.WriteString(m.banner.View())
		}
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("ctrl+s: save • tab: next field • esc: cancel edits"))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.banner.text != "" {
		b.WriteString(m.banner.View())
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render("e: edit • j/k: scroll • esc: back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// updateViewportContent renders the committed record into the viewing
// viewport: metadata rows first, then the four wrapped prompt zones.
func (m *DetailModel) updateViewportContent() {
	wrapWidth := m.viewport.Width - 2
	if wrapWidth < 30 {
		wrapWidth = 30
	}

	var b strings.Builder

	writeMeta := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(LabelStyle.Render(label + ": "))
		b.WriteString(ValueStyle.Render(value))
		b.WriteString("\n")
	}

	writeMeta("Type", m.baseline.TypeLabel())
	writeMeta("Kind", string(m.baseline.Kind))
	writeMeta("Partner", m.baseline.PartnerClient)
	writeMeta("Status", m.baseline.Status)
	writeMeta("Objective", m.baseline.Objective)
	writeMeta("Next action", m.baseline.NextAction)
	writeMeta("Created", formatCreatedAt(m.baseline.CreatedAt))

	for _, zone := range []struct{ label, text string }{
		{"Marketing prompt", m.baseline.PromptMarketing},
		{"Partner prompt", m.baseline.PromptPartner},
		{"Seller prompt", m.baseline.PromptSeller},
		{"Specialist prompt", m.baseline.PromptSpecialist},
	} {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(zone.label))
		b.WriteString("\n")
		if zone.text == "" {
			b.WriteString(DimStyle.Render("(empty)"))
			b.WriteString("\n")
			continue
		}
		b.WriteString(ValueStyle.Render(wordwrap.String(zone.text, wrapWidth)))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

// formatCreatedAt shortens an RFC3339 timestamp to its date part.
func formatCreatedAt(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
