package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/session"
	"github.com/myfiredeal/firedeal/internal/store"
)

// Layout constants
const (
	cardLines    = 5 // Lines per summary card including border
	dashboardPad = 2
)

// DashboardModel is the main screen: the project collection partitioned
// into one tab per kind, with a summary card per project.
type DashboardModel struct {
	// Dependencies
	store  *store.Store
	holder *session.Holder
	ctx    context.Context

	// UI components
	keymap  KeyMap
	help    HelpModel
	spinner spinner.Model

	// View state
	activeKind   domain.Kind
	selected     int
	scrollOffset int
	width        int
	height       int
	showHelp     bool
	loading      bool
	banner       banner
	profileName  string
}

// NewDashboardModel creates the dashboard on the first kind tab.
func NewDashboardModel(s *store.Store, holder *session.Holder, ctx context.Context) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return DashboardModel{
		store:      s,
		holder:     holder,
		ctx:        ctx,
		keymap:     DefaultKeyMap(),
		help:       NewHelpModel(DefaultKeyMap()),
		spinner:    sp,
		activeKind: domain.KindSubsidiary,
		loading:    true,
	}
}

// Init starts the spinner and requests the window size.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ProjectsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.banner = errorBanner(fmt.Sprintf("Load failed: %v", msg.Err))
		}
		(&m).clampSelection()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "tab":
		m.activeKind = nextKind(m.activeKind)
		m.selected = 0
		m.scrollOffset = 0
	case "j", "down":
		(&m).moveSelection(1)
	case "k", "up":
		(&m).moveSelection(-1)
	case "n":
		kind := m.activeKind
		return m, func() tea.Msg { return OpenCreateMsg{Kind: kind} }
	case "enter":
		projects := m.store.ByKind(m.activeKind)
		if m.selected < len(projects) {
			id := projects[m.selected].ID
			return m, func() tea.Msg { return OpenDetailMsg{ID: id} }
		}
	case "r":
		m.loading = true
		m.banner = banner{}
		return m, tea.Batch(m.spinner.Tick, m.refresh())
	case "ctrl+o":
		return m, m.signOut()
	}

	return m, nil
}

// refresh reloads the whole collection.
func (m DashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		err := m.store.Load(m.ctx)
		return ProjectsLoadedMsg{Err: err}
	}
}

// signOut clears the session. Local state is cleared regardless of the
// provider call's outcome, so this never fails.
func (m DashboardModel) signOut() tea.Cmd {
	return func() tea.Msg {
		m.holder.SignOut(m.ctx)
		return SignedOutMsg{}
	}
}

// moveSelection moves the card selection up or down by delta.
func (m *DashboardModel) moveSelection(delta int) {
	projects := m.store.ByKind(m.activeKind)
	if len(projects) == 0 {
		return
	}

	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(projects) {
		m.selected = len(projects) - 1
	}
	m.adjustScroll(len(projects))
}

// clampSelection keeps the selection valid after the collection changed.
func (m *DashboardModel) clampSelection() {
	projects := m.store.ByKind(m.activeKind)
	if m.selected >= len(projects) {
		if len(projects) > 0 {
			m.selected = len(projects) - 1
		} else {
			m.selected = 0
		}
	}
	m.adjustScroll(len(projects))
}

// adjustScroll ensures the selected card is visible.
func (m *DashboardModel) adjustScroll(total int) {
	visible := m.visibleCards()
	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	}
	if m.selected >= m.scrollOffset+visible {
		m.scrollOffset = m.selected - visible + 1
	}
	if m.scrollOffset < 0 || total <= visible {
		m.scrollOffset = 0
	}
}

// visibleCards returns how many summary cards fit in the current height.
func (m DashboardModel) visibleCards() int {
	height := m.height
	if height == 0 {
		height = 24
	}
	// header + tabs + banner + help hint
	n := (height - 5) / cardLines
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderTabs())

	if m.banner.text != "" {
		sections = append(sections, m.banner.View())
	}

	if m.showHelp {
		sections = append(sections, m.help.View(width))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	projects := m.store.ByKind(m.activeKind)

	switch {
	case m.loading && m.store.Len() == 0:
		sections = append(sections, "\n"+m.spinner.View()+" Loading projects...")
	case len(projects) == 0:
		sections = append(sections, "\n"+DimStyle.Render(fmt.Sprintf("No %s projects yet. Press 'n' to create one.", strings.ToLower(string(m.activeKind)))))
	default:
		sections = append(sections, m.renderCards(projects, width))
	}

	sections = append(sections, HelpStyle.Render("tab: switch • n: new • enter: open • r: refresh • ctrl+o: sign out • ?: help"))

	return lipgloss.NewStyle().Padding(0, dashboardPad).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderHeader renders the title line with the profile name and counts.
func (m DashboardModel) renderHeader(width int) string {
	title := TitleStyle.Render("MY FIRE DEAL")

	var statusParts []string
	if m.loading {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}
	statusParts = append(statusParts, fmt.Sprintf("%d projects", m.store.Len()))
	if m.profileName != "" {
		statusParts = append(statusParts, m.profileName)
	}
	status := DimStyle.Render(strings.Join(statusParts, " | "))

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2*dashboardPad - 2
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + status
}

// renderTabs renders the kind tab bar with per-tab counts.
func (m DashboardModel) renderTabs() string {
	var tabs []string
	for _, kind := range domain.Kinds {
		label := fmt.Sprintf("%s (%d)", kind, len(m.store.ByKind(kind)))
		if kind == m.activeKind {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderCards renders the visible window of project summary cards.
func (m DashboardModel) renderCards(projects []domain.Project, width int) string {
	visible := m.visibleCards()
	end := m.scrollOffset + visible
	if end > len(projects) {
		end = len(projects)
	}

	var parts []string
	if m.scrollOffset > 0 {
		parts = append(parts, DimStyle.Render(fmt.Sprintf("↑ %d more", m.scrollOffset)))
	}

	cardWidth := width - 2*dashboardPad - 4
	if cardWidth < 30 {
		cardWidth = 30
	}

	for i := m.scrollOffset; i < end; i++ {
		parts = append(parts, m.renderCard(projects[i], i == m.selected, cardWidth))
	}

	if remaining := len(projects) - end; remaining > 0 {
		parts = append(parts, DimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderCard renders one project summary card.
func (m DashboardModel) renderCard(p domain.Project, selected bool, width int) string {
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}

	visibility := "private"
	if p.IsPublic {
		visibility = "public"
	}

	titleLine := SelectedItemStyle.Render(name)
	if !selected {
		titleLine = NormalItemStyle.Render(name)
	}
	chips := PriorityStyle(string(p.Priority)).Render(string(p.Priority)) + " " +
		ChipStyle.Render(visibility)

	padding := width - lipgloss.Width(titleLine) - lipgloss.Width(chips) - 2
	if padding < 1 {
		padding = 1
	}
	header := titleLine + strings.Repeat(" ", padding) + chips

	meta := LabelStyle.Render("Type: ") + ValueStyle.Render(truncate(p.TypeLabel(), 24))
	if p.PartnerClient != "" {
		meta += LabelStyle.Render("  Partner: ") + ValueStyle.Render(truncate(p.PartnerClient, 24))
	}
	if p.Status != "" {
		meta += LabelStyle.Render("  Status: ") + ValueStyle.Render(truncate(p.Status, 24))
	}

	next := ""
	if p.Objective != "" {
		next = LabelStyle.Render("Objective: ") + ValueStyle.Render(truncate(p.Objective, width/2-12))
	}
	if p.NextAction != "" {
		if next != "" {
			next += "  "
		}
		next += LabelStyle.Render("Next: ") + ValueStyle.Render(truncate(p.NextAction, width/2-8))
	}
	if next == "" {
		next = DimStyle.Render("No objective or next action set")
	}

	body := lipgloss.JoinVertical(lipgloss.Left, header, meta, next)

	style := CardBorderStyle
	if selected {
		style = SelectedCardBorderStyle
	}
	return style.Width(width).Render(body)
}

// nextKind cycles through the kind tabs in order.
func nextKind(k domain.Kind) domain.Kind {
	for i, kind := range domain.Kinds {
		if kind == k {
			return domain.Kinds[(i+1)%len(domain.Kinds)]
		}
	}
	return domain.Kinds[0]
}

// truncate shortens s to max characters with an ellipsis.
func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
