package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/session"
	"github.com/myfiredeal/firedeal/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenInitializing AppScreen = iota
	ScreenLogin
	ScreenDashboard
	ScreenCreate
	ScreenDetail
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from session resolution -> login -> dashboard,
// with the create and detail modals layered on top of the dashboard.
type AppModel struct {
	// Dependencies
	store  *store.Store
	holder *session.Holder
	log    *zap.Logger
	ctx    context.Context

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error

	// Resolved context
	profileName string

	// Cached dashboard to preserve tab/selection state across modals
	dashboard *DashboardModel
}

// NewAppModel creates the root model. The screen stays on the initializing
// state until the persisted session has been resolved; nothing else renders
// before that.
func NewAppModel(s *store.Store, holder *session.Holder, log *zap.Logger, ctx context.Context) AppModel {
	return AppModel{
		store:         s,
		holder:        holder,
		log:           log,
		ctx:           ctx,
		currentScreen: ScreenInitializing,
	}
}

// Init resolves the persisted session and starts listening for session
// replacements.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.resolveSession(), m.watchSession())
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case SessionResolvedMsg:
		if msg.Session == nil {
			return m.showLogin(""), nil
		}
		next := m.showDashboard()
		return next, tea.Batch(next.loadProjects(), next.loadProfile())

	case SessionChangedMsg:
		cmds := []tea.Cmd{m.watchSession()}
		if msg.Session == nil && m.currentScreen != ScreenLogin && m.currentScreen != ScreenInitializing {
			// Session invalidated (refresh failure or sign-out)
			m.profileName = ""
			m.dashboard = nil
			next := m.showLogin("")
			return next, tea.Batch(cmds...)
		}
		return m, tea.Batch(cmds...)

	case SignedInMsg:
		if msg.Err != nil {
			// Let the login form render the failure
			break
		}
		next := m.showDashboard()
		return next, tea.Batch(next.loadProjects(), next.loadProfile())

	case SignedOutMsg:
		m.profileName = ""
		m.dashboard = nil
		return m.showLogin("Signed out"), nil

	case ProfileLoadedMsg:
		m.profileName = msg.Name
		if m.dashboard != nil {
			m.dashboard.profileName = msg.Name
		}
		return m, nil

	case OpenCreateMsg:
		m.currentScreen = ScreenCreate
		createModel := NewCreateModel(m.store, m.ctx, msg.Kind)
		m.currentModel = createModel
		return m, createModel.Init()

	case OpenDetailMsg:
		project, ok := m.store.Get(msg.ID)
		if !ok {
			m.currentScreen = ScreenDashboard
			m.currentModel = m.dashboard
			return m, nil
		}
		m.currentScreen = ScreenDetail
		detailModel := NewDetailModel(m.store, m.ctx, project)
		m.currentModel = detailModel
		return m, detailModel.Init()

	case CloseModalMsg:
		m.currentScreen = ScreenDashboard
		m.currentModel = m.dashboard
		return m, tea.WindowSize()

	case ProjectSavedMsg:
		// Handled here so a write that resolves after its modal closed
		// still lands: the store was already updated by the command, the
		// dashboard just needs to reflect it.
		if msg.Err == nil && m.dashboard != nil {
			// A no-row create that resynced without finding its record
			// yields a zero record; keep the current tab in that case.
			if msg.Project.Kind != "" {
				m.dashboard.activeKind = msg.Project.Kind
			}
			if msg.Created {
				m.dashboard.banner = successBanner("Project saved")
			} else {
				m.dashboard.banner = successBanner("Project updated")
			}
		}
		if m.currentScreen == ScreenCreate || m.currentScreen == ScreenDetail {
			// The modal decides whether to close or stay open with the draft
			break
		}
		return m, nil
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep the cached dashboard in sync when it is the active screen
		if m.currentScreen == ScreenDashboard {
			if dm, ok := m.currentModel.(DashboardModel); ok {
				m.dashboard = &dm
			}
		}
		return m, cmd
	}

	return m, nil
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return "Resolving session...\n\nPress Ctrl+C to quit"
}

// showLogin switches to the login screen.
func (m AppModel) showLogin(notice string) AppModel {
	m.currentScreen = ScreenLogin
	loginModel := NewLoginModel(m.holder, m.ctx)
	if notice != "" {
		loginModel.banner = successBanner(notice)
	}
	m.currentModel = loginModel
	return m
}

// showDashboard switches to the dashboard, creating it when there is none
// cached yet.
func (m AppModel) showDashboard() AppModel {
	m.currentScreen = ScreenDashboard
	if m.dashboard == nil {
		dm := NewDashboardModel(m.store, m.holder, m.ctx)
		dm.profileName = m.profileName
		m.dashboard = &dm
	}
	m.currentModel = m.dashboard
	return m
}

// resolveSession restores the persisted session, if any, before the first
// real screen is shown.
func (m AppModel) resolveSession() tea.Cmd {
	return func() tea.Msg {
		sess := m.holder.Resolve(m.ctx)
		return SessionResolvedMsg{Session: sess}
	}
}

// loadProjects replaces the collection with the gateway's list for the
// current session.
func (m AppModel) loadProjects() tea.Cmd {
	return func() tea.Msg {
		err := m.store.Load(m.ctx)
		return ProjectsLoadedMsg{Err: err}
	}
}

// loadProfile fetches the display name shown in the dashboard header. Best
// effort: a failure only logs.
func (m AppModel) loadProfile() tea.Cmd {
	return func() tea.Msg {
		name, err := m.holder.ProfileName(m.ctx)
		if err != nil {
			m.log.Warn("profile load failed", zap.Error(err))
			return ProfileLoadedMsg{}
		}
		return ProfileLoadedMsg{Name: name}
	}
}

// watchSession blocks on the holder's change channel and surfaces the next
// replacement. It is re-armed after every delivery.
func (m AppModel) watchSession() tea.Cmd {
	return func() tea.Msg {
		sess, ok := <-m.holder.Changes()
		if !ok {
			return nil
		}
		return SessionChangedMsg{Session: sess}
	}
}

func successBanner(text string) banner {
	return banner{text: text, isError: false}
}

func errorBanner(text string) banner {
	return banner{text: text, isError: true}
}

// banner is a one-line status shown under a screen title until the next
// action replaces it.
type banner struct {
	text    string
	isError bool
}

func (b banner) View() string {
	if b.text == "" {
		return ""
	}
	if b.isError {
		return ErrorStyle.Render("✗ " + b.text)
	}
	return SuccessStyle.Render("✓ " + b.text)
}
