package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/screens/home"
	"github.com/abhisek/prava/internal/screens/login"
	"github.com/abhisek/prava/internal/screens/welcome"
	"github.com/abhisek/prava/internal/ui/layout"
)

// Options configures the root model.
type Options struct {
	Deps screen.Deps

	// SkipWelcome starts directly on the dashboard or the login screen.
	SkipWelcome bool
}

// sessionChangedMsg carries a session committed by auth.Store.
type sessionChangedMsg struct {
	Session auth.Session
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	deps     screen.Deps
	sessions <-chan auth.Session
	stop     func()
	authed   bool
	width    int
	height   int
}

// New creates the root model. The session store must already be
// initialized; its state picks the first screen.
func New(opts Options) AppModel {
	m := AppModel{deps: opts.Deps}
	if m.deps.Session != nil {
		m.authed = m.deps.Session.Session().IsAuthenticated
		m.sessions, m.stop = m.deps.Session.Subscribe()
	}

	deps := m.deps
	first := landing(deps, m.authed, "")
	if !opts.SkipWelcome {
		first = welcome.New(func() screen.Screen {
			return landing(deps, deps.Session != nil && deps.Session.Session().IsAuthenticated, "")
		})
	}
	m.router = router.New(first)
	return m
}

// landing is the first screen for an auth state: the dashboard when
// signed in, else the login form.
func landing(deps screen.Deps, authed bool, notice string) screen.Screen {
	if authed {
		return home.New(deps)
	}
	return login.New(deps, notice)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.waitSession())
}

// waitSession blocks until the next session commit. It is re-issued after
// every change.
func (m AppModel) waitSession() tea.Cmd {
	ch := m.sessions
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg{Session: s}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionChangedMsg:
		return m.sessionChanged(msg.Session)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// sessionChanged resets the stack when the session crosses the signed-in
// boundary. Profile-only updates just refresh the header.
func (m AppModel) sessionChanged(s auth.Session) (tea.Model, tea.Cmd) {
	wait := m.waitSession()
	if s.IsAuthenticated == m.authed {
		return m, wait
	}

	m.authed = s.IsAuthenticated
	notice := ""
	if !m.authed {
		notice = "You have been signed out."
		m.deps.Logger().Info("session ended")
	} else {
		m.deps.Logger().Info("session started")
	}
	reset := m.router.Reset(landing(m.deps, m.authed, notice))
	return m, tea.Batch(reset, wait)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var xp, streak int
	if m.deps.Session != nil {
		if u := m.deps.Session.Session().User; u != nil {
			xp, streak = u.XP, u.Streak
		}
	}
	header := layout.RenderHeader(title, xp, streak, m.authed, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Close stops listening for session changes.
func (m AppModel) Close() {
	if m.stop != nil {
		m.stop()
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
