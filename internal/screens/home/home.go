package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/screens/catalog"
	"github.com/abhisek/prava/internal/screens/history"
	"github.com/abhisek/prava/internal/screens/placeholder"
	quizscreen "github.com/abhisek/prava/internal/screens/quiz"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// dashboardMsg is dropped by any dashboard other than the one that asked;
// after a sign-out and sign-in it may belong to another account.
type dashboardMsg struct {
	from    *HomeScreen
	User    *api.User
	Summary *api.Summary
	Err     error
}

type logoutDoneMsg struct {
	Err error
}

// HomeScreen is the dashboard shown after sign-in.
type HomeScreen struct {
	deps    screen.Deps
	menu    components.Menu
	user    *api.User
	summary *api.Summary
	loading bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the dashboard. The cached session user is shown until the
// fresh profile arrives.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, loading: true}
	if deps.Session != nil {
		h.user = deps.Session.Session().User
	}

	items := []components.MenuItem{
		{Label: "Browse lessons", Hint: "categories and lessons", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: catalog.NewCategories(deps)}
			}
		}},
		{Label: "Random quiz", Hint: "questions from every lesson", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: quizscreen.NewRandom(deps)}
			}
		}},
		{Label: "History", Hint: "quizzes taken on this device", Action: func() tea.Cmd {
			if deps.Events == nil {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: placeholder.New("History", "Local history is unavailable without a database.")}
				}
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps)}
			}
		}},
		{Label: "Refresh", Action: func() tea.Cmd {
			h.loading = true
			h.errMsg = ""
			return h.load()
		}},
		{Label: "Log out", Action: func() tea.Cmd {
			return h.logout()
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// load fetches the profile and the summary concurrently. A rejected
// access token is refreshed once; when that fails too the session is
// cleared and the app returns to the login screen.
func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		user, summary, err := fetchDashboard(ctx, deps.Client)
		if api.IsUnauthorized(err) && deps.Session != nil {
			if rerr := deps.Session.Refresh(ctx, deps.Client); rerr != nil {
				deps.Logger().Info("session expired", "error", rerr)
				if lerr := deps.Session.Logout(ctx); lerr != nil {
					deps.Logger().Warn("clear session failed", "error", lerr)
				}
				return dashboardMsg{from: h, Err: err}
			}
			user, summary, err = fetchDashboard(ctx, deps.Client)
		}
		if err != nil {
			return dashboardMsg{from: h, Err: err}
		}
		if deps.Session != nil {
			if serr := deps.Session.SetUser(ctx, user); serr != nil {
				deps.Logger().Warn("store profile failed", "error", serr)
			}
		}
		return dashboardMsg{from: h, User: user, Summary: summary}
	}
}

func fetchDashboard(ctx context.Context, c api.Client) (*api.User, *api.Summary, error) {
	var (
		user    *api.User
		summary *api.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.Me(gctx)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		s, err := c.Summary(gctx)
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		summary = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return user, summary, nil
}

func (h *HomeScreen) logout() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		err := deps.Session.Logout(context.Background())
		if err != nil {
			deps.Logger().Warn("logout failed", "error", err)
		}
		return logoutDoneMsg{Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		if msg.from != h {
			return h, nil
		}
		h.loading = false
		if msg.Err != nil {
			h.errMsg = api.UserMessage(msg.Err)
			return h, nil
		}
		h.errMsg = ""
		h.user = msg.User
		h.summary = msg.Summary
		return h, nil

	case logoutDoneMsg:
		if msg.Err != nil {
			h.errMsg = "Could not log out: " + msg.Err.Error()
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	var sections []string

	name := "there"
	if h.user != nil && h.user.Username != "" {
		name = h.user.Username
	}
	greeting := theme.Title.Render("Hi, " + name + "!")
	if h.user != nil && h.user.Level > 0 {
		greeting += "  " + theme.Subtitle.Render(fmt.Sprintf("Level %d", h.user.Level))
	}
	sections = append(sections, greeting)

	switch {
	case h.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(h.errMsg))
	case h.loading && h.summary == nil:
		sections = append(sections, theme.Hint.Render("Loading your progress..."))
	}

	if h.summary != nil {
		sections = append(sections, renderStats(h.summary, cw))
		if recent := renderRecent(h.summary.Recent); recent != "" {
			sections = append(sections, recent)
		}
	}

	sections = append(sections, h.menu.View())

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderStats(s *api.Summary, cw int) string {
	accent := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := theme.Subtitle

	lines := []string{
		accent.Render(fmt.Sprintf("%d XP", s.XP)) + dim.Render("   ") +
			accent.Render(fmt.Sprintf("%d day streak", s.Streak)),
		dim.Render(fmt.Sprintf("Lessons: %d completed, %d in progress", s.LessonsCompleted, s.LessonsInProgress)),
		dim.Render(fmt.Sprintf("Quizzes: %d taken, %.0f%% average", s.QuizAttempts, s.AverageScore)),
	}
	return components.Card(strings.Join(lines, "\n"), cw, false)
}

func renderRecent(recent []api.RecentAttempt) string {
	if len(recent) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Recent activity"))
	for _, r := range recent {
		title := r.LessonTitle
		if title == "" {
			title = "Random quiz"
		}
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(fmt.Sprintf("  %-30s %5.0f%%", title, r.Score)))
	}
	return b.String()
}
