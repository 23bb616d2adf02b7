package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screens/catalog"
	"github.com/abhisek/prava/internal/screens/placeholder"
	quizscreen "github.com/abhisek/prava/internal/screens/quiz"
	"github.com/abhisek/prava/internal/screens/screentest"
)

func newTestHome(t *testing.T, client *api.MockClient) *HomeScreen {
	t.Helper()
	deps := screentest.Deps(client)
	err := deps.Session.LoginWithTokens(context.Background(), "access-ana", "refresh-ana", &api.User{Username: "ana", XP: 10})
	if err != nil {
		t.Fatal(err)
	}
	return New(deps)
}

func TestDashboardLoads(t *testing.T) {
	client := &api.MockClient{
		User: &api.User{Username: "ana", XP: 120, Streak: 4, Level: 2},
		SummaryResp: &api.Summary{
			XP: 120, Streak: 4, LessonsCompleted: 3, LessonsInProgress: 1,
			QuizAttempts: 5, AverageScore: 82,
			Recent: []api.RecentAttempt{{LessonID: 1, LessonTitle: "Greetings", Score: 90}, {Score: 60}},
		},
	}
	h := newTestHome(t, client)

	if !strings.Contains(h.View(100, 40), "Loading your progress") {
		t.Error("expected loading line before the fetch returns")
	}
	if !strings.Contains(h.View(100, 40), "Hi, ana!") {
		t.Error("cached session user is shown while loading")
	}

	h.Update(screentest.Exec(t, h.Init()))

	if h.loading || h.errMsg != "" {
		t.Fatalf("loading=%v errMsg=%q", h.loading, h.errMsg)
	}
	view := h.View(100, 40)
	for _, want := range []string{"Level 2", "120 XP", "4 day streak", "3 completed, 1 in progress", "82% average", "Greetings", "Random quiz"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := h.deps.Session.Session().User.XP; got != 120 {
		t.Errorf("session user XP = %d, want the fresh profile", got)
	}
}

func TestDashboardExpiredSessionLogsOut(t *testing.T) {
	client := &api.MockClient{
		MeErr:      &api.Error{Status: 401, Message: "Token expired."},
		RefreshErr: &api.Error{Status: 401, Message: "Token is invalid or expired"},
	}
	h := newTestHome(t, client)
	h.Update(screentest.Exec(t, h.Init()))

	if h.deps.Session.Session().IsAuthenticated {
		t.Error("a failed refresh clears the session")
	}
	if h.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestDashboardRefreshKeepsSession(t *testing.T) {
	// The access token is refreshed, but the mock keeps rejecting /me/.
	client := &api.MockClient{MeErr: &api.Error{Status: 401}}
	h := newTestHome(t, client)
	h.Update(screentest.Exec(t, h.Init()))

	sess := h.deps.Session.Session()
	if !sess.IsAuthenticated || sess.AccessToken != "refreshed-refresh-ana" {
		t.Errorf("session = %+v", sess)
	}
	if h.errMsg == "" {
		t.Error("the second failure is reported")
	}
}

func TestMenuNavigation(t *testing.T) {
	h := newTestHome(t, &api.MockClient{})

	_, cmd := screentest.Press(h, "enter")
	msg := screentest.Exec(t, cmd).(router.PushScreenMsg)
	if _, ok := msg.Screen.(*catalog.CategoriesScreen); !ok {
		t.Errorf("browse pushed %T", msg.Screen)
	}

	_, cmd = screentest.Press(h, "down", "enter")
	msg = screentest.Exec(t, cmd).(router.PushScreenMsg)
	if _, ok := msg.Screen.(*quizscreen.QuizScreen); !ok {
		t.Errorf("random quiz pushed %T", msg.Screen)
	}

	_, cmd = screentest.Press(h, "down", "enter")
	msg = screentest.Exec(t, cmd).(router.PushScreenMsg)
	if _, ok := msg.Screen.(*placeholder.PlaceholderScreen); !ok {
		t.Errorf("history without a database pushed %T", msg.Screen)
	}
}

func TestLogout(t *testing.T) {
	h := newTestHome(t, &api.MockClient{})
	_, cmd := screentest.Press(h, "down", "down", "down", "down", "enter")
	if h.menu.Items[h.menu.Selected].Label != "Log out" {
		t.Fatalf("selected %q", h.menu.Items[h.menu.Selected].Label)
	}
	h.Update(screentest.Exec(t, cmd))

	if h.deps.Session.Session().IsAuthenticated {
		t.Error("logout clears the session")
	}
	if h.errMsg != "" {
		t.Errorf("errMsg = %q", h.errMsg)
	}
}

func TestQuit(t *testing.T) {
	h := newTestHome(t, &api.MockClient{})
	_, cmd := screentest.Press(h, "down", "down", "down", "down", "down", "enter")
	if _, ok := screentest.Exec(t, cmd).(tea.QuitMsg); !ok {
		t.Error("quit item quits")
	}
}

func TestDashboardFromOtherScreenIsIgnored(t *testing.T) {
	client := &api.MockClient{
		User:        &api.User{Username: "ana", XP: 120, Level: 2},
		SummaryResp: &api.Summary{XP: 120, LessonsCompleted: 3},
	}
	previous := newTestHome(t, client)
	pending := previous.Init()
	h := New(previous.deps)

	h.Update(screentest.Exec(t, pending))
	if !h.loading || h.summary != nil {
		t.Fatal("a dashboard must only take the data it asked for")
	}

	h.Update(screentest.Exec(t, h.Init()))
	if h.loading || h.summary == nil || h.summary.LessonsCompleted != 3 {
		t.Errorf("loading=%v summary=%+v", h.loading, h.summary)
	}
}
