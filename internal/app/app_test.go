package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/router"
	"github.com/abhisek/prava/internal/screens/home"
	"github.com/abhisek/prava/internal/screens/login"
	"github.com/abhisek/prava/internal/screens/placeholder"
	"github.com/abhisek/prava/internal/screens/screentest"
	"github.com/abhisek/prava/internal/screens/welcome"
)

func newApp(t *testing.T, signedIn, skipWelcome bool) AppModel {
	t.Helper()
	deps := screentest.Deps(&api.MockClient{User: &api.User{Username: "ana"}})
	if signedIn {
		if err := deps.Session.LoginWithTokens(context.Background(), "access", "refresh", &api.User{Username: "ana", XP: 120, Streak: 4}); err != nil {
			t.Fatal(err)
		}
	}
	m := New(Options{Deps: deps, SkipWelcome: skipWelcome})
	t.Cleanup(m.Close)
	return m
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestStartsOnWelcome(t *testing.T) {
	m := newApp(t, false, false)
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Fatalf("active = %T", m.router.Active())
	}

	_, cmd := update(m, screentest.Key("x"))
	msg, ok := screentest.Exec(t, cmd).(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("a key leaves the welcome screen")
	}
	if _, ok := msg.Screen.(*login.LoginScreen); !ok {
		t.Errorf("anonymous users land on %T", msg.Screen)
	}
}

func TestSignedInLandsOnHome(t *testing.T) {
	m := newApp(t, true, true)
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T", m.router.Active())
	}
}

func TestLogoutResetsToLogin(t *testing.T) {
	m := newApp(t, true, true)
	m.router.Push(placeholder.New("Category quiz", ""))

	m, _ = update(m, sessionChangedMsg{})
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.router.Depth())
	}
	if _, ok := m.router.Active().(*login.LoginScreen); !ok {
		t.Errorf("active = %T", m.router.Active())
	}
	if !strings.Contains(m.router.View(80, 24), "signed out") {
		t.Error("login shows why it appeared")
	}
}

func TestLoginResetsToHome(t *testing.T) {
	m := newApp(t, false, true)
	m, _ = update(m, sessionChangedMsg{Session: sessionFor("ana")})
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T", m.router.Active())
	}
}

func TestProfileUpdateKeepsStack(t *testing.T) {
	m := newApp(t, true, true)
	m.router.Push(placeholder.New("Category quiz", ""))

	m, cmd := update(m, sessionChangedMsg{Session: sessionFor("ana")})
	if m.router.Depth() != 2 {
		t.Errorf("depth = %d, want 2", m.router.Depth())
	}
	if cmd == nil {
		t.Error("keeps waiting for session changes")
	}
}

func TestSessionCommitIsDelivered(t *testing.T) {
	m := newApp(t, true, true)
	if err := m.deps.Session.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	msg := screentest.Exec(t, m.waitSession())
	changed, ok := msg.(sessionChangedMsg)
	if !ok || changed.Session.IsAuthenticated {
		t.Errorf("msg = %#v", msg)
	}
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	m := newApp(t, true, true)
	if _, cmd := update(m, screentest.Key("esc")); cmd != nil {
		t.Error("esc on the root screen does nothing")
	}

	m.router.Push(placeholder.New("Category quiz", ""))
	_, cmd := update(m, screentest.Key("esc"))
	if _, ok := screentest.Exec(t, cmd).(router.PopScreenMsg); !ok {
		t.Error("esc pops a pushed screen")
	}
}

func TestViewRendersOnceSized(t *testing.T) {
	m := newApp(t, true, true)
	if v := m.View(); v.Content != nil {
		t.Error("nothing is drawn before the first size message")
	}

	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	v := m.View()
	if !v.AltScreen || v.Content == nil {
		t.Error("expected an alt-screen frame")
	}

	m, _ = update(m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if v := m.View(); v.Content == nil {
		t.Error("a small terminal gets the resize message")
	}
}

func sessionFor(name string) auth.Session {
	return auth.Session{
		AccessToken:     "access",
		User:            &api.User{Username: name},
		IsAuthenticated: true,
	}
}
