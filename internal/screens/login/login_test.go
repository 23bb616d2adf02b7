package login

import (
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/screens/screentest"
)

func newTestLogin(client *api.MockClient) *LoginScreen {
	s := New(screentest.Deps(client), "")
	s.Init()
	return s
}

func fillLogin(s *LoginScreen, username, password string) {
	screentest.Type(s, username)
	screentest.Press(s, "tab")
	screentest.Type(s, password)
}

func TestEmptySubmitShowsRequired(t *testing.T) {
	s := newTestLogin(&api.MockClient{})

	screentest.Press(s, "tab")
	_, cmd := screentest.Press(s, "enter")
	if cmd != nil {
		t.Fatal("empty form must not start a request")
	}
	if s.inputs[fieldUsername].Err == "" || s.inputs[fieldPassword].Err == "" {
		t.Error("expected required errors on both fields")
	}
}

func TestEnterMovesToNextField(t *testing.T) {
	s := newTestLogin(&api.MockClient{})
	screentest.Type(s, "demo")
	screentest.Press(s, "enter")
	if s.focus != 1 {
		t.Errorf("focus = %d, want 1", s.focus)
	}
}

func TestLoginSuccess(t *testing.T) {
	client := &api.MockClient{User: &api.User{ID: 1, Username: "demo"}}
	s := newTestLogin(client)
	fillLogin(s, "demo", "demo1234")

	_, cmd := screentest.Press(s, "enter")
	if !s.submitting {
		t.Error("expected submitting state")
	}
	msg := screentest.Exec(t, cmd)
	done, ok := msg.(authDoneMsg)
	if !ok {
		t.Fatalf("expected authDoneMsg, got %T", msg)
	}
	if done.Err != nil {
		t.Fatalf("unexpected error: %v", done.Err)
	}
	s.Update(done)

	sess := s.deps.Session.Session()
	if !sess.IsAuthenticated || sess.AccessToken != "access-demo" {
		t.Errorf("session not stored: %+v", sess)
	}
	if sess.User == nil || sess.User.Username != "demo" {
		t.Error("expected profile fetched after login")
	}
	if s.submitting {
		t.Error("submitting should be cleared")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	client := &api.MockClient{LoginErr: &api.Error{
		Status:  400,
		Message: "Unable to log in with provided credentials.",
		Body:    map[string]any{"non_field_errors": []any{"Unable to log in with provided credentials."}},
	}}
	s := newTestLogin(client)
	fillLogin(s, "demo", "wrong")

	_, cmd := screentest.Press(s, "enter")
	s.Update(screentest.Exec(t, cmd))

	if s.errMsg != "Unable to log in with provided credentials." {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if s.deps.Session.Session().IsAuthenticated {
		t.Error("session must stay anonymous")
	}
	if !strings.Contains(s.View(80, 24), "Unable to log in") {
		t.Error("error should be rendered")
	}
}

func TestLoginServerUnreachable(t *testing.T) {
	client := &api.MockClient{LoginErr: &api.Error{Err: errors.New("connection refused")}}
	s := newTestLogin(client)
	fillLogin(s, "demo", "demo1234")

	_, cmd := screentest.Press(s, "enter")
	s.Update(screentest.Exec(t, cmd))

	if !strings.Contains(s.errMsg, "Can't reach the server") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestToggleToRegister(t *testing.T) {
	s := newTestLogin(&api.MockClient{})
	s.errMsg = "old"

	screentest.Press(s, "ctrl+r")
	if s.mode != modeRegister {
		t.Fatal("expected register mode")
	}
	if len(s.fields()) != 3 {
		t.Errorf("register form has %d fields, want 3", len(s.fields()))
	}
	if s.errMsg != "" {
		t.Error("toggle should clear errors")
	}
	if s.Title() != "Create account" {
		t.Errorf("Title = %q", s.Title())
	}

	screentest.Press(s, "ctrl+r")
	if s.mode != modeLogin {
		t.Error("expected login mode after second toggle")
	}
}

func fillRegister(s *LoginScreen) {
	screentest.Press(s, "ctrl+r")
	screentest.Type(s, "mara")
	screentest.Press(s, "tab")
	screentest.Type(s, "mara@example.com")
	screentest.Press(s, "tab")
	screentest.Type(s, "parola-lunga")
}

func TestRegisterThenLogin(t *testing.T) {
	client := &api.MockClient{}
	s := newTestLogin(client)
	fillRegister(s)

	_, cmd := screentest.Press(s, "enter")
	s.Update(screentest.Exec(t, cmd))

	if len(client.Registered) != 1 || client.Registered[0].Email != "mara@example.com" {
		t.Fatalf("register request not sent: %+v", client.Registered)
	}
	if !s.deps.Session.Session().IsAuthenticated {
		t.Error("register should log in")
	}
}

func TestRegisterFieldErrors(t *testing.T) {
	client := &api.MockClient{RegisterErr: &api.Error{
		Status: 400,
		Body: map[string]any{
			"email":    []any{"Enter a valid email address."},
			"username": []any{"A user with that username already exists."},
			"captcha":  []any{"Required."},
		},
	}}
	s := newTestLogin(client)
	fillRegister(s)

	_, cmd := screentest.Press(s, "enter")
	s.Update(screentest.Exec(t, cmd))

	if got := s.inputs[fieldEmail].Err; got != "Enter a valid email address." {
		t.Errorf("email error = %q", got)
	}
	if got := s.inputs[fieldUsername].Err; got != "A user with that username already exists." {
		t.Errorf("username error = %q", got)
	}
	if s.errMsg != "captcha: Required." {
		t.Errorf("unknown fields go to the form error, got %q", s.errMsg)
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	s := newTestLogin(&api.MockClient{})
	s.submitting = true
	screentest.Press(s, "ctrl+r")
	if s.mode != modeLogin {
		t.Error("toggle must be ignored while a request is in flight")
	}
}

func TestFailureFromOtherFormIsIgnored(t *testing.T) {
	client := &api.MockClient{LoginErr: &api.Error{Status: 400, Message: "Unable to log in with provided credentials."}}
	old := newTestLogin(client)
	fillLogin(old, "demo", "wrong")
	_, cmd := screentest.Press(old, "enter")

	s := newTestLogin(client)
	fillLogin(s, "demo", "demo1234")
	screentest.Press(s, "enter")
	s.Update(screentest.Exec(t, cmd))

	if !s.submitting || s.errMsg != "" {
		t.Errorf("submitting=%v errMsg=%q, want the form still waiting on its own request", s.submitting, s.errMsg)
	}
}
