// Package screentest has helpers for driving screens in tests.
package screentest

import (
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/store"
)

var named = map[string]rune{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEscape,
	"tab":       tea.KeyTab,
	"backspace": tea.KeyBackspace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"space":     tea.KeySpace,
}

// Key builds a key press from a name like "enter", "shift+tab", "ctrl+r"
// or a single printable character.
func Key(name string) tea.KeyPressMsg {
	var mod tea.KeyMod
	for {
		switch {
		case strings.HasPrefix(name, "ctrl+"):
			mod |= tea.ModCtrl
			name = strings.TrimPrefix(name, "ctrl+")
			continue
		case strings.HasPrefix(name, "shift+"):
			mod |= tea.ModShift
			name = strings.TrimPrefix(name, "shift+")
			continue
		}
		break
	}
	if code, ok := named[name]; ok {
		return tea.KeyPressMsg{Code: code, Mod: mod}
	}
	r := []rune(name)[0]
	if mod != 0 {
		return tea.KeyPressMsg{Code: r, Mod: mod}
	}
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Press sends each named key to s in order and returns the last command.
func Press(s screen.Screen, keys ...string) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		s, cmd = s.Update(Key(k))
	}
	return s, cmd
}

// Type sends text to s one rune at a time.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}

// Exec runs cmd and returns its message. It fails the test on a nil cmd.
// Only use it on commands known not to sleep.
func Exec(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

// Deps returns screen dependencies backed by a mock client and an
// in-memory session.
func Deps(client *api.MockClient) screen.Deps {
	return screen.Deps{
		Client:         client,
		Session:        auth.NewStore(nil, nil),
		RandomQuizSize: 5,
	}
}

// Events opens a throwaway SQLite store and returns its event log.
func Events(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "prava.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}
