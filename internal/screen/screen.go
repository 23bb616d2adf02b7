package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/logger"
	"github.com/abhisek/prava/internal/store"
	"github.com/abhisek/prava/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Deps carries the services screens need. Screens pass it down to the
// screens they open.
type Deps struct {
	Client  api.Client
	Session *auth.Store

	// Events is the local event log. It may be nil.
	Events store.EventRepo
	Log    *logger.Logger

	// RandomQuizSize is the number of items requested for a random quiz.
	RandomQuizSize int
}

// Logger returns d.Log, or a no-op logger when none is set.
func (d Deps) Logger() *logger.Logger {
	if d.Log == nil {
		return logger.Nop()
	}
	return d.Log
}
