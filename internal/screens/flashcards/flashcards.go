package flashcards

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/ui/components"
	"github.com/abhisek/prava/internal/ui/layout"
	"github.com/abhisek/prava/internal/ui/theme"
)

// FlashcardsScreen flips through a lesson's flashcards.
type FlashcardsScreen struct {
	title   string
	cards   []api.Flashcard
	idx     int
	flipped bool
}

var _ screen.Screen = (*FlashcardsScreen)(nil)
var _ screen.KeyHintProvider = (*FlashcardsScreen)(nil)

// New creates a deck over d's flashcards.
func New(d *api.LessonDetail) *FlashcardsScreen {
	return &FlashcardsScreen{title: d.Title, cards: d.Flashcards}
}

func (s *FlashcardsScreen) Init() tea.Cmd {
	return nil
}

func (s *FlashcardsScreen) Title() string {
	return "Flashcards: " + s.title
}

func (s *FlashcardsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Flip"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FlashcardsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(s.cards) == 0 {
		return s, nil
	}

	switch kmsg.String() {
	case "space", " ", "enter", "f":
		s.flipped = !s.flipped
	case "right", "l", "n":
		if s.idx < len(s.cards)-1 {
			s.idx++
			s.flipped = false
		}
	case "left", "h", "p":
		if s.idx > 0 {
			s.idx--
			s.flipped = false
		}
	}
	return s, nil
}

func (s *FlashcardsScreen) View(width, height int) string {
	if len(s.cards) == 0 {
		return layout.RenderLoading(width, "This lesson has no flashcards.")
	}

	card := s.cards[s.idx]
	face, side := card.Front, "English"
	if s.flipped {
		face, side = card.Back, "Română"
	}

	cw := min(layout.ContentWidth(width), 48)
	body := theme.Subtitle.Render(side) + "\n\n" +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(face)
	if s.flipped && card.AudioURL != "" {
		body += "\n\n" + theme.Hint.Render("audio: "+card.AudioURL)
	}

	counter := theme.Subtitle.Render(fmt.Sprintf("%d / %d", s.idx+1, len(s.cards)))
	content := lipgloss.JoinVertical(lipgloss.Center,
		components.Card(body, cw, s.flipped),
		"",
		counter,
	)
	return components.Center(content, width, height)
}
