package flashcards

import (
	"strings"
	"testing"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/screens/screentest"
)

func testDeck() *FlashcardsScreen {
	return New(&api.LessonDetail{
		Title: "At the table",
		Flashcards: []api.Flashcard{
			{Front: "bread", Back: "pâine"},
			{Front: "water", Back: "apă"},
		},
	})
}

func TestFlip(t *testing.T) {
	s := testDeck()
	if !strings.Contains(s.View(80, 20), "bread") {
		t.Error("front should show first")
	}
	screentest.Press(s, "space")
	view := s.View(80, 20)
	if !strings.Contains(view, "pâine") {
		t.Error("back should show after flip")
	}
	screentest.Press(s, "space")
	if s.flipped {
		t.Error("second flip shows the front again")
	}
}

func TestNavigationResetsFlip(t *testing.T) {
	s := testDeck()
	screentest.Press(s, "space", "right")
	if s.idx != 1 || s.flipped {
		t.Errorf("idx=%d flipped=%v, want 1 false", s.idx, s.flipped)
	}

	screentest.Press(s, "right")
	if s.idx != 1 {
		t.Error("next stops at the last card")
	}

	screentest.Press(s, "left", "left")
	if s.idx != 0 {
		t.Error("prev stops at the first card")
	}
	if !strings.Contains(s.View(80, 20), "1 / 2") {
		t.Error("expected counter")
	}
}

func TestEmptyDeck(t *testing.T) {
	s := New(&api.LessonDetail{Title: "Empty"})
	screentest.Press(s, "space", "right")
	if !strings.Contains(s.View(80, 20), "no flashcards") {
		t.Error("expected empty message")
	}
}
