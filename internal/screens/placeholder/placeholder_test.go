package placeholder

import (
	"strings"
	"testing"
)

func TestPlaceholder(t *testing.T) {
	p := New("Category quiz", "Quizzes for Greetings are coming soon.")
	if p.Title() != "Category quiz" {
		t.Errorf("Title = %q", p.Title())
	}
	view := p.View(80, 20)
	if !strings.Contains(view, "Coming Soon") || !strings.Contains(view, "Greetings") {
		t.Errorf("unexpected view:\n%s", view)
	}
	if _, cmd := p.Update(nil); cmd != nil {
		t.Error("placeholder has no commands")
	}
}

func TestPlaceholderDefaultMessage(t *testing.T) {
	if !strings.Contains(New("History", "").View(80, 20), "being built") {
		t.Error("expected default message")
	}
}
