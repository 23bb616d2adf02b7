package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/ui/theme"
)

// TokenPicker builds a sentence from a shuffled pool of word tokens. Each
// pool position can be used once.
type TokenPicker struct {
	Pool   []string
	picked []int // pool positions, in pick order
}

// NewTokenPicker creates a picker over pool, restoring an earlier answer
// by matching tokens left to right.
func NewTokenPicker(pool []string, answer []string) TokenPicker {
	t := TokenPicker{Pool: pool}
	used := make([]bool, len(pool))
	for _, tok := range answer {
		for i, p := range pool {
			if !used[i] && p == tok {
				used[i] = true
				t.picked = append(t.picked, i)
				break
			}
		}
	}
	return t
}

// Update picks a token with its number key, drops the last one with
// backspace and clears everything with ctrl+u. changed reports whether the
// answer changed.
func (t TokenPicker) Update(msg tea.Msg) (TokenPicker, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, false
	}

	key := kmsg.String()
	switch key {
	case "backspace":
		if len(t.picked) == 0 {
			return t, false
		}
		t.picked = t.picked[:len(t.picked)-1]
		return t, true
	case "ctrl+u":
		if len(t.picked) == 0 {
			return t, false
		}
		t.picked = nil
		return t, true
	}

	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(t.Pool) {
		return t, false
	}
	if t.used(n - 1) {
		return t, false
	}
	t.picked = append(t.picked, n-1)
	return t, true
}

func (t TokenPicker) used(i int) bool {
	for _, p := range t.picked {
		if p == i {
			return true
		}
	}
	return false
}

// Answer returns the picked tokens in order.
func (t TokenPicker) Answer() []string {
	out := make([]string, 0, len(t.picked))
	for _, i := range t.picked {
		out = append(out, t.Pool[i])
	}
	return out
}

// View renders the sentence so far and the numbered pool.
func (t TokenPicker) View() string {
	var b strings.Builder
	sentence := strings.Join(t.Answer(), " ")
	if sentence == "" {
		b.WriteString(theme.Hint.Render("Pick words with their numbers."))
	} else {
		b.WriteString(theme.Body.Bold(true).Render(sentence))
	}
	b.WriteString("\n\n")

	parts := make([]string, 0, len(t.Pool))
	for i, tok := range t.Pool {
		label := fmt.Sprintf("%d %s", i+1, tok)
		if t.used(i) {
			parts = append(parts, theme.TokenUsed.Render(label))
		} else {
			parts = append(parts, theme.Token.Render(label))
		}
	}
	b.WriteString(strings.Join(parts, " "))
	return b.String()
}
