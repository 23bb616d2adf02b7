package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prava/internal/ui/theme"
)

// Choice is a single-select option list used for multiple-choice and
// true/false questions. Chosen is -1 until the learner picks an option.
type Choice struct {
	Options []string
	Cursor  int
	Chosen  int
}

// NewChoice creates a choice list. chosen restores an earlier pick; pass -1
// for none.
func NewChoice(options []string, chosen int) Choice {
	c := Choice{Options: options, Chosen: -1}
	if chosen >= 0 && chosen < len(options) {
		c.Chosen = chosen
		c.Cursor = chosen
	}
	return c
}

// Update moves the cursor with arrows and picks with enter, space or a
// number key. picked is true when the message chose an option.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "enter", "space", " ":
		if len(c.Options) > 0 {
			c.Chosen = c.Cursor
			return c, true
		}
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(c.Options) {
			c.Cursor = n - 1
			c.Chosen = n - 1
			return c, true
		}
	}
	return c, false
}

// View renders the options with the cursor and the chosen mark.
func (c Choice) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor {
			prefix = "▸ "
		}
		mark := "( )"
		if i == c.Chosen {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %d. %s", prefix, mark, i+1, opt)
		switch {
		case i == c.Chosen:
			b.WriteString(theme.Correct.Render(line))
		case i == c.Cursor:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
