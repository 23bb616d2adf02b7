package lesson

import (
	"errors"
	"math"
	"strings"
)

var (
	// ErrBlocked is returned by Next when the current page is incomplete.
	ErrBlocked = errors.New("current page is not complete")

	// ErrAtStart is returned by Prev on the first page.
	ErrAtStart = errors.New("already at the first page")

	// ErrAtEnd is returned by Next on the last page.
	ErrAtEnd = errors.New("already at the last page")
)

// Response is the learner's answer on an interactive page: typed text for
// listen and dictation, picked tokens for build.
type Response struct {
	Text   string
	Tokens []string
}

// Empty reports whether the response carries no usable answer.
func (r Response) Empty() bool {
	return strings.TrimSpace(r.Text) == "" && len(r.Tokens) == 0
}

// Player is the lesson step sequencer: a linear pointer over pages with a
// per-page completion predicate gating Next. It is not safe for concurrent
// use; the TUI drives it from its single event loop.
type Player struct {
	pages     []Page
	idx       int
	revealed  map[int]bool
	responses map[int]Response

	// high is the highest page index entered; reported trails it until
	// TakeProgress hands out the new value.
	high     int
	reported int
}

// NewPlayer starts a player on the first page.
func NewPlayer(pages []Page) *Player {
	return &Player{
		pages:     pages,
		revealed:  make(map[int]bool),
		responses: make(map[int]Response),
		reported:  -1,
	}
}

func (p *Player) Len() int   { return len(p.pages) }
func (p *Player) Index() int { return p.idx }

// Current returns the page under the pointer.
func (p *Player) Current() Page {
	if len(p.pages) == 0 {
		return Page{}
	}
	return p.pages[p.idx]
}

// AtEnd reports whether the pointer is on the last page.
func (p *Player) AtEnd() bool {
	return p.idx >= len(p.pages)-1
}

// CanProceed evaluates the current page's completion predicate.
func (p *Player) CanProceed() bool {
	if len(p.pages) == 0 {
		return false
	}
	switch p.pages[p.idx].Kind {
	case PageTeach:
		return p.revealed[p.idx]
	case PageBuild, PageListen, PageDictation:
		return !p.responses[p.idx].Empty()
	default:
		return true
	}
}

// Next advances one page if the current page is complete.
func (p *Player) Next() error {
	if p.AtEnd() {
		return ErrAtEnd
	}
	if !p.CanProceed() {
		return ErrBlocked
	}
	p.idx++
	if p.idx > p.high {
		p.high = p.idx
	}
	return nil
}

// Prev moves back one page. Answers on every page are kept.
func (p *Player) Prev() error {
	if p.idx == 0 {
		return ErrAtStart
	}
	p.idx--
	return nil
}

// Reveal marks the current teach page as revealed.
func (p *Player) Reveal() {
	p.revealed[p.idx] = true
}

// Revealed reports whether the current page was revealed.
func (p *Player) Revealed() bool {
	return p.revealed[p.idx]
}

// Response returns the answer stored for the current page.
func (p *Player) Response() Response {
	return p.responses[p.idx]
}

// SetText stores typed text for the current page.
func (p *Player) SetText(s string) {
	r := p.responses[p.idx]
	r.Text = s
	p.responses[p.idx] = r
}

// SetTokens stores the picked token order for the current page.
func (p *Player) SetTokens(tokens []string) {
	r := p.responses[p.idx]
	r.Tokens = append([]string(nil), tokens...)
	p.responses[p.idx] = r
}

// Clear drops the current page's answer, making an interactive page
// incomplete again.
func (p *Player) Clear() {
	delete(p.responses, p.idx)
}

// Percent is round(100 * pages reached / total pages).
func (p *Player) Percent() int {
	if len(p.pages) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.high+1) / float64(len(p.pages))))
}

// TakeProgress returns the current percent when a new high-water page was
// entered since the last call. The first call always reports page 0.
func (p *Player) TakeProgress() (int, bool) {
	if len(p.pages) == 0 || p.high <= p.reported {
		return 0, false
	}
	p.reported = p.high
	return p.Percent(), true
}
