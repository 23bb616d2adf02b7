// Package quiz turns answer selections into submission payloads.
package quiz

import (
	"encoding/json"
	"strings"

	"github.com/abhisek/prava/internal/api"
)

// Selection is a learner's answer to one question. Exactly one concrete
// type exists per question kind: Index (mcq), Bool (tf), Text (fill) and
// Tokens (build).
type Selection interface {
	json.Marshaler

	// QType returns the question kind this selection answers.
	QType() api.QType

	isSelection()
}

// Index selects an mcq option by zero-based position.
type Index int

// Bool answers a true/false question.
type Bool bool

// Text is a free-text answer to a fill question.
type Text string

// Tokens is an ordered token list for a build question.
type Tokens []string

func (Index) QType() api.QType  { return api.QTypeMCQ }
func (Bool) QType() api.QType   { return api.QTypeTF }
func (Text) QType() api.QType   { return api.QTypeFill }
func (Tokens) QType() api.QType { return api.QTypeBuild }

func (Index) isSelection()  {}
func (Bool) isSelection()   {}
func (Text) isSelection()   {}
func (Tokens) isSelection() {}

func (s Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index int `json:"index"`
	}{int(s)})
}

func (s Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value bool `json:"value"`
	}{bool(s)})
}

func (s Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{string(s)})
}

func (s Tokens) MarshalJSON() ([]byte, error) {
	toks := []string(s)
	if toks == nil {
		toks = []string{}
	}
	return json.Marshal(struct {
		Tokens []string `json:"tokens"`
	}{toks})
}

// CanProceed reports whether sel is a complete answer to q: its shape must
// match q's kind and it must carry a usable value.
func CanProceed(q api.QuizItem, sel Selection) bool {
	if sel == nil || sel.QType() != q.QType {
		return false
	}
	switch s := sel.(type) {
	case Index:
		return s >= 0 && (len(q.Options) == 0 || int(s) < len(q.Options))
	case Bool:
		return true
	case Text:
		return strings.TrimSpace(string(s)) != ""
	case Tokens:
		return len(s) > 0
	}
	return false
}
