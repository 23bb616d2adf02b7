// Package lesson flattens lesson content into pages and drives the
// step-by-step lesson player.
package lesson

import (
	"encoding/json"
	"fmt"
)

// SectionType is the kind of a content section.
type SectionType string

const (
	SectionOverview  SectionType = "overview"
	SectionTeach     SectionType = "teach"
	SectionVocab     SectionType = "vocab" // alias of teach
	SectionGrammar   SectionType = "grammar"
	SectionPatterns  SectionType = "patterns"
	SectionBuild     SectionType = "build"
	SectionListen    SectionType = "listen"
	SectionDictation SectionType = "dictation"
	SectionReview    SectionType = "review"
)

// Content is the nested lesson document served in LessonDetail.content.
type Content struct {
	Sections []Section `json:"sections"`
}

// Section is one typed block of content. Which list is populated depends
// on Type.
type Section struct {
	Type  SectionType `json:"type"`
	Title string      `json:"title,omitempty"`
	Text  string      `json:"text,omitempty"`

	Items    []VocabItem    `json:"items,omitempty"`    // teach
	Points   []GrammarPoint `json:"points,omitempty"`   // grammar
	Examples []Example      `json:"examples,omitempty"` // patterns
	Tasks    []Task         `json:"tasks,omitempty"`    // build, listen, dictation
}

// VocabItem is one word or phrase to learn.
type VocabItem struct {
	Term          string   `json:"term"`
	Translation   string   `json:"translation"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Example       *Example `json:"example,omitempty"`
	AudioURL      string   `json:"audio_url,omitempty"`
}

// GrammarPoint is a short explanation with examples.
type GrammarPoint struct {
	Title       string    `json:"title"`
	Explanation string    `json:"explanation"`
	Examples    []Example `json:"examples,omitempty"`
}

// Example pairs an English sentence with its Romanian translation.
type Example struct {
	English  string `json:"english"`
	Romanian string `json:"romanian,omitempty"`
}

// Task is an interactive build, listen or dictation exercise.
type Task struct {
	Prompt   string   `json:"prompt"`
	Text     string   `json:"text,omitempty"`   // sentence spoken or to be built
	Tokens   []string `json:"tokens,omitempty"` // build: shuffled word bank
	AudioURL string   `json:"audio_url,omitempty"`
}

// ParseContent decodes and validates a raw content document. A nil or
// empty document yields (nil, nil): the caller falls back to flashcards.
func ParseContent(raw json.RawMessage) (*Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := validateContent(raw); err != nil {
		return nil, err
	}
	var c Content
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode lesson content: %w", err)
	}
	return &c, nil
}
