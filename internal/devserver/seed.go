package devserver

import (
	"encoding/json"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/lesson"
)

// answerKey is the server-side correct answer for one question. Exactly one
// field is meaningful, matching the question's qtype.
type answerKey struct {
	Index  int
	Value  bool
	Text   string
	Tokens []string
}

type lessonRecord struct {
	detail   api.LessonDetail
	category string
	order    int
	keys     map[int]answerKey // by question id
}

type catalog struct {
	categories []api.Category
	lessons    map[int]*lessonRecord
	byCategory map[string][]int
}

func (c *catalog) add(rec *lessonRecord) {
	c.lessons[rec.detail.ID] = rec
	c.byCategory[rec.category] = append(c.byCategory[rec.category], rec.detail.ID)
	for i := range c.categories {
		if c.categories[i].Slug == rec.category {
			c.categories[i].LessonCount++
		}
	}
}

func mustContent(c lesson.Content) json.RawMessage {
	b, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}
	return b
}

func seedCatalog() *catalog {
	c := &catalog{
		categories: []api.Category{
			{ID: 1, Slug: "greetings", Name: "Greetings", Description: "Saying hello, goodbye and introducing yourself."},
			{ID: 2, Slug: "food", Name: "Food & drink", Description: "Ordering, eating and talking about food."},
		},
		lessons:    make(map[int]*lessonRecord),
		byCategory: make(map[string][]int),
	}

	c.add(&lessonRecord{
		category: "greetings",
		order:    1,
		detail: api.LessonDetail{
			ID:         1,
			Title:      "Hello and goodbye",
			Difficulty: "beginner",
			BodyMD:     "# Hello and goodbye\n\nEveryday greetings for any time of day.",
			Content: mustContent(lesson.Content{Sections: []lesson.Section{
				{Type: lesson.SectionOverview, Title: "Hello and goodbye", Text: "You will learn five greetings and when to use them."},
				{Type: lesson.SectionTeach, Title: "New words", Items: []lesson.VocabItem{
					{Term: "hello", Translation: "salut", Pronunciation: "heh-LOH", Example: &lesson.Example{English: "Hello, Maria!", Romanian: "Salut, Maria!"}},
					{Term: "good morning", Translation: "bună dimineața", Pronunciation: "good MOR-ning"},
					{Term: "good evening", Translation: "bună seara"},
					{Term: "goodbye", Translation: "la revedere"},
					{Term: "thank you", Translation: "mulțumesc", Pronunciation: "THANK-yoo"},
				}},
				{Type: lesson.SectionGrammar, Points: []lesson.GrammarPoint{
					{
						Title:       "Formal and informal",
						Explanation: "'Hi' and 'hello' work with friends. Use 'good morning' or 'good evening' with people you don't know.",
						Examples:    []lesson.Example{{English: "Good morning, sir.", Romanian: "Bună dimineața, domnule."}},
					},
				}},
				{Type: lesson.SectionPatterns, Title: "Patterns", Examples: []lesson.Example{
					{English: "Hello, how are you?", Romanian: "Salut, ce faci?"},
					{English: "Goodbye, see you tomorrow.", Romanian: "La revedere, ne vedem mâine."},
				}},
				{Type: lesson.SectionBuild, Tasks: []lesson.Task{
					{Prompt: "Build: Bună dimineața, Ion!", Text: "Good morning, Ion!", Tokens: []string{"Ion!", "Good", "morning,"}},
				}},
				{Type: lesson.SectionListen, Tasks: []lesson.Task{
					{Prompt: "Type the word you hear.", Text: "goodbye"},
				}},
				{Type: lesson.SectionDictation, Tasks: []lesson.Task{
					{Prompt: "Write the sentence you hear.", Text: "Thank you very much."},
				}},
				{Type: lesson.SectionReview, Text: "Great job! You can now greet people at any time of day."},
			}}),
			Flashcards: []api.Flashcard{
				{ID: 1, Front: "hello", Back: "salut"},
				{ID: 2, Front: "good morning", Back: "bună dimineața"},
				{ID: 3, Front: "goodbye", Back: "la revedere"},
				{ID: 4, Front: "thank you", Back: "mulțumesc"},
			},
			Questions: []api.QuizItem{
				{ID: 1, QType: api.QTypeMCQ, Prompt: "How do you say „mulțumesc” in English?", Options: []string{"Hello", "Thank you", "Sorry"}},
				{ID: 2, QType: api.QTypeTF, Prompt: "'Good evening' is used when arriving somewhere at night."},
				{ID: 3, QType: api.QTypeFill, Prompt: "Good ___! (dimineața)", Blanks: 1},
				{ID: 4, QType: api.QTypeBuild, Prompt: "Build: Mă bucur să te cunosc.", Tokens: []string{"you", "to", "meet", "Nice"}},
			},
		},
		keys: map[int]answerKey{
			1: {Index: 1},
			2: {Value: true},
			3: {Text: "morning"},
			4: {Tokens: []string{"Nice", "to", "meet", "you"}},
		},
	})

	c.add(&lessonRecord{
		category: "greetings",
		order:    2,
		detail: api.LessonDetail{
			ID:         2,
			Title:      "Introducing yourself",
			Difficulty: "beginner",
			BodyMD:     "Say your name, where you are from and ask about others.",
			Content: mustContent(lesson.Content{Sections: []lesson.Section{
				{Type: lesson.SectionVocab, Items: []lesson.VocabItem{
					{Term: "my name is", Translation: "numele meu este"},
					{Term: "I am from", Translation: "sunt din"},
					{Term: "nice to meet you", Translation: "îmi pare bine"},
				}},
				{Type: lesson.SectionGrammar, Points: []lesson.GrammarPoint{
					{Title: "The verb 'to be'", Explanation: "I am, you are, he/she is. 'I am from Romania.'"},
				}},
				{Type: lesson.SectionBuild, Tasks: []lesson.Task{
					{Prompt: "Build: Sunt din România.", Text: "I am from Romania.", Tokens: []string{"from", "I", "Romania.", "am"}},
				}},
			}}),
			Questions: []api.QuizItem{
				{ID: 5, QType: api.QTypeMCQ, Prompt: "„Sunt din Cluj” means…", Options: []string{"I live in Cluj", "I am from Cluj", "I like Cluj"}},
				{ID: 6, QType: api.QTypeTF, Prompt: "'He are from Iași' is correct."},
			},
		},
		keys: map[int]answerKey{
			5: {Index: 1},
			6: {Value: false},
		},
	})

	c.add(&lessonRecord{
		category: "food",
		order:    1,
		detail: api.LessonDetail{
			ID:         3,
			Title:      "At the table",
			Difficulty: "beginner",
			BodyMD:     "Basic words for meals.",
			Flashcards: []api.Flashcard{
				{ID: 5, Front: "bread", Back: "pâine"},
				{ID: 6, Front: "water", Back: "apă"},
				{ID: 7, Front: "apple", Back: "măr"},
			},
			Questions: []api.QuizItem{
				{ID: 7, QType: api.QTypeFill, Prompt: "A glass of ___ (apă)"},
				{ID: 8, QType: api.QTypeMCQ, Prompt: "„Pâine” is…", Options: []string{"bread", "butter", "beer"}},
			},
		},
		keys: map[int]answerKey{
			7: {Text: "water"},
			8: {Index: 0},
		},
	})

	return c
}
