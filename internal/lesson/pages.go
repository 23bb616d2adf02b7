package lesson

import (
	"fmt"
	"strings"

	"github.com/abhisek/prava/internal/api"
)

// PageKind is the kind of a flattened lesson page.
type PageKind string

const (
	PageOverview  PageKind = "overview"
	PageTeach     PageKind = "teach"
	PageGrammar   PageKind = "grammar"
	PagePattern   PageKind = "pattern"
	PageBuild     PageKind = "build"
	PageListen    PageKind = "listen"
	PageDictation PageKind = "dictation"
	PageReview    PageKind = "review"
)

// Interactive reports whether the page takes a typed or built answer.
func (k PageKind) Interactive() bool {
	return k == PageBuild || k == PageListen || k == PageDictation
}

// Page is one navigable unit of the lesson player. Exactly one of Vocab,
// Grammar, Example and Task is set for the non-overview, non-review kinds.
type Page struct {
	Kind  PageKind
	Title string
	Body  string

	Vocab   *VocabItem
	Grammar *GrammarPoint
	Example *Example
	Task    *Task
}

// Flatten turns a lesson into pages: one overview first, then one page per
// vocab item, grammar point, pattern example and task in section order,
// then one review last. With no content, flashcards become teach pages.
func Flatten(d *api.LessonDetail, content *Content) []Page {
	var (
		overview *Section
		review   *Section
		middle   []Page
		learned  []VocabItem
	)

	if content != nil {
		for i := range content.Sections {
			sec := &content.Sections[i]
			switch sec.Type {
			case SectionOverview:
				if overview == nil {
					overview = sec
				}
			case SectionReview:
				review = sec
			case SectionTeach, SectionVocab:
				for j := range sec.Items {
					item := sec.Items[j]
					middle = append(middle, Page{Kind: PageTeach, Title: titleOr(sec.Title, "New words"), Vocab: &item})
					learned = append(learned, item)
				}
			case SectionGrammar:
				for j := range sec.Points {
					pt := sec.Points[j]
					middle = append(middle, Page{Kind: PageGrammar, Title: titleOr(pt.Title, titleOr(sec.Title, "Grammar")), Body: pt.Explanation, Grammar: &pt})
				}
			case SectionPatterns:
				for j := range sec.Examples {
					ex := sec.Examples[j]
					middle = append(middle, Page{Kind: PagePattern, Title: titleOr(sec.Title, "Patterns"), Example: &ex})
				}
			case SectionBuild, SectionListen, SectionDictation:
				for j := range sec.Tasks {
					task := sec.Tasks[j]
					middle = append(middle, Page{Kind: taskKind(sec.Type), Title: titleOr(sec.Title, taskTitle(sec.Type)), Task: &task})
				}
			}
		}
	} else {
		for _, fc := range d.Flashcards {
			item := VocabItem{Term: fc.Front, Translation: fc.Back, AudioURL: fc.AudioURL}
			middle = append(middle, Page{Kind: PageTeach, Title: "New words", Vocab: &item})
			learned = append(learned, item)
		}
	}

	pages := make([]Page, 0, len(middle)+2)
	pages = append(pages, overviewPage(d, overview, len(middle)))
	pages = append(pages, middle...)
	pages = append(pages, reviewPage(review, learned))
	return pages
}

func overviewPage(d *api.LessonDetail, sec *Section, steps int) Page {
	p := Page{Kind: PageOverview, Title: d.Title}
	switch {
	case sec != nil && sec.Text != "":
		p.Body = sec.Text
		if sec.Title != "" {
			p.Title = sec.Title
		}
	case d.BodyMD != "":
		p.Body = d.BodyMD
	default:
		p.Body = fmt.Sprintf("This lesson has %d steps.", steps)
	}
	return p
}

func reviewPage(sec *Section, learned []VocabItem) Page {
	p := Page{Kind: PageReview, Title: "Review"}
	if sec != nil {
		if sec.Title != "" {
			p.Title = sec.Title
		}
		p.Body = sec.Text
	}
	if p.Body == "" {
		var b strings.Builder
		if len(learned) == 0 {
			b.WriteString("Lesson complete.")
		} else {
			b.WriteString("Words in this lesson:\n")
			for _, v := range learned {
				fmt.Fprintf(&b, "\n  %s: %s", v.Term, v.Translation)
			}
		}
		p.Body = b.String()
	}
	return p
}

func taskKind(t SectionType) PageKind {
	switch t {
	case SectionBuild:
		return PageBuild
	case SectionListen:
		return PageListen
	default:
		return PageDictation
	}
}

func taskTitle(t SectionType) string {
	switch t {
	case SectionBuild:
		return "Build the sentence"
	case SectionListen:
		return "Listen"
	default:
		return "Dictation"
	}
}

func titleOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
