package devserver

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/prava/internal/api"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	// Paginated envelope, like a DRF list view with pagination enabled.
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(s.catalog.categories),
		"results": s.catalog.categories,
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	for _, c := range s.catalog.categories {
		if c.Slug == slug {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleCategoryLessons(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ids, ok := s.catalog.byCategory[slug]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	s.mu.Lock()
	acct := s.currentAccount(r)
	out := make([]api.LessonSummary, 0, len(ids))
	for _, id := range ids {
		rec := s.catalog.lessons[id]
		out = append(out, api.LessonSummary{
			ID:         id,
			Title:      rec.detail.Title,
			Difficulty: rec.detail.Difficulty,
			Order:      rec.order,
			Progress:   float64(acct.progress[id]),
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	// Bare array: lesson lists are not paginated.
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	rec, ok := s.catalog.lessons[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, rec.detail)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req api.ProgressUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if _, ok := s.catalog.lessons[req.LessonID]; !ok {
		errs.add("lesson_id", "Invalid pk \""+strconv.Itoa(req.LessonID)+"\" - object does not exist.")
	}
	if req.Percent < 0 || req.Percent > 100 {
		errs.add("percent", "Ensure this value is between 0 and 100.")
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	acct := s.currentAccount(r)
	if req.Percent > acct.progress[req.LessonID] {
		acct.progress[req.LessonID] = req.Percent
	}
	stored := acct.progress[req.LessonID]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.ProgressUpdate{LessonID: req.LessonID, Percent: stored})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.currentAccount(r)

	sum := api.Summary{XP: acct.XP, Streak: acct.Streak, QuizAttempts: len(acct.attempts)}
	for _, pct := range acct.progress {
		switch {
		case pct >= 100:
			sum.LessonsCompleted++
		case pct > 0:
			sum.LessonsInProgress++
		}
	}

	var total float64
	for _, a := range acct.attempts {
		total += a.score
	}
	if len(acct.attempts) > 0 {
		sum.AverageScore = total / float64(len(acct.attempts))
	}

	for i := len(acct.attempts) - 1; i >= 0 && len(sum.Recent) < 5; i-- {
		a := acct.attempts[i]
		sum.Recent = append(sum.Recent, api.RecentAttempt{
			LessonID:    a.lessonID,
			LessonTitle: a.title,
			Score:       a.score,
			CreatedAt:   a.at.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, sum)
}
