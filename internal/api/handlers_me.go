package api

import (
	"net/http"
	"strconv"

	"github.com/example/learnpath/internal/personalization"
	"github.com/example/learnpath/pkg/models"
)

type progressRequest struct {
	Progress *float64 `json:"progress" validate:"required"`
}

type studyTimeRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0,lte=1440"`
}

type learningStyleRequest struct {
	Answers []string `json:"answers" validate:"required,min=1,dive,required"`
}

type telegramRequest struct {
	ChatID int64 `json:"chat_id" validate:"required"`
}

type dashboard struct {
	User         *models.User         `json:"user"`
	Progress     []models.UserCourse  `json:"progress"`
	QuizAverages []models.QuizAverage `json:"quiz_averages"`
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByID(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFromContext(ctx)

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	progress, err := s.progress.GetByUser(ctx, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	averages, err := s.quizRepo.AveragesByUser(ctx, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if progress == nil {
		progress = []models.UserCourse{}
	}
	if averages == nil {
		averages = []models.QuizAverage{}
	}
	writeJSON(w, http.StatusOK, dashboard{User: u, Progress: progress, QuizAverages: averages})
}

func (s *Server) myProgress(w http.ResponseWriter, r *http.Request) {
	rows, err := s.progress.GetByUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.UserCourse{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) updateProgress(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req progressRequest
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.courses.GetByID(r.Context(), courseID); err != nil {
		s.fail(w, r, err)
		return
	}

	uc, err := s.progress.Upsert(r.Context(), UserIDFromContext(r.Context()), courseID, *req.Progress)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uc)
}

func (s *Server) addStudyTime(w http.ResponseWriter, r *http.Request) {
	var req studyTimeRequest
	if !s.decode(w, r, &req) {
		return
	}

	userID := UserIDFromContext(r.Context())
	if err := s.users.AddStudyTime(r.Context(), userID, req.Minutes); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) assessLearningStyle(w http.ResponseWriter, r *http.Request) {
	var req learningStyleRequest
	if !s.decode(w, r, &req) {
		return
	}

	style, err := s.personalization.AssessLearningStyle(r.Context(), UserIDFromContext(r.Context()), req.Answers)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]personalization.LearningStyle{"learning_style": style})
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}

	recs, err := s.personalization.Recommend(r.Context(), UserIDFromContext(r.Context()), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []personalization.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) personalized(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.personalization.Personalized(r.Context(), UserIDFromContext(r.Context()), courseID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) linkTelegram(w http.ResponseWriter, r *http.Request) {
	var req telegramRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.users.SetTelegramChatID(r.Context(), UserIDFromContext(r.Context()), req.ChatID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
