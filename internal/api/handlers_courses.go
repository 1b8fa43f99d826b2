package api

import (
	"net/http"

	"github.com/example/learnpath/internal/quiz"
	"github.com/example/learnpath/pkg/models"
)

type courseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type quizRequest struct {
	Title     string            `json:"title" validate:"required"`
	Questions []models.Question `json:"questions" validate:"required,min=1"`
}

type submitRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

type submitResponse struct {
	Result *models.QuizResult `json:"result"`
	Grade  quiz.Grade         `json:"grade"`
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.courses.GetAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	course, err := s.courses.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) createCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !s.decode(w, r, &req) {
		return
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	}
	if err := s.courses.Create(r.Context(), course); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (s *Server) courseQuizzes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.courses.GetByID(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}

	quizzes, err := s.quizRepo.GetByCourse(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]models.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, quiz.ForLearner(q, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req quizRequest
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.courses.GetByID(r.Context(), courseID); err != nil {
		s.fail(w, r, err)
		return
	}

	q := &models.Quiz{
		CourseID:  courseID,
		Title:     req.Title,
		Questions: req.Questions,
	}
	if err := quiz.Validate(q); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.quizRepo.Create(r.Context(), q); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req submitRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, grade, err := s.quizzes.Submit(r.Context(), UserIDFromContext(r.Context()), quizID, req.Answers)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Result: result, Grade: grade})
}
