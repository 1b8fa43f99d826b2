// Package api exposes the platform as a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/metrics"
	"github.com/example/learnpath/internal/quiz"
	"github.com/example/learnpath/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Server holds the dependencies of the HTTP handlers
type Server struct {
	auth            *service.AuthService
	personalization *service.PersonalizationService
	quizzes         *quiz.Module

	users    *database.UserRepository
	courses  *database.CourseRepository
	progress *database.ProgressRepository
	quizRepo *database.QuizRepository
	groups   *database.StudyGroupRepository
	forum    *database.ForumRepository

	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
	metrics   *metrics.Registry
}

// NewServer wires the handlers to their services
func NewServer(auth *service.AuthService, personalization *service.PersonalizationService, logger zerolog.Logger, reg *metrics.Registry) *Server {
	return &Server{
		auth:            auth,
		personalization: personalization,
		quizzes:         quiz.NewModule(),
		users:           database.NewUserRepository(),
		courses:         database.NewCourseRepository(),
		progress:        database.NewProgressRepository(),
		quizRepo:        database.NewQuizRepository(),
		groups:          database.NewStudyGroupRepository(),
		forum:           database.NewForumRepository(),
		validate:        validator.New(),
		sanitizer:       bluemonday.UGCPolicy(),
		log:             logger.With().Str("component", "api").Logger(),
		metrics:         reg,
	}
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(s.auth))

		r.Get("/courses", s.listCourses)
		r.Get("/courses/{id}", s.getCourse)
		r.Get("/courses/{id}/quizzes", s.courseQuizzes)
		r.Post("/quizzes/{id}/submit", s.submitQuiz)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", s.me)
			r.Get("/dashboard", s.dashboard)
			r.Get("/progress", s.myProgress)
			r.Put("/courses/{id}/progress", s.updateProgress)
			r.Get("/courses/{id}/personalized", s.personalized)
			r.Post("/study-time", s.addStudyTime)
			r.Post("/learning-style", s.assessLearningStyle)
			r.Get("/recommendations", s.recommendations)
			r.Put("/telegram", s.linkTelegram)
		})

		r.Route("/study-groups", func(r chi.Router) {
			r.Get("/", s.listStudyGroups)
			r.Post("/", s.createStudyGroup)
			r.Get("/{id}", s.getStudyGroup)
			r.Post("/{id}/join", s.joinStudyGroup)
		})

		r.Route("/forum", func(r chi.Router) {
			r.Get("/", s.listPosts)
			r.Post("/", s.createPost)
			r.Get("/{id}", s.getPost)
			r.Post("/{id}/replies", s.createReply)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnly())
			r.Post("/courses", s.createCourse)
			r.Post("/courses/{id}/quizzes", s.createQuiz)
		})
	})

	return r
}
