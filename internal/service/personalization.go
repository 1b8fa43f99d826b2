package service

import (
	"context"
	"strings"
	"time"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/personalization"
	"github.com/example/learnpath/pkg/models"
	"github.com/rs/zerolog"
)

// PersonalizationService loads learners from storage and runs the engine on
// them. Nothing is cached: every call reads the current rows.
type PersonalizationService struct {
	engine       *personalization.Engine
	users        *database.UserRepository
	courses      *database.CourseRepository
	progress     *database.ProgressRepository
	quizzes      *database.QuizRepository
	log          zerolog.Logger
	defaultCount int
}

func NewPersonalizationService(engine *personalization.Engine, defaultCount int, logger zerolog.Logger) *PersonalizationService {
	return &PersonalizationService{
		engine:       engine,
		users:        database.NewUserRepository(),
		courses:      database.NewCourseRepository(),
		progress:     database.NewProgressRepository(),
		quizzes:      database.NewQuizRepository(),
		log:          logger.With().Str("component", "personalization_service").Logger(),
		defaultCount: defaultCount,
	}
}

// LoadLearner builds the engine's view of a user
func (s *PersonalizationService) LoadLearner(ctx context.Context, userID int64) (personalization.Learner, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return personalization.Learner{}, err
	}
	rows, err := s.progress.GetByUser(ctx, userID)
	if err != nil {
		return personalization.Learner{}, err
	}
	results, err := s.quizzes.ResultsByUser(ctx, userID)
	if err != nil {
		return personalization.Learner{}, err
	}

	l := learnerFromUser(*u)
	for _, uc := range rows {
		l.Progress[uc.CourseID] = uc.Progress
	}
	for _, r := range results {
		l.QuizScores = append(l.QuizScores, personalization.QuizScore{CourseID: r.CourseID, QuizID: r.QuizID, Score: r.Score})
	}
	return l, nil
}

// Roster returns every learner with their progress rows
func (s *PersonalizationService) Roster(ctx context.Context) ([]personalization.Learner, error) {
	rows, err := s.progress.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64]*personalization.Learner)
	var order []int64
	for _, uc := range rows {
		l, ok := byUser[uc.UserID]
		if !ok {
			l = &personalization.Learner{ID: uc.UserID, Progress: make(map[int64]float64)}
			byUser[uc.UserID] = l
			order = append(order, uc.UserID)
		}
		l.Progress[uc.CourseID] = uc.Progress
	}

	roster := make([]personalization.Learner, 0, len(order))
	for _, id := range order {
		roster = append(roster, *byUser[id])
	}
	return roster, nil
}

// Recommend returns up to n hybrid recommendations. Storage failures are
// logged and give an empty list.
func (s *PersonalizationService) Recommend(ctx context.Context, userID int64, n int) ([]personalization.Recommendation, error) {
	if n <= 0 {
		n = s.defaultCount
	}

	learner, err := s.LoadLearner(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.courses.GetAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load catalog, no recommendations")
		return []personalization.Recommendation{}, nil
	}
	roster, err := s.Roster(ctx)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load roster, no recommendations")
		return []personalization.Recommendation{}, nil
	}

	return s.engine.Recommend(learner, catalog, roster, n), nil
}

// Personalized adapts one course to the user
func (s *PersonalizationService) Personalized(ctx context.Context, userID, courseID int64) (*personalization.Personalized, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	learner, err := s.LoadLearner(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := s.engine.PersonalizedContent(learner, *course)
	return &out, nil
}

// AssessLearningStyle classifies questionnaire answers and stores the style.
// A questionnaire without any non-blank answer keeps the stored style.
func (s *PersonalizationService) AssessLearningStyle(ctx context.Context, userID int64, answers []string) (personalization.LearningStyle, error) {
	if !hasAnswer(answers) {
		return "", personalization.ErrNoResponses
	}
	style := s.engine.AssessLearningStyle(answers)
	if err := s.users.SetLearningStyle(ctx, userID, string(style)); err != nil {
		return "", err
	}
	return style, nil
}

func hasAnswer(answers []string) bool {
	for _, a := range answers {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

func learnerFromUser(u models.User) personalization.Learner {
	l := personalization.Learner{
		ID:                u.ID,
		TotalStudyMinutes: u.TotalStudyTime,
		Progress:          make(map[int64]float64),
	}
	if u.LearningStyle != nil {
		if style, ok := personalization.ParseLearningStyle(*u.LearningStyle); ok {
			l.LearningStyle = style
		}
	}
	if u.LastLogin != nil {
		l.LastLogin = u.LastLogin.In(time.UTC)
	}
	return l
}
