package personalization

import (
	"math"
	"time"

	"github.com/example/learnpath/pkg/models"
)

const (
	// minutes of study per day counted as fully engaged
	engagedMinutesPerDay = 240.0
	// total minutes after which time_spent saturates
	timeSpentCapMinutes = 6000.0
	// progress points per study hour counted as a full pace
	paceProgressPerHour = 10.0
)

// FeatureVector describes a learner/course pair, every value in [0,1]
type FeatureVector struct {
	Progress        float64 `json:"progress"`
	QuizPerformance float64 `json:"quiz_performance"`
	Engagement      float64 `json:"engagement"`
	TimeSpent       float64 `json:"time_spent"`
	LearningPace    float64 `json:"learning_pace"`
}

// Values returns the vector in model input order
func (f FeatureVector) Values() []float64 {
	return []float64{f.Progress, f.QuizPerformance, f.Engagement, f.TimeSpent, f.LearningPace}
}

// Features builds the feature vector of a learner for one course
func Features(l Learner, courseID int64, now time.Time) FeatureVector {
	return FeatureVector{
		Progress:        clamp01(l.Progress[courseID] / models.MaxProgress),
		QuizPerformance: QuizPerformance(l, courseID),
		Engagement:      EngagementScore(l, now),
		TimeSpent:       math.Min(float64(l.TotalStudyMinutes)/timeSpentCapMinutes, 1),
		LearningPace:    LearningPace(l),
	}
}

// EngagementScore mixes how many courses a learner touched per day since the
// last login with how much of that time was spent studying
func EngagementScore(l Learner, now time.Time) float64 {
	if len(l.Progress) == 0 || l.LastLogin.IsZero() {
		return 0
	}

	days := int(now.Sub(l.LastLogin).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	loginFrequency := float64(len(l.Progress)) / float64(days)
	study := math.Min(float64(l.TotalStudyMinutes)/(float64(days)*engagedMinutesPerDay), 1)
	return math.Min(0.5*loginFrequency+0.5*study, 1)
}

// AveragePerformance is the mean progress over the learner's courses
func AveragePerformance(l Learner) float64 {
	if len(l.Progress) == 0 {
		return 0
	}
	var total float64
	for _, p := range l.Progress {
		total += p
	}
	return total / float64(len(l.Progress))
}

// LearningPace is 0.5 for learners without courses or study time
func LearningPace(l Learner) float64 {
	if len(l.Progress) == 0 || l.TotalStudyMinutes <= 0 {
		return 0.5
	}

	var total float64
	for _, p := range l.Progress {
		total += p
	}
	hours := float64(l.TotalStudyMinutes) / 60
	perHour := total / hours / paceProgressPerHour
	performance := AveragePerformance(l) / models.MaxProgress
	return clamp01((perHour + performance) / 2)
}

// QuizPerformance is the mean quiz score for the course, falling back to the
// mean over every quiz and then to 0
func QuizPerformance(l Learner, courseID int64) float64 {
	var courseSum, allSum float64
	var courseN int
	for _, s := range l.QuizScores {
		allSum += s.Score
		if s.CourseID == courseID {
			courseSum += s.Score
			courseN++
		}
	}
	switch {
	case courseN > 0:
		return clamp01(courseSum / float64(courseN) / 100)
	case len(l.QuizScores) > 0:
		return clamp01(allSum / float64(len(l.QuizScores)) / 100)
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
