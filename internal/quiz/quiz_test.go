package quiz

import (
	"context"
	"math/rand"
	"testing"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() *models.Quiz {
	return &models.Quiz{
		ID:       1,
		CourseID: 3,
		Title:    "Capitals",
		Questions: models.Questions{
			{ID: "fr", Prompt: "Capital of France?", Type: models.MultipleChoice, Options: []string{"Paris", "Lyon", "Nice"}, Answer: "Paris"},
			{ID: "de", Prompt: "Capital of Germany?", Type: models.TextInput, Answer: "Berlin"},
			{ID: "us", Prompt: "Capital of the USA?", Type: models.TextInput, Answer: "Washington D.C."},
			{ID: "it", Prompt: "Capital of Italy?", Type: models.MultipleChoice, Options: []string{"Rome", "Milan"}, Answer: "Rome"},
		},
	}
}

func TestGradeAnswers(t *testing.T) {
	g := GradeAnswers(sampleQuiz(), map[string]string{
		"fr": "Paris",
		"de": "  berLIN ",
		"us": "washington   d.c.",
		"it": "rome",
	})

	assert.Equal(t, 3, g.Correct)
	assert.Equal(t, 4, g.Total)
	assert.InDelta(t, 75, g.Score, 1e-9)
	assert.Equal(t, []string{"fr", "de", "us"}, g.Passed)
}

func TestGradeAnswersMissingAndEmpty(t *testing.T) {
	g := GradeAnswers(sampleQuiz(), nil)
	assert.Zero(t, g.Correct)
	assert.Zero(t, g.Score)

	g = GradeAnswers(&models.Quiz{Title: "empty"}, map[string]string{"x": "y"})
	assert.Zero(t, g.Total)
	assert.Zero(t, g.Score)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sampleQuiz()))

	tests := map[string]models.Questions{
		"missing id":        {{Prompt: "p", Type: models.TextInput, Answer: "a"}},
		"duplicate id":      {{ID: "a", Type: models.TextInput, Answer: "x"}, {ID: "a", Type: models.TextInput, Answer: "y"}},
		"answer not listed": {{ID: "a", Type: models.MultipleChoice, Options: []string{"x"}, Answer: "y"}},
		"unknown type":      {{ID: "a", Type: "essay", Answer: "y"}},
		"no answer":         {{ID: "a", Type: models.TextInput}},
	}
	for name, questions := range tests {
		t.Run(name, func(t *testing.T) {
			err := Validate(&models.Quiz{Title: "t", Questions: questions})
			assert.ErrorIs(t, err, ErrInvalidQuiz)
		})
	}

	assert.ErrorIs(t, Validate(&models.Quiz{}), ErrInvalidQuiz)
}

func TestForLearnerHidesAnswers(t *testing.T) {
	q := sampleQuiz()
	public := ForLearner(*q, rand.New(rand.NewSource(7)))

	require.Len(t, public.Questions, len(q.Questions))
	for i, question := range public.Questions {
		assert.Empty(t, question.Answer)
		assert.ElementsMatch(t, q.Questions[i].Options, question.Options)
	}
	assert.Equal(t, "Paris", q.Questions[0].Answer, "original is untouched")
}

func TestSubmitStoresResult(t *testing.T) {
	require.NoError(t, database.Connect(database.DriverSQLite, ":memory:"))
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()

	user := &models.User{Username: "gina", Email: "gina@example.com", PasswordHash: "x"}
	require.NoError(t, database.NewUserRepository().Create(ctx, user))
	course := &models.Course{Title: "Geography"}
	require.NoError(t, database.NewCourseRepository().Create(ctx, course))
	q := sampleQuiz()
	q.CourseID = course.ID
	require.NoError(t, database.NewQuizRepository().Create(ctx, q))

	result, grade, err := NewModule().Submit(ctx, user.ID, q.ID, map[string]string{"fr": "Paris", "it": "Rome"})
	require.NoError(t, err)
	assert.Equal(t, 2, grade.Correct)
	assert.InDelta(t, 50, result.Score, 1e-9)
	assert.NotZero(t, result.ID)

	stored, err := database.NewQuizRepository().ResultsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, course.ID, stored[0].CourseID)

	_, _, err = NewModule().Submit(ctx, user.ID, 999, nil)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
