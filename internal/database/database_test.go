package database

import (
	"context"
	"testing"
	"time"

	"github.com/example/learnpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, Connect(DriverSQLite, ":memory:"))
	t.Cleanup(func() { Close() })
	return context.Background()
}

func createUser(t *testing.T, ctx context.Context, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, NewUserRepository().Create(ctx, u))
	return u
}

func createCourse(t *testing.T, ctx context.Context, title string) *models.Course {
	t.Helper()
	c := &models.Course{Title: title, Description: title + " description"}
	require.NoError(t, NewCourseRepository().Create(ctx, c))
	return c
}

func TestConnectCreatesTables(t *testing.T) {
	ctx := setupTestDB(t)

	tables, err := ListTables(ctx)
	require.NoError(t, err)
	for _, want := range []string{"users", "courses", "user_courses", "quizzes", "quiz_results", "study_groups", "study_group_members", "forum_posts", "forum_replies"} {
		assert.Contains(t, tables, want)
	}
	assert.NoError(t, Ping(ctx))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	assert.Error(t, Connect("oracle", "x"))
}

func TestUserRepository(t *testing.T) {
	ctx := setupTestDB(t)
	repo := NewUserRepository()

	u := createUser(t, ctx, "alice")
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Nil(t, got.LastLogin)
	assert.Nil(t, got.LearningStyle)

	login := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, login))
	require.NoError(t, repo.AddStudyTime(ctx, u.ID, 30))
	require.NoError(t, repo.AddStudyTime(ctx, u.ID, 15))
	require.NoError(t, repo.SetLearningStyle(ctx, u.ID, "auditory"))
	require.NoError(t, repo.SetTelegramChatID(ctx, u.ID, 4242))

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, login.Equal(*got.LastLogin))
	assert.Equal(t, 45, got.TotalStudyTime)
	require.NotNil(t, got.LearningStyle)
	assert.Equal(t, "auditory", *got.LearningStyle)
	require.NotNil(t, got.TelegramChatID)
	assert.Equal(t, int64(4242), *got.TelegramChatID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.AddStudyTime(ctx, 999, 10), ErrNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCourseRepository(t *testing.T) {
	ctx := setupTestDB(t)
	repo := NewCourseRepository()

	c := createCourse(t, ctx, "Intro to Go")
	createCourse(t, ctx, "Databases")

	got, err := repo.GetByTitle(ctx, "INTRO TO GO")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got.Content = "goroutines and channels"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "goroutines and channels", got.Content)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Intro to Go", all[0].Title)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.Course{ID: 404, Title: "x"}), ErrNotFound)
}

func TestProgressRepositoryUpsertClamps(t *testing.T) {
	ctx := setupTestDB(t)
	repo := NewProgressRepository()
	u := createUser(t, ctx, "bob")
	c := createCourse(t, ctx, "Statistics")

	first, err := repo.Upsert(ctx, u.ID, c.ID, 40)
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, u.ID, c.ID, 140)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 100.0, second.Progress)

	rows, err := repo.GetByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].Progress)
	assert.Equal(t, "Statistics", rows[0].CourseTitle)

	_, err = repo.Upsert(ctx, u.ID, c.ID, -5)
	require.NoError(t, err)
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Zero(t, all[0].Progress)
}

func TestQuizRepository(t *testing.T) {
	ctx := setupTestDB(t)
	repo := NewQuizRepository()
	u := createUser(t, ctx, "carol")
	c := createCourse(t, ctx, "Algebra")

	quiz := &models.Quiz{
		CourseID: c.ID,
		Title:    "Basics",
		Questions: models.Questions{
			{ID: "q1", Prompt: "2+2?", Type: models.MultipleChoice, Options: []string{"3", "4"}, Answer: "4"},
		},
	}
	require.NoError(t, repo.Create(ctx, quiz))

	got, err := repo.GetByID(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "4", got.Questions[0].Answer)

	byCourse, err := repo.GetByCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	require.NoError(t, repo.SaveResult(ctx, &models.QuizResult{UserID: u.ID, QuizID: quiz.ID, Score: 50}))
	require.NoError(t, repo.SaveResult(ctx, &models.QuizResult{UserID: u.ID, QuizID: quiz.ID, Score: 100}))

	results, err := repo.ResultsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, c.ID, results[0].CourseID)

	averages, err := repo.AveragesByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, averages, 1)
	assert.Equal(t, "Basics", averages[0].QuizTitle)
	assert.InDelta(t, 75, averages[0].AverageScore, 1e-9)

	_, err = repo.GetByID(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudyGroupRepository(t *testing.T) {
	ctx := setupTestDB(t)
	repo := NewStudyGroupRepository()
	owner := createUser(t, ctx, "dave")
	other := createUser(t, ctx, "erin")
	c := createCourse(t, ctx, "Physics")

	group := &models.StudyGroup{Name: "Mechanics", CourseID: c.ID}
	require.NoError(t, repo.Create(ctx, group, owner.ID))
	require.NoError(t, repo.Join(ctx, group.ID, other.ID))
	require.NoError(t, repo.Join(ctx, group.ID, other.ID))

	members, err := repo.Members(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "dave", members[0].Username)

	groups, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForumRepository(t *testing.T) {
	ctx := setupTestDB(t)
	repo := NewForumRepository()
	u := createUser(t, ctx, "frank")
	c := createCourse(t, ctx, "Chemistry")

	first := &models.ForumPost{Title: "Hello", Content: "first", UserID: u.ID, CourseID: c.ID}
	second := &models.ForumPost{Title: "Again", Content: "second", UserID: u.ID, CourseID: c.ID}
	require.NoError(t, repo.CreatePost(ctx, first))
	require.NoError(t, repo.CreatePost(ctx, second))

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, "frank", posts[0].Author)

	require.NoError(t, repo.CreateReply(ctx, &models.ForumReply{Content: "welcome", UserID: u.ID, PostID: first.ID}))
	replies, err := repo.Replies(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "welcome", replies[0].Content)

	post, err := repo.GetPost(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)

	_, err = repo.GetPost(ctx, 500)
	assert.ErrorIs(t, err, ErrNotFound)
}
