package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/metrics"
	"github.com/example/learnpath/internal/personalization"
	"github.com/example/learnpath/internal/quiz"
	"github.com/example/learnpath/internal/service"
	"github.com/example/learnpath/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, database.Connect(database.DriverSQLite, ":memory:"))
	t.Cleanup(func() { database.Close() })

	reg := metrics.New(prometheus.NewRegistry())
	engine := personalization.New(personalization.DefaultConfig(), zerolog.Nop(), reg)
	require.NoError(t, engine.Init())

	srv := NewServer(
		service.NewAuthService("test-secret"),
		service.NewPersonalizationService(engine, 5, zerolog.Nop()),
		zerolog.Nop(),
		reg,
	)
	return &testServer{t: t, handler: srv.Router()}
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) register(username, role string) string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp tokenResponse
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(ts.t, resp.Token)
	return resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rec, &body)
	return body["error"]
}

func (ts *testServer) createCourse(token, title, description string) models.Course {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/admin/courses", token, courseRequest{
		Title:       title,
		Description: description,
		Content:     description + " lessons and exercises",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Course
	decodeBody(ts.t, rec, &c)
	return c
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = ts.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `learnpath_http_request_seconds_count{method="GET",route="/health",status="200"} 1`)
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.register("alice", "")

	rec := ts.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "bob", "email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "Email")

	rec = ts.do(http.MethodPost, "/auth/login", "", loginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/auth/login", "", loginRequest{Username: "alice", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.NotNil(t, resp.User.LastLogin)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/courses", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := ts.register("alice", "")
	rec = ts.do(http.MethodPost, "/admin/courses", user, courseRequest{Title: "Go"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCoursesAndQuizzes(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register("admin", models.RoleAdmin)
	user := ts.register("alice", "")

	course := ts.createCourse(admin, "Go Basics", "goroutines and channels")

	rec := ts.do(http.MethodGet, "/courses", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []models.Course
	decodeBody(t, rec, &courses)
	require.Len(t, courses, 1)
	assert.Equal(t, "Go Basics", courses[0].Title)

	rec = ts.do(http.MethodGet, "/courses/999", user, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodGet, "/courses/abc", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	invalid := quizRequest{
		Title: "Broken",
		Questions: []models.Question{
			{ID: "q1", Prompt: "Pick", Type: models.MultipleChoice, Options: []string{"a", "b"}, Answer: "c"},
		},
	}
	rec = ts.do(http.MethodPost, fmt.Sprintf("/admin/courses/%d/quizzes", course.ID), admin, invalid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	valid := quizRequest{
		Title: "Channels",
		Questions: []models.Question{
			{ID: "q1", Prompt: "Keyword to start a goroutine", Type: models.TextInput, Answer: "go"},
			{ID: "q2", Prompt: "Unbuffered send blocks?", Type: models.MultipleChoice, Options: []string{"yes", "no"}, Answer: "yes"},
		},
	}
	rec = ts.do(http.MethodPost, fmt.Sprintf("/admin/courses/%d/quizzes", course.ID), admin, valid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Quiz
	decodeBody(t, rec, &created)

	rec = ts.do(http.MethodGet, fmt.Sprintf("/courses/%d/quizzes", course.ID), user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quizzes []models.Quiz
	decodeBody(t, rec, &quizzes)
	require.Len(t, quizzes, 1)
	for _, q := range quizzes[0].Questions {
		assert.Empty(t, q.Answer)
	}

	rec = ts.do(http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", created.ID), user, submitRequest{
		Answers: map[string]string{"q1": " GO ", "q2": "no"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var submitted submitResponse
	decodeBody(t, rec, &submitted)
	assert.Equal(t, 1, submitted.Grade.Correct)
	assert.InDelta(t, 50.0, submitted.Result.Score, 1e-9)

	rec = ts.do(http.MethodPost, "/quizzes/999/submit", user, submitRequest{Answers: map[string]string{}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/me/dashboard", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash dashboard
	decodeBody(t, rec, &dash)
	require.Len(t, dash.QuizAverages, 1)
	assert.Equal(t, "Channels", dash.QuizAverages[0].QuizTitle)
	assert.InDelta(t, 50.0, dash.QuizAverages[0].AverageScore, 1e-9)
}

func TestLearnerEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register("admin", models.RoleAdmin)
	user := ts.register("alice", "")

	goCourse := ts.createCourse(admin, "Go Basics", "goroutines channels concurrency")
	ts.createCourse(admin, "Advanced Go", "goroutines channels generics")
	ts.createCourse(admin, "Cooking", "bread baking pastry")

	rec := ts.do(http.MethodPut, fmt.Sprintf("/me/courses/%d/progress", goCourse.ID), user, map[string]float64{"progress": 150})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var uc models.UserCourse
	decodeBody(t, rec, &uc)
	assert.Equal(t, models.MaxProgress, uc.Progress)

	rec = ts.do(http.MethodPut, "/me/courses/999/progress", user, map[string]float64{"progress": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodPut, fmt.Sprintf("/me/courses/%d/progress", goCourse.ID), user, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/me/progress", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.UserCourse
	decodeBody(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Go Basics", rows[0].CourseTitle)

	rec = ts.do(http.MethodPost, "/me/study-time", user, studyTimeRequest{Minutes: 30})
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	decodeBody(t, rec, &me)
	assert.Equal(t, 30, me.TotalStudyTime)

	rec = ts.do(http.MethodPost, "/me/study-time", user, studyTimeRequest{Minutes: -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/me/learning-style", user, learningStyleRequest{
		Answers: []string{"I like diagrams and charts", "videos and pictures help me"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var style map[string]string
	decodeBody(t, rec, &style)
	_, ok := personalization.ParseLearningStyle(style["learning_style"])
	assert.True(t, ok)

	rec = ts.do(http.MethodPost, "/me/learning-style", user, learningStyleRequest{Answers: []string{"   "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPost, "/me/learning-style", user, learningStyleRequest{Answers: []string{""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodGet, "/me/", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &me)
	require.NotNil(t, me.LearningStyle)
	assert.Equal(t, style["learning_style"], *me.LearningStyle)

	rec = ts.do(http.MethodGet, "/me/recommendations?n=2", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []personalization.Recommendation
	decodeBody(t, rec, &recs)
	assert.LessOrEqual(t, len(recs), 2)
	for _, r := range recs {
		assert.NotEqual(t, goCourse.ID, r.Course.ID)
	}

	rec = ts.do(http.MethodGet, "/me/recommendations?n=zero", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, fmt.Sprintf("/me/courses/%d/personalized", goCourse.ID), user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p personalization.Personalized
	decodeBody(t, rec, &p)
	assert.Equal(t, goCourse.ID, p.CourseID)
	assert.Contains(t, []personalization.Difficulty{
		personalization.DifficultyEasy, personalization.DifficultyMedium, personalization.DifficultyHard,
	}, p.Difficulty)
	assert.Len(t, p.Resources, 3)
	assert.NotEmpty(t, p.Content)

	rec = ts.do(http.MethodPut, "/me/telegram", user, telegramRequest{ChatID: 42})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodGet, "/me/", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &me)
	require.NotNil(t, me.TelegramChatID)
	assert.Equal(t, int64(42), *me.TelegramChatID)
	require.NotNil(t, me.LearningStyle)
}

func TestStudyGroupsAndForum(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register("admin", models.RoleAdmin)
	alice := ts.register("alice", "")
	bob := ts.register("bob", "")
	course := ts.createCourse(admin, "Go Basics", "goroutines")

	rec := ts.do(http.MethodPost, "/study-groups", alice, studyGroupRequest{Name: "Gophers", CourseID: course.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var group models.StudyGroup
	decodeBody(t, rec, &group)

	path := fmt.Sprintf("/study-groups/%d", group.ID)
	for i := 0; i < 2; i++ {
		rec = ts.do(http.MethodPost, path+"/join", bob, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec = ts.do(http.MethodPost, "/study-groups/999/join", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, path, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Name    string                    `json:"name"`
		Members []models.StudyGroupMember `json:"members"`
	}
	decodeBody(t, rec, &detail)
	assert.Equal(t, "Gophers", detail.Name)
	assert.Len(t, detail.Members, 2)

	rec = ts.do(http.MethodGet, "/study-groups", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []models.StudyGroup
	decodeBody(t, rec, &groups)
	assert.Len(t, groups, 1)

	rec = ts.do(http.MethodPost, "/forum", alice, postRequest{
		Title:    "Help with channels",
		Content:  `<script>alert(1)</script><b>why</b> does this block?`,
		CourseID: course.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.ForumPost
	decodeBody(t, rec, &post)
	assert.NotContains(t, post.Content, "<script>")
	assert.Contains(t, post.Content, "<b>why</b>")

	rec = ts.do(http.MethodPost, "/forum", alice, postRequest{
		Title: "Empty", Content: "<script>x</script>", CourseID: course.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, fmt.Sprintf("/forum/%d/replies", post.ID), bob, replyRequest{Content: "unbuffered send"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(http.MethodPost, "/forum/999/replies", bob, replyRequest{Content: "hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, fmt.Sprintf("/forum/%d", post.ID), bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var full struct {
		Author  string              `json:"author"`
		Replies []models.ForumReply `json:"replies"`
	}
	decodeBody(t, rec, &full)
	assert.Equal(t, "alice", full.Author)
	require.Len(t, full.Replies, 1)
	assert.Equal(t, "bob", full.Replies[0].Author)

	rec = ts.do(http.MethodGet, "/forum", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []models.ForumPost
	decodeBody(t, rec, &posts)
	assert.Len(t, posts, 1)
}

func TestFailMapsQuizErrors(t *testing.T) {
	s := &Server{log: zerolog.Nop()}
	rec := httptest.NewRecorder()
	s.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("wrap: %w", quiz.ErrInvalidQuiz))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorOf(t, rec))
}
