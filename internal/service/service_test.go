package service

import (
	"context"
	"testing"
	"time"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/personalization"
	"github.com/example/learnpath/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, database.Connect(database.DriverSQLite, ":memory:"))
	t.Cleanup(func() { database.Close() })
	return context.Background()
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := setupDB(t)
	auth := NewAuthService("secret")

	u, err := auth.Register(ctx, RegisterUserData{Username: "alice", Email: "Alice@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, err = auth.Register(ctx, RegisterUserData{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = auth.Register(ctx, RegisterUserData{Username: "bob", Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = auth.Register(ctx, RegisterUserData{Username: "carl", Email: "carl@example.com", Password: "x", Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	token, logged, err := auth.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	require.NotNil(t, logged.LastLogin)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	stored, err := database.NewUserRepository().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, _, err = auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	auth := NewAuthService("secret")
	u := &models.User{ID: 3, Role: models.RoleAdmin}

	token, err := auth.IssueToken(u)
	require.NoError(t, err)

	_, err = NewAuthService("other").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewAuthService("secret")
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.IssueToken(u)
	require.NoError(t, err)
	_, err = auth.ParseToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 3})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newPersonalizationService(t *testing.T) *PersonalizationService {
	t.Helper()
	engine := personalization.New(personalization.DefaultConfig(), zerolog.Nop(), nil)
	require.NoError(t, engine.Init())
	return NewPersonalizationService(engine, 5, zerolog.Nop())
}

func TestPersonalizationService(t *testing.T) {
	ctx := setupDB(t)
	users := database.NewUserRepository()
	courses := database.NewCourseRepository()
	progress := database.NewProgressRepository()

	catalog := []*models.Course{
		{Title: "Python programming", Description: "Learn Python programming basics"},
		{Title: "Advanced Python", Description: "Python decorators generators"},
		{Title: "Watercolor painting", Description: "Painting with watercolors"},
	}
	for _, c := range catalog {
		require.NoError(t, courses.Create(ctx, c))
	}

	me := &models.User{Username: "me", Email: "me@example.com", PasswordHash: "x"}
	peer := &models.User{Username: "peer", Email: "peer@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, me))
	require.NoError(t, users.Create(ctx, peer))
	_, err := progress.Upsert(ctx, me.ID, catalog[0].ID, 50)
	require.NoError(t, err)
	_, err = progress.Upsert(ctx, peer.ID, catalog[0].ID, 90)
	require.NoError(t, err)
	_, err = progress.Upsert(ctx, peer.ID, catalog[1].ID, 70)
	require.NoError(t, err)

	svc := newPersonalizationService(t)

	learner, err := svc.LoadLearner(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{catalog[0].ID: 50}, learner.Progress)

	roster, err := svc.Roster(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 2)

	recs, err := svc.Recommend(ctx, me.ID, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, catalog[1].ID, recs[0].Course.ID)

	style, err := svc.AssessLearningStyle(ctx, me.ID, []string{"I love diagrams and charts"})
	require.NoError(t, err)
	assert.Equal(t, personalization.StyleVisual, style)

	style, err = svc.AssessLearningStyle(ctx, peer.ID, []string{"lectures and podcasts"})
	require.NoError(t, err)
	assert.Equal(t, personalization.StyleAuditory, style)
	_, err = svc.AssessLearningStyle(ctx, peer.ID, []string{" ", ""})
	assert.ErrorIs(t, err, personalization.ErrNoResponses)
	stored, err := users.GetByID(ctx, peer.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LearningStyle)
	assert.Equal(t, string(personalization.StyleAuditory), *stored.LearningStyle)

	p, err := svc.Personalized(ctx, me.ID, catalog[2].ID)
	require.NoError(t, err)
	assert.Equal(t, personalization.StyleVisual, p.LearningStyle)
	assert.NotEmpty(t, p.Content)

	_, err = svc.Personalized(ctx, me.ID, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = svc.Recommend(ctx, 999, 5)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
