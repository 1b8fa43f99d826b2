package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an issued token stays valid
const TokenTTL = 24 * time.Hour

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role (must be user|admin)")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	users     *database.UserRepository
	jwtSecret []byte
	now       func() time.Time
}

type RegisterUserData struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Claims is what a validated token says about its bearer
type Claims struct {
	UserID int64
	Role   string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		users:     database.NewUserRepository(),
		jwtSecret: []byte(secret),
		now:       time.Now,
	}
}

// Register creates a user with a bcrypt password hash
func (s *AuthService) Register(ctx context.Context, data RegisterUserData) (*models.User, error) {
	data.Username = strings.TrimSpace(data.Username)
	data.Email = strings.TrimSpace(strings.ToLower(data.Email))

	role := data.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	if _, err := s.users.GetByUsername(ctx, data.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, data.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the password, records the login time and issues a token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, database.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return "", nil, err
	}
	u.LastLogin = &now

	token, err := s.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// IssueToken signs an HS256 token for the user
func (s *AuthService) IssueToken(u *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"exp":  s.now().Add(TokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims
func (s *AuthService) ParseToken(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return Claims{UserID: int64(sub), Role: role}, nil
}
