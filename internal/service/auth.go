// Package service provides the business logic of the recommendation
// service, delegating persistence to repositories.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avetrov/filmweek/internal/models"
)

// ErrUserExists is returned when registering an already-taken username.
var ErrUserExists = errors.New("username already registered")

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ErrInvalidToken is returned when a bearer token does not verify.
var ErrInvalidToken = errors.New("invalid token")

// tokenTTL is how long an issued bearer token stays valid.
const tokenTTL = 7 * 24 * time.Hour

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// UserExists returns true if a user with the given username exists.
	UserExists(ctx context.Context, username string) (bool, error)
	// CreateUser inserts a new user and returns its profile.
	CreateUser(ctx context.Context, username, email string, passwordHash []byte) (models.UserProfile, error)
	// UserByName returns the profile and password hash for a username.
	UserByName(ctx context.Context, username string) (models.UserProfile, []byte, error)
	// UserByID returns the profile for a user id.
	UserByID(ctx context.Context, id int) (models.UserProfile, error)
}

// AuthService implements registration, login, and token verification.
type AuthService struct {
	repo   UserRepository
	secret []byte
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(repo UserRepository, secret string) *AuthService {
	return &AuthService{repo: repo, secret: []byte(secret)}
}

// Register creates an account and returns its first bearer token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	exists, err := s.repo.UserExists(ctx, username)
	if err != nil {
		return "", fmt.Errorf("check user: %w", err)
	}
	if exists {
		return "", ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	profile, err := s.repo.CreateUser(ctx, username, email, hash)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.mint(profile.ID)
}

// Login verifies the password and returns a fresh bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	profile, hash, err := s.repo.UserByName(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.mint(profile.ID)
}

// Profile returns the profile for a verified user id.
func (s *AuthService) Profile(ctx context.Context, userID int) (models.UserProfile, error) {
	return s.repo.UserByID(ctx, userID)
}

// mint issues a signed HS256 token for the user id.
func (s *AuthService) mint(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and expiry and returns the user id it
// was issued for.
func (s *AuthService) Verify(token string) (int, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
