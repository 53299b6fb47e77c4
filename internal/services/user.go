package services

import (
	"context"
	"errors"
	"strings"

	"github.com/userapi/apiserver/internal/auth"
	"github.com/userapi/apiserver/internal/events"
	"github.com/userapi/apiserver/internal/store"
	"github.com/userapi/apiserver/types"
)

// Failure categories surfaced by the auth flow. Handlers map them to
// status codes at the boundary.
var (
	// ErrPasswordMismatch means password and confirmPassword differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrMissingFields means a required registration field is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrEmailTaken means the normalized email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password. The single message resists account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// UserService orchestrates registration, login, and current-user
// lookups over its collaborators.
type UserService struct {
	repo   UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	events events.Publisher
}

func NewUserService(repo UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService, publisher events.Publisher) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		events: publisher,
	}
}

// NormalizeEmail trims whitespace and lower-cases an email address.
// The normalized form is the uniqueness key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input, hashes the password, and inserts the
// new user. No token is issued on registration; login is a separate
// step. Nothing is written to the store when validation fails.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	email := NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if email == "" || in.Password == "" || firstName == "" || lastName == "" {
		return ErrMissingFields
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hashed,
	})
	if err != nil {
		// Concurrent registration with the same email loses the race
		// at the unique constraint.
		if errors.Is(err, store.ErrConflict) {
			return ErrEmailTaken
		}
		return err
	}

	// Best effort: a down broker must not fail the registration.
	_ = s.events.PublishUserRegistered(ctx, events.UserRegistered{
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	})

	return nil
}

// Login verifies credentials and mints a bearer token. Unknown email
// and wrong password are indistinguishable to the caller. Login never
// writes to the store.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Mint(user.ID, user.Email, user.FirstName, user.LastName)
}

// GetByID resolves the current user for an authenticated request.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
