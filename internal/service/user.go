// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gatekeep/gatekeep/internal/model"
	"github.com/gatekeep/gatekeep/internal/repository"
)

// Service errors.
var (
	// ErrEmailTaken is returned when signing up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for every failed verification: unknown
	// email, wrong password, and internal lookup failures are observably
	// identical to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a lookup finds no user.
	ErrUserNotFound = errors.New("user not found")
	// ErrPersistence is an opaque store failure. Detail goes to the log, not
	// the caller.
	ErrPersistence = errors.New("persistence failure")
)

// UserStore is the credential store the service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// PasswordHasher is the one-way salted hash primitive.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// UserService orchestrates the credential store and password hasher to
// create accounts and verify logins. It expects normalized email input.
type UserService struct {
	store  UserStore
	hasher PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, hasher PasswordHasher, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// CreateUser registers a new account. The plaintext password is hashed and
// discarded; neither the plaintext nor the hash is ever logged or returned.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (*model.User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("password hashing failed", slog.String("error", err.Error()))
		return nil, ErrPersistence
	}

	user, err := s.store.CreateUser(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("user insert failed", slog.String("error", err.Error()))
		return nil, ErrPersistence
	}

	s.logger.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user.Public(), nil
}

// VerifyCredentials checks an email/password pair against the store.
// All failure modes collapse into ErrInvalidCredentials so that a caller
// cannot tell an unknown email from a wrong password; internal failures are
// only visible in the log.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Error("user lookup failed during verification", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored hash could not be verified",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, ErrInvalidCredentials
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user.Public(), nil
}

// FindByID retrieves a user by ID. Internal store failures surface as
// not-found, with the detail logged.
func (s *UserService) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Error("user lookup by ID failed", slog.String("error", err.Error()))
		}
		return nil, ErrUserNotFound
	}
	return user.Public(), nil
}

// EmailExists reports whether an email is registered. Store failures
// surface as false, with the detail logged.
func (s *UserService) EmailExists(ctx context.Context, email string) bool {
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		s.logger.Error("email existence check failed", slog.String("error", err.Error()))
		return false
	}
	return exists
}
