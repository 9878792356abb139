package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

// UserService manages account records.
//
// NOTE ON PASSWORDS:
// Passwords are stored and compared as plain text until a hashing scheme is
// chosen. No request path authenticates against them yet.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Register creates a user. A taken username is apperror.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.CreateUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered", slog.Int64("id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// EnsureUser returns the user named username, creating it when absent. A
// created account gets a random placeholder password since nobody logs in
// with it.
func (s *UserService) EnsureUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up user %s: %w", username, err)
	}

	user, err = s.users.CreateUser(ctx, username, xid.New().String())
	if errors.Is(err, apperror.ErrConflict) {
		// Another process seeded it between the lookup and the insert.
		return s.users.GetUserByUsername(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("seeding user %s: %w", username, err)
	}

	s.logger.Info("seeded user", slog.Int64("id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// CheckPassword reports whether password matches the stored one.
func (s *UserService) CheckPassword(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking password: %w", err)
	}
	return user.Password == password, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetUser(ctx, id)
}
