// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, logs, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// The service takes repository interfaces, never a concrete backend, so the
// same code runs over SQLite, Postgres or the in-memory mock in the tests.
// It returns apperror kinds and knows nothing about HTTP status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

// CreateItemInput is the caller-supplied part of a new item.
// UserID must already be resolved; the API layer fills in the demo user.
type CreateItemInput struct {
	Name      string
	Quantity  string
	Category  string
	Completed bool
	UserID    string
}

// ItemService handles business logic for shopping items.
type ItemService struct {
	repo   repository.ItemRepository
	logger *slog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(repo repository.ItemRepository, logger *slog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
	}
}

// List returns every item owned by userID.
func (s *ItemService) List(ctx context.Context, userID string) ([]model.Item, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list items",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// Create validates and stores a new item.
//
// VALIDATION:
// name, quantity, category and userId are required and must be non-blank.
// Every missing field is reported, not just the first one. The category is
// not checked against the catalogue.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (*model.Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Quantity = strings.TrimSpace(in.Quantity)
	in.Category = strings.TrimSpace(in.Category)
	in.UserID = strings.TrimSpace(in.UserID)

	var details []apperror.FieldError
	for _, f := range []struct{ field, value string }{
		{"name", in.Name},
		{"quantity", in.Quantity},
		{"category", in.Category},
		{"userId", in.UserID},
	} {
		if f.value == "" {
			details = append(details, apperror.FieldError{
				Field:   f.field,
				Message: f.field + " is required",
			})
		}
	}
	if len(details) > 0 {
		return nil, apperror.Validation(details)
	}

	item, err := s.repo.CreateItem(ctx, repository.NewItem{
		Name:      in.Name,
		Quantity:  in.Quantity,
		Category:  in.Category,
		Completed: in.Completed,
		UserID:    in.UserID,
	})
	if err != nil {
		s.logger.Error("failed to create item",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.logger.Info("item created",
		slog.Int64("id", item.ID),
		slog.String("name", item.Name),
		slog.String("category", item.Category),
		slog.String("userId", item.UserID),
	)
	return item, nil
}

// Update applies a partial update. Text fields that are present must not be
// blank; absent fields are left alone.
func (s *ItemService) Update(ctx context.Context, id int64, update repository.ItemUpdate) (*model.Item, error) {
	var details []apperror.FieldError
	for _, f := range []struct {
		field string
		value **string
	}{
		{"name", &update.Name},
		{"quantity", &update.Quantity},
		{"category", &update.Category},
	} {
		if *f.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(**f.value)
		if trimmed == "" {
			details = append(details, apperror.FieldError{
				Field:   f.field,
				Message: f.field + " must not be empty",
			})
			continue
		}
		*f.value = &trimmed
	}
	if len(details) > 0 {
		return nil, apperror.Validation(details)
	}

	item, err := s.repo.UpdateItem(ctx, id, update)
	if err != nil {
		return nil, s.mutationError("update", id, err)
	}

	s.logger.Info("item updated", slog.Int64("id", item.ID))
	return item, nil
}

// Toggle flips the completed flag of one item.
func (s *ItemService) Toggle(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.repo.ToggleComplete(ctx, id)
	if err != nil {
		return nil, s.mutationError("toggle", id, err)
	}

	s.logger.Info("item toggled",
		slog.Int64("id", item.ID),
		slog.Bool("completed", item.Completed),
	)
	return item, nil
}

// Delete removes an item. The store's "nothing removed" answer becomes
// apperror.ErrNotFound here so the handler can map it like the others.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return s.mutationError("delete", id, err)
	}
	if !removed {
		return apperror.NotFound("shopping item", strconv.FormatInt(id, 10))
	}

	s.logger.Info("item deleted", slog.Int64("id", id))
	return nil
}

// ResetAll clears the completed flag on every item of userID.
func (s *ItemService) ResetAll(ctx context.Context, userID string) ([]model.Item, error) {
	items, err := s.repo.ResetAll(ctx, userID)
	if err != nil {
		s.logger.Error("failed to reset items",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resetting items: %w", err)
	}

	s.logger.Info("items reset",
		slog.String("userId", userID),
		slog.Int("count", len(items)),
	)
	return items, nil
}

// Ping checks that the backing store answers.
func (s *ItemService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// mutationError passes NotFound through untouched and logs anything else.
// NotFound is a normal answer, not a failure worth an error log line.
func (s *ItemService) mutationError(action string, id int64, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	s.logger.Error("failed to "+action+" item",
		slog.Int64("id", id),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s item %d: %w", action, id, err)
}
