// Package repository defines the storage contracts for shopping items and
// users. Concrete backends live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/shopping-list/internal/model"
)

// NewItem carries the caller-settable fields of a create. The store assigns
// ID, CreatedAt and UpdatedAt.
type NewItem struct {
	Name      string
	Quantity  string
	Category  string
	Completed bool
	UserID    string
}

// ItemUpdate is a partial update. A nil field is left unchanged; a non-nil
// field is written. UpdatedAt is refreshed even when every field is nil.
type ItemUpdate struct {
	Name      *string
	Quantity  *string
	Category  *string
	Completed *bool
}

// IsEmpty reports whether no column would change.
func (u ItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Quantity == nil && u.Category == nil && u.Completed == nil
}

// ItemRepository owns the persisted item collection.
//
// Update and Toggle return apperror.ErrNotFound when no row has that id and
// never create one. Delete reports whether a row was removed instead.
type ItemRepository interface {
	ListItems(ctx context.Context, userID string) ([]model.Item, error)
	CreateItem(ctx context.Context, item NewItem) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, update ItemUpdate) (*model.Item, error)
	ToggleComplete(ctx context.Context, id int64) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
	ResetAll(ctx context.Context, userID string) ([]model.Item, error)
	Ping(ctx context.Context) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Store is what a backend provides: both repositories behind one handle.
type Store interface {
	ItemRepository
	UserRepository
	Close() error
}
