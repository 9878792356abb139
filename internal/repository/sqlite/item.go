package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

var _ repository.ItemRepository = (*DB)(nil)

const itemCols = `id, name, quantity, category, completed, user_id, created_at, updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx, so the read helpers
// work inside and outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	err := scanner.Scan(
		&item.ID, &item.Name, &item.Quantity, &item.Category,
		&item.Completed, &item.UserID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

// getItem reads one row. A missing row is reported as apperror.ErrNotFound.
func getItem(ctx context.Context, q querier, id int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("shopping item", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting item %d: %w", id, err)
	}
	return item, nil
}

func listItems(ctx context.Context, q querier, userID string) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemCols+` FROM shopping_items WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}
	return items, nil
}

// ListItems returns every item owned by userID. An unknown user yields an
// empty, non-nil slice.
func (db *DB) ListItems(ctx context.Context, userID string) ([]model.Item, error) {
	return listItems(ctx, db.conn, userID)
}

// CreateItem inserts a row and returns the stored record. AUTOINCREMENT
// guarantees the new id is larger than any id ever handed out.
func (db *DB) CreateItem(ctx context.Context, in repository.NewItem) (*model.Item, error) {
	now := db.clock.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO shopping_items (name, quantity, category, completed, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Quantity, in.Category, in.Completed, in.UserID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading new item id: %w", err)
	}

	return &model.Item{
		ID:        id,
		Name:      in.Name,
		Quantity:  in.Quantity,
		Category:  in.Category,
		Completed: in.Completed,
		UserID:    in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateItem writes the non-nil fields of update and always refreshes
// updated_at. COALESCE(NULL, col) keeps the current value, so one static
// statement covers every subset of fields.
func (db *DB) UpdateItem(ctx context.Context, id int64, update repository.ItemUpdate) (*model.Item, error) {
	var item *model.Item
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE shopping_items
			 SET name = COALESCE(?, name),
			     quantity = COALESCE(?, quantity),
			     category = COALESCE(?, category),
			     completed = COALESCE(?, completed),
			     updated_at = ?
			 WHERE id = ?`,
			nullable(update.Name), nullable(update.Quantity), nullable(update.Category),
			nullable(update.Completed), db.clock.Now(), id,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating item %d: %w", id, err)
		}
		if err := requireRow(result, id); err != nil {
			return err
		}
		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleComplete flips completed in a single UPDATE, so the new value is
// computed from the stored one rather than from a value the caller read.
func (db *DB) ToggleComplete(ctx context.Context, id int64) (*model.Item, error) {
	var item *model.Item
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE shopping_items SET completed = NOT completed, updated_at = ? WHERE id = ?`,
			db.clock.Now(), id,
		)
		if err != nil {
			return fmt.Errorf("sqlite: toggling item %d: %w", id, err)
		}
		if err := requireRow(result, id); err != nil {
			return err
		}
		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem reports whether a row was removed. A missing id is not an error.
func (db *DB) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting item %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// ResetAll clears completed on every item of userID with one bulk UPDATE and
// returns the user's collection afterwards. Already-cleared rows are
// rewritten too, which refreshes their updated_at.
func (db *DB) ResetAll(ctx context.Context, userID string) ([]model.Item, error) {
	var items []model.Item
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE shopping_items SET completed = 0, updated_at = ? WHERE user_id = ?`,
			db.clock.Now(), userID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: resetting items for %s: %w", userID, err)
		}
		items, err = listItems(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

func requireRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("shopping item", strconv.FormatInt(id, 10))
	}
	return nil
}

// nullable turns an absent optional field into SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
