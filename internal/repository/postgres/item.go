package postgres

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

func (db *DB) ListItems(ctx context.Context, userID string) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+itemCols+` FROM shopping_items WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating items: %w", err)
	}
	return items, nil
}

func (db *DB) CreateItem(ctx context.Context, in repository.NewItem) (*model.Item, error) {
	now := db.clock.Now()
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO shopping_items (name, quantity, category, completed, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING `+itemCols,
		in.Name, in.Quantity, in.Category, in.Completed, in.UserID, now,
	)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating item: %w", err)
	}
	return item, nil
}

// nextStamp is the updated_at expression for mutations. The clock value is
// drawn before UPDATE takes the row lock, so a request that waited on the
// lock can hold an older stamp than the row it now writes; GREATEST keeps
// updated_at strictly increasing regardless.
func nextStamp(param string) string {
	return `GREATEST(` + param + `::timestamptz, updated_at + interval '1 microsecond')`
}

// UpdateItem writes the non-nil fields and refreshes updated_at in one
// statement. The casts give pgx a type for NULL parameters.
func (db *DB) UpdateItem(ctx context.Context, id int64, update repository.ItemUpdate) (*model.Item, error) {
	row := db.conn.QueryRowContext(ctx,
		`UPDATE shopping_items
		 SET name = COALESCE($1::text, name),
		     quantity = COALESCE($2::text, quantity),
		     category = COALESCE($3::text, category),
		     completed = COALESCE($4::boolean, completed),
		     updated_at = $5
		 WHERE id = $6
		 RETURNING `+itemCols,
		nullable(update.Name), nullable(update.Quantity), nullable(update.Category),
		nullable(update.Completed), db.clock.Now(), id,
	)
	return db.scanMutated(row, id, "updating")
}

// ToggleComplete negates the stored value under the row lock taken by
// UPDATE, so overlapping toggles each see the other's result.
func (db *DB) ToggleComplete(ctx context.Context, id int64) (*model.Item, error) {
	row := db.conn.QueryRowContext(ctx,
		`UPDATE shopping_items SET completed = NOT completed, updated_at = `+nextStamp("$1")+`
		 WHERE id = $2
		 RETURNING `+itemCols,
		db.clock.Now(), id,
	)
	return db.scanMutated(row, id, "toggling")
}

func (db *DB) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("postgres: deleting item %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// ResetAll is one bulk UPDATE followed by a fresh read. A toggle that lands
// between the two statements shows up in the returned collection.
func (db *DB) ResetAll(ctx context.Context, userID string) ([]model.Item, error) {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE shopping_items SET completed = FALSE, updated_at = `+nextStamp("$1")+` WHERE user_id = $2`,
		db.clock.Now(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: resetting items for %s: %w", userID, err)
	}
	items, err := db.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		db.clock.Observe(item.UpdatedAt)
	}
	return items, nil
}

func (db *DB) scanMutated(row *sql.Row, id int64, action string) (*model.Item, error) {
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("shopping item", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: %s item %d: %w", action, id, err)
	}
	db.clock.Observe(item.UpdatedAt)
	return item, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
