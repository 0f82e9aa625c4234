package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/filter"
	"github.com/erazemk/najdeno/internal/model"
)

// NewItem holds the fields of an item report at creation.
type NewItem struct {
	Title       string
	Description string
	Category    string
	Location    string
	Date        time.Time
	ImageURL    string
	Type        string
	UserID      string
}

var itemColumns = []string{
	"items.id", "items.title", "items.description", "items.category", "items.location",
	"items.date", "items.image_url", "items.status", "items.type", "items.user_id",
	"items.created_at", "items.updated_at",
	"users.name", "users.email",
}

// itemSelect selects items joined with the name and email of their owner.
func itemSelect() sq.SelectBuilder {
	return sq.Select(itemColumns...).
		From("items").
		LeftJoin("users ON users.id = items.user_id")
}

// CreateItem stores a new item report. Status starts as Lost.
func CreateItem(ctx context.Context, db *sql.DB, n NewItem) (*model.Item, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	if n.Category == "" {
		n.Category = model.CategoryOther
	}

	query, args, err := sq.Insert("items").
		Columns("id", "title", "description", "category", "location", "date",
			"image_url", "status", "type", "user_id", "created_at", "updated_at").
		Values(id, n.Title, n.Description, n.Category, n.Location, n.Date.UTC(),
			n.ImageURL, model.ItemStatusLost, n.Type, n.UserID, now, now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item insert: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("creating item: item %s missing after insert", id)
	}
	item.Owner = nil
	return item, nil
}

// GetItem returns an item by ID with its owner expanded, or nil if absent.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query, args, err := itemSelect().Where(sq.Eq{"items.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	item, err := scanItem(db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching pred, newest first, with owners expanded.
func ListItems(ctx context.Context, db *sql.DB, pred filter.Predicate) ([]model.Item, error) {
	query, args, err := itemSelect().
		Where(pred.Sqlizer()).
		OrderBy("items.created_at DESC", "items.rowid DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item list query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemStatus sets an item's status and returns the updated item, or nil
// if the item does not exist. Concurrent updates are last-write-wins.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id, status string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	ok, err := affected(result)
	if err != nil || !ok {
		return nil, err
	}
	return GetItem(ctx, db, id)
}

// DeleteItem removes an item. It reports whether the item existed.
func DeleteItem(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return affected(result)
}

// SetItemImage stores an item's photo and the URL it is served from. It
// reports whether the item existed.
func SetItemImage(ctx context.Context, db *sql.DB, id string, image []byte, mime, url string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		image, mime, url, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	return affected(result)
}

// GetItemImage returns an item's photo and MIME type. Data is nil if the item
// does not exist or has no stored photo.
func GetItemImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var ownerName, ownerEmail sql.NullString
	err := row.Scan(
		&item.ID, &item.Title, &item.Description, &item.Category, &item.Location,
		&item.Date, &item.ImageURL, &item.Status, &item.Type, &item.UserID,
		&item.CreatedAt, &item.UpdatedAt,
		&ownerName, &ownerEmail,
	)
	if err != nil {
		return nil, err
	}
	if ownerName.Valid {
		item.Owner = &model.Owner{Name: ownerName.String, Email: ownerEmail.String}
	}
	return item, nil
}
