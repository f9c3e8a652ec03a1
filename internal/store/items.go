package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finder/internal/model"
)

// ErrNotFound is returned when no item matches the given id.
var ErrNotFound = errors.New("item not found")

// ErrResolved is returned when a status update would reopen a resolved item.
// RESOLVED is terminal.
var ErrResolved = errors.New("item already resolved")

// CreateItem persists a draft as a new item. The store assigns the id and
// createdAt and forces status to ACTIVE; whatever the caller put there is
// ignored. When a normalized photo is supplied, it is stored alongside the
// row and the item's imageUrl points at the image endpoint instead of
// whatever inline payload the draft carried. Returns the stored item.
func CreateItem(ctx context.Context, db *sql.DB, draft model.Draft, image []byte, imageMIME string) (*model.Item, error) {
	id := uuid.NewString()
	createdAt := time.Now().UnixMilli()

	imageURL := draft.ImageURL
	if len(image) > 0 {
		imageURL = "/api/items/" + id + "/image"
	}

	tags, err := json.Marshal(tagsOrEmpty(draft.Tags))
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO items (id, type, title, category, description, location, date, contact, tags, image_url, image, image_mime, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, draft.Type, draft.Title, draft.Category, draft.Description,
		draft.Location, draft.Date, draft.Contact, string(tags), imageURL,
		image, imageMIME, model.StatusActive, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by id, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, type, title, category, description, location, date, contact, tags, image_url, status, created_at
		 FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items, newest first. Equal timestamps are broken by
// id so every client observes the same order. typ and status filter when
// non-empty.
func ListItems(ctx context.Context, db *sql.DB, typ, status string) ([]model.Item, error) {
	query := `SELECT id, type, title, category, description, location, date, contact, tags, image_url, status, created_at
	          FROM items`
	var args []any
	var where []string
	if typ != "" {
		where = append(where, "type = ?")
		args = append(args, typ)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

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

// UpdateItemStatus sets an item's status. The transition is monotone:
// resolving twice is a no-op that succeeds, reopening a resolved item fails
// with ErrResolved. The guard lives in the UPDATE itself so a reopen racing a
// resolve can never land after it.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id, status string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?
		 WHERE id = ? AND NOT (status = 'RESOLVED' AND ? = 'ACTIVE')`,
		status, id, status,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if n > 0 {
		return nil
	}

	// No row changed: the item is unknown, or the guard blocked a reopen.
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	return ErrResolved
}

// GetItemImage returns an item's photo and MIME type, or nil data when the
// item has no stored photo.
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

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (*model.Item, error) {
	item := &model.Item{}
	var description, date, imageURL sql.NullString
	var tags string
	err := row.Scan(&item.ID, &item.Type, &item.Title, &item.Category,
		&description, &item.Location, &date, &item.Contact, &tags,
		&imageURL, &item.Status, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Date = date.String
	item.ImageURL = imageURL.String
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
