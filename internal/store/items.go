package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/model"
)

// NewItem holds the fields of an item before the store assigns id and
// createdAt.
type NewItem struct {
	Title       string
	Description string
	Status      string
	ImageURL    string
	Location    string
	// Secret is the private detail the owner can later prove knowledge of.
	// It is stored as a bcrypt hash; empty means none.
	Secret string
}

// MaxSecretLen is the longest secret detail, in bytes, that can be hashed.
const MaxSecretLen = 72

const itemColumns = `id, title, description, status, imageUrl, location, secret_hash, createdAt`

// CreateItem inserts a new item and returns it as stored.
func CreateItem(ctx context.Context, db *sql.DB, in NewItem) (*model.Item, error) {
	var secretHash sql.NullString
	if in.Secret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing secret detail: %w", err)
		}
		secretHash = sql.NullString{String: string(hash), Valid: true}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, status, imageUrl, location, secret_hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title, in.Description, in.Status, in.ImageURL, in.Location, secretHash,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d vanished after insert", id)
	}
	return item, nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items newest first, optionally filtered by status.
func ListItems(ctx context.Context, db *sql.DB, status string) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE status = ? ORDER BY id DESC`, status,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY id DESC`,
		)
	}
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

// CountItems returns the number of stored items.
func CountItems(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// CheckItemSecret reports whether secret matches the item's stored secret
// detail. Items without a secret never match. A missing item returns
// sql.ErrNoRows.
func CheckItemSecret(ctx context.Context, db *sql.DB, id int64, secret string) (bool, error) {
	var hash sql.NullString
	err := db.QueryRowContext(ctx, `SELECT secret_hash FROM items WHERE id = ?`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		return false, fmt.Errorf("getting item secret: %w", err)
	}
	if !hash.Valid || hash.String == "" || secret == "" || len(secret) > MaxSecretLen {
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash.String), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("comparing item secret: %w", err)
	}
	return true, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var secretHash sql.NullString
	if err := s.Scan(&item.ID, &item.Title, &item.Description, &item.Status,
		&item.ImageURL, &item.Location, &secretHash, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.SecretHash = secretHash.String
	return item, nil
}
