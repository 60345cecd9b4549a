package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateFoundReport stores a found report and returns it with its id and
// creation time.
func CreateFoundReport(ctx context.Context, db *sql.DB, r model.FoundReport) (*model.FoundReport, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO found_reports (item_id, phone, found_image_url) VALUES (?, ?, ?)`,
		r.ItemID, r.Phone, r.FoundImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("creating found report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found report id: %w", err)
	}

	out := &model.FoundReport{}
	err = db.QueryRowContext(ctx,
		`SELECT id, item_id, phone, found_image_url, created_at FROM found_reports WHERE id = ?`, id,
	).Scan(&out.ID, &out.ItemID, &out.Phone, &out.FoundImageURL, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting found report: %w", err)
	}
	return out, nil
}

// ListFoundReports returns the reports filed for an item, newest first.
func ListFoundReports(ctx context.Context, db *sql.DB, itemID int64) ([]model.FoundReport, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, phone, found_image_url, created_at
		 FROM found_reports WHERE item_id = ? ORDER BY id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing found reports: %w", err)
	}
	defer rows.Close()

	var reports []model.FoundReport
	for rows.Next() {
		var r model.FoundReport
		if err := rows.Scan(&r.ID, &r.ItemID, &r.Phone, &r.FoundImageURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning found report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// CountFoundReports returns the number of stored found reports.
func CountFoundReports(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM found_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting found reports: %w", err)
	}
	return n, nil
}
