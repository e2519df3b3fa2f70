package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Fixed-width UTC timestamps keep text ordering equal to time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ Ledger = (*LedgerRepository)(nil)

// LedgerRepository records which entries have been published.
type LedgerRepository struct {
	db  *DB
	now func() time.Time
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *LedgerRepository) IsProcessed(ctx context.Context, entryKey string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM processed_entries WHERE entry_key = ? LIMIT 1`, entryKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check processed entry: %w", err)
	}

	return true, nil
}

// MarkProcessed inserts or replaces the record for the entry key.
func (r *LedgerRepository) MarkProcessed(ctx context.Context, params MarkParams) error {
	var postID sql.NullInt64
	if params.PostID != nil {
		postID = sql.NullInt64{Int64: *params.PostID, Valid: true}
	}

	var postURL sql.NullString
	if params.PostURL != nil {
		postURL = sql.NullString{String: *params.PostURL, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO processed_entries (
			entry_key, feed_url, entry_title, entry_link, wp_post_id, wp_post_url, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entry_key) DO UPDATE SET
			feed_url = excluded.feed_url,
			entry_title = excluded.entry_title,
			entry_link = excluded.entry_link,
			wp_post_id = excluded.wp_post_id,
			wp_post_url = excluded.wp_post_url,
			processed_at = excluded.processed_at
	`, params.EntryKey, params.FeedURL, params.EntryTitle, params.EntryLink,
		postID, postURL, r.now().UTC().Format(timeLayout))

	if err != nil {
		return fmt.Errorf("failed to mark entry processed: %w", err)
	}

	return nil
}

// Count returns the number of records, optionally limited to one feed.
func (r *LedgerRepository) Count(ctx context.Context, feedURL string) (int, error) {
	query := `SELECT COUNT(*) FROM processed_entries`
	var args []any
	if feedURL != "" {
		query += ` WHERE feed_url = ?`
		args = append(args, feedURL)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count processed entries: %w", err)
	}

	return count, nil
}

func (r *LedgerRepository) CountByFeed(ctx context.Context) ([]FeedCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT feed_url, COUNT(*) FROM processed_entries
		GROUP BY feed_url
		ORDER BY feed_url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count processed entries by feed: %w", err)
	}
	defer rows.Close()

	var counts []FeedCount
	for rows.Next() {
		var fc FeedCount
		if err := rows.Scan(&fc.FeedURL, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan feed count: %w", err)
		}
		counts = append(counts, fc)
	}

	return counts, rows.Err()
}

// Recent returns the newest records first.
func (r *LedgerRepository) Recent(ctx context.Context, limit int, feedURL string) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, entry_key, feed_url, entry_title, entry_link, wp_post_id, wp_post_url, processed_at
		FROM processed_entries`
	var args []any
	if feedURL != "" {
		query += ` WHERE feed_url = ?`
		args = append(args, feedURL)
	}
	query += ` ORDER BY processed_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent entries: %w", err)
	}

	return records, nil
}

// Clear removes every record and returns how many were removed.
func (r *LedgerRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM processed_entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear processed entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed entries: %w", err)
	}

	return removed, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var record Record
	var postID sql.NullInt64
	var postURL sql.NullString
	var processedAt string

	err := rows.Scan(&record.ID, &record.EntryKey, &record.FeedURL, &record.EntryTitle,
		&record.EntryLink, &postID, &postURL, &processedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to scan processed entry: %w", err)
	}

	if postID.Valid {
		record.PostID = &postID.Int64
	}
	if postURL.Valid {
		record.PostURL = &postURL.String
	}

	record.ProcessedAt, err = time.Parse(timeLayout, processedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse processed_at: %w", err)
	}

	return record, nil
}
