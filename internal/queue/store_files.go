package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const fileColumns = "id, path, status, stage, progress, error_message, result_path, created_at, updated_at"

// Add enqueues a file as pending and returns the stored record.
func (s *Store) Add(ctx context.Context, path string) (*File, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		"INSERT INTO files (path, status, created_at, updated_at) VALUES (?, ?, ?, ?)",
		path, string(StatusPending), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: read id: %w", path, err)
	}
	return s.Get(ctx, id)
}

// Get returns one queue entry by id.
func (s *Store) Get(ctx context.Context, id int64) (*File, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("queue entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load queue entry %d: %w", id, err)
	}
	return file, nil
}

// List returns queue entries in insertion order, optionally filtered by
// status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*File, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + fileColumns + " FROM files"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (?" + strings.Repeat(",?", len(statuses)-1) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// NextPending returns the oldest pending entry, or nil when the queue is
// drained.
func (s *Store) NextPending(ctx context.Context) (*File, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE status = ? ORDER BY id LIMIT 1",
		string(StatusPending))
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	return file, nil
}

// MarkProcessing transitions an entry to processing and resets its
// progress.
func (s *Store) MarkProcessing(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusProcessing, "", "", 0)
}

// MarkCompleted transitions an entry to completed, recording where the
// result was written.
func (s *Store) MarkCompleted(ctx context.Context, id int64, resultPath string) error {
	return s.setStatus(ctx, id, StatusCompleted, "", resultPath, 100)
}

// MarkFailed transitions an entry to failed with a human-readable
// message.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.setStatus(ctx, id, StatusFailed, message, "", 0)
}

func (s *Store) setStatus(ctx context.Context, id int64, status Status, message, resultPath string, progress float64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		"UPDATE files SET status = ?, error_message = ?, result_path = ?, progress = ?, updated_at = ? WHERE id = ?",
		string(status), message, resultPath, progress, now, id,
	)
	if err != nil {
		return fmt.Errorf("update queue entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update queue entry %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("queue entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateProgress records the current stage and percent for an entry.
func (s *Store) UpdateProgress(ctx context.Context, id int64, stage string, percent float64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		"UPDATE files SET stage = ?, progress = ?, updated_at = ? WHERE id = ?",
		stage, percent, now, id,
	)
	if err != nil {
		return fmt.Errorf("update progress for entry %d: %w", id, err)
	}
	return nil
}

// ResetStuck returns processing entries to pending. Called on startup so
// entries orphaned by a crash run again.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		"UPDATE files SET status = ?, stage = '', progress = 0, updated_at = ? WHERE status = ?",
		string(StatusPending), now, string(StatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck entries: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes entries with the given statuses, or every entry when no
// status is given. Returns the number of rows removed.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := "DELETE FROM files"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (?" + strings.Repeat(",?", len(statuses)-1) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the number of entries per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM files GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var (
		file      File
		status    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&file.ID, &file.Path, &status, &file.Stage, &file.Progress,
		&file.ErrorMessage, &file.ResultPath, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	file.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		file.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		file.UpdatedAt = ts
	}
	return &file, nil
}
