package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ RequestRepository = (*SQLRequestRepository)(nil)

// SQLRequestRepository is the SQLite-backed RequestRepository.
type SQLRequestRepository struct {
	db *DB
}

func NewRequestRepository(db *DB) *SQLRequestRepository {
	return &SQLRequestRepository{db: db}
}

const requestColumns = "id, user_id, user_name, title, year, media_kind, external_ref, status, admin_message_id, created_at, last_checked_at"

// timeLayout is RFC 3339 with fixed-width nanoseconds. RFC3339Nano trims
// trailing zeros, which breaks lexical ordering for sub-second neighbors;
// ORDER BY on these columns relies on lexical order equalling time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (r *SQLRequestRepository) CreateIfUnderQuota(ctx context.Context, req *Request, limit int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pending int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE user_id = ? AND status = ?`,
		req.UserID, StatusPending,
	).Scan(&pending)
	if err != nil {
		return false, fmt.Errorf("failed to count pending requests: %w", err)
	}

	if pending >= limit {
		return false, nil
	}

	if err := insertRequest(ctx, tx, req); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit request: %w", err)
	}
	return true, nil
}

func (r *SQLRequestRepository) ReplacePending(ctx context.Context, oldID string, userID int64, req *Request) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM requests WHERE id = ? AND user_id = ? AND status = ?`,
		oldID, userID, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete replaced request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Old record missing, foreign, or concurrently resolved. Leave it
		// untouched and report failure so an admin completion is never lost.
		return false, nil
	}

	if err := insertRequest(ctx, tx, req); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit replacement: %w", err)
	}
	return true, nil
}

func insertRequest(ctx context.Context, tx *sql.Tx, req *Request) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO requests (`+requestColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.UserName, req.Title, req.Year, req.MediaKind,
		req.ExternalRef, req.Status, req.AdminMessageID,
		req.CreatedAt.UTC().Format(timeLayout),
		req.LastCheckedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (r *SQLRequestRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (r *SQLRequestRepository) ListPending(ctx context.Context, userID int64) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests
		 WHERE user_id = ? AND status = ?
		 ORDER BY created_at`,
		userID, StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func (r *SQLRequestRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLRequestRepository) SetAdminMessageID(ctx context.Context, id string, messageID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE requests SET admin_message_id = ? WHERE id = ?`,
		messageID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set admin message id: %w", err)
	}
	return nil
}

func (r *SQLRequestRepository) TouchLastChecked(ctx context.Context, id string, checkedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE requests SET last_checked_at = ? WHERE id = ?`,
		checkedAt.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch last checked time: %w", err)
	}
	return nil
}

func (r *SQLRequestRepository) PendingBatch(ctx context.Context, limit int) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests
		 WHERE status = ?
		 ORDER BY last_checked_at
		 LIMIT ?`,
		StatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending batch: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func (r *SQLRequestRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

func collectRequests(rows *sql.Rows) ([]Request, error) {
	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request rows: %w", err)
	}
	return requests, nil
}

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*Request, error) {
	var (
		req        Request
		statusStr  string
		createdRaw string
		checkedRaw string
	)

	if err := scanner.Scan(
		&req.ID, &req.UserID, &req.UserName, &req.Title, &req.Year,
		&req.MediaKind, &req.ExternalRef, &statusStr, &req.AdminMessageID,
		&createdRaw, &checkedRaw,
	); err != nil {
		return nil, err
	}

	req.Status = Status(statusStr)
	if created, err := parseTimeString(createdRaw); err == nil {
		req.CreatedAt = created
	}
	if checked, err := parseTimeString(checkedRaw); err == nil {
		req.LastCheckedAt = checked
	}
	return &req, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
