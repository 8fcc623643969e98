package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/repository"
)

// ActivityRepo implements repository.ActivityRepository. The table is
// append-only; there is no update or delete path.
type ActivityRepo struct {
	conn *sql.DB
}

func NewActivityRepo(db *DB) *ActivityRepo {
	return &ActivityRepo{conn: db.conn}
}

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

func (r *ActivityRepo) Create(ctx context.Context, entry *model.ActivityLog) error {
	entry.ID = xid.New().String()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Metadata == "" {
		entry.Metadata = "{}"
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, action, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Action, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating activity entry: %w", err)
	}
	return nil
}

func (r *ActivityRepo) ListByUserAction(ctx context.Context, userID, action string, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, action, metadata, created_at
		 FROM activity_logs
		 WHERE user_id = ? AND action = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, action, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activity entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityLog, 0, limit)
	for rows.Next() {
		var e model.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activity entries: %w", err)
	}
	return entries, nil
}
