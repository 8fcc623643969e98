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

// ComponentRepo implements repository.ComponentRepository.
type ComponentRepo struct {
	conn *sql.DB
}

func NewComponentRepo(db *DB) *ComponentRepo {
	return &ComponentRepo{conn: db.conn}
}

var _ repository.ComponentRepository = (*ComponentRepo)(nil)

func (r *ComponentRepo) Create(ctx context.Context, component *model.Component) error {
	component.ID = xid.New().String()
	if component.CreatedAt.IsZero() {
		component.CreatedAt = time.Now().UTC()
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO components (id, project_id, generation_id, name, component_data, display_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		component.ID, component.ProjectID, component.GenerationID, component.Name,
		component.Data, component.Order, component.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating component: %w", err)
	}
	return nil
}

func (r *ComponentRepo) ListByProject(ctx context.Context, projectID string) ([]model.Component, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, project_id, generation_id, name, component_data, display_order, created_at
		 FROM components
		 WHERE project_id = ?
		 ORDER BY display_order ASC, created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing components: %w", err)
	}
	defer rows.Close()

	var components []model.Component
	for rows.Next() {
		var c model.Component
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.GenerationID, &c.Name,
			&c.Data, &c.Order, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning component row: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating components: %w", err)
	}
	return components, nil
}

func (r *ComponentRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM components WHERE project_id = ?`, projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting components: %w", err)
	}
	return count, nil
}
