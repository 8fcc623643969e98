package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/repository"
)

// ProjectRepo implements repository.ProjectRepository.
type ProjectRepo struct {
	conn *sql.DB
}

func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{conn: db.conn}
}

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

func (r *ProjectRepo) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()

	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	project.UpdatedAt = project.CreatedAt
	if project.Status == "" {
		project.Status = "active"
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.UserID, project.Name, project.Description,
		project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}
	return nil
}

// GetByOwner filters by (id, user_id) in the query itself. A project that
// exists but belongs to another user scans as no rows, which is exactly the
// indistinguishability the API promises.
func (r *ProjectRepo) GetByOwner(ctx context.Context, id, userID string) (*model.Project, error) {
	var p model.Project
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, status, created_at, updated_at
		 FROM projects WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return &p, nil
}

func (r *ProjectRepo) ListByOwner(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Project, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, name, description, status, created_at, updated_at
		 FROM projects
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0, limit)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE projects
		 SET name = ?, description = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		project.Name, project.Description, project.Status, project.UpdatedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", project.ID)
	}
	return nil
}

// DeleteCascade removes a project and its children in one transaction.
// Order is components, then generations, then the project row. Both child
// tables reference projects(id), so deleting the project first would violate
// the foreign keys; the transaction keeps a crash from leaving orphans.
func (r *ProjectRepo) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM components WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting components of project %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM generations WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting generations of project %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of project %s: %w", id, err)
	}
	return nil
}
