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

// GenerationRepo implements repository.GenerationRepository.
//
// Status transitions are guarded in SQL: every UPDATE carries the expected
// current status in its WHERE clause, so a stale writer affects zero rows
// instead of clobbering a terminal record. That single-statement
// compare-and-set is what keeps completed/failed absorbing without any
// application-level locking.
type GenerationRepo struct {
	conn *sql.DB
}

func NewGenerationRepo(db *DB) *GenerationRepo {
	return &GenerationRepo{conn: db.conn}
}

var _ repository.GenerationRepository = (*GenerationRepo)(nil)

const generationColumns = `id, project_id, prompt, status, tokens_used, error, created_at, completed_at`

func (r *GenerationRepo) Create(ctx context.Context, gen *model.Generation) error {
	gen.ID = xid.New().String()
	if gen.Status == "" {
		gen.Status = model.GenerationPending
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO generations (id, project_id, prompt, status, tokens_used, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gen.ID, gen.ProjectID, gen.Prompt, string(gen.Status), gen.TokensUsed,
		gen.Error, gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating generation: %w", err)
	}
	return nil
}

func (r *GenerationRepo) GetByID(ctx context.Context, id string) (*model.Generation, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)

	gen, err := scanGeneration(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("generation", id)
		}
		return nil, fmt.Errorf("sqlite: getting generation %s: %w", id, err)
	}
	return gen, nil
}

func (r *GenerationRepo) ListByProject(ctx context.Context, projectID string, opts repository.ListOptions) ([]model.Generation, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+generationColumns+`
		 FROM generations
		 WHERE project_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing generations: %w", err)
	}
	defer rows.Close()

	return collectGenerations(rows, limit)
}

func (r *GenerationRepo) ListAllByProject(ctx context.Context, projectID string) ([]model.Generation, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+generationColumns+`
		 FROM generations
		 WHERE project_id = ?
		 ORDER BY created_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all generations: %w", err)
	}
	defer rows.Close()

	return collectGenerations(rows, 0)
}

// CountRecentByUser joins through projects so the count covers every project
// the user owns, not just one. This is the quota guard's only query.
func (r *GenerationRepo) CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM generations g
		 JOIN projects p ON p.id = g.project_id
		 WHERE p.user_id = ? AND g.created_at >= ?`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting recent generations: %w", err)
	}
	return count, nil
}

func (r *GenerationRepo) MarkRunning(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE generations SET status = ? WHERE id = ? AND status = ?`,
		string(model.GenerationRunning), id, string(model.GenerationPending),
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking generation %s running: %w", id, err)
	}
	return checkTransition(result, id)
}

func (r *GenerationRepo) MarkCompleted(ctx context.Context, id string, tokensUsed int, completedAt time.Time) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE generations
		 SET status = ?, tokens_used = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		string(model.GenerationCompleted), tokensUsed, completedAt.UTC(),
		id, string(model.GenerationRunning),
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking generation %s completed: %w", id, err)
	}
	return checkTransition(result, id)
}

// MarkFailed accepts pending as well as running: the orchestrator parks a
// generation it could not enqueue, the worker fails one whose AI call broke.
// Terminal records still match zero rows.
func (r *GenerationRepo) MarkFailed(ctx context.Context, id string, reason string, completedAt time.Time) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE generations
		 SET status = ?, error = ?, completed_at = ?
		 WHERE id = ? AND status IN (?, ?)`,
		string(model.GenerationFailed), reason, completedAt.UTC(),
		id, string(model.GenerationPending), string(model.GenerationRunning),
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking generation %s failed: %w", id, err)
	}
	return checkTransition(result, id)
}

// checkTransition turns "zero rows matched" into NotFound — the generation
// either does not exist or is not in a state the transition applies to.
func checkTransition(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("generation", id)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*model.Generation, error) {
	var (
		gen         model.Generation
		status      string
		completedAt sql.NullTime
	)
	err := row.Scan(&gen.ID, &gen.ProjectID, &gen.Prompt, &status,
		&gen.TokensUsed, &gen.Error, &gen.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	gen.Status = model.GenerationStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		gen.CompletedAt = &t
	}
	return &gen, nil
}

func collectGenerations(rows *sql.Rows, capacityHint int) ([]model.Generation, error) {
	gens := make([]model.Generation, 0, capacityHint)
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning generation row: %w", err)
		}
		gens = append(gens, *gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating generations: %w", err)
	}
	return gens, nil
}
