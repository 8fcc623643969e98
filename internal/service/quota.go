package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aminulbx/genboard/internal/repository"
)

// Quota limits. The window slides: it is recomputed against the clock on
// every check, so two checks a second apart see overlapping but
// non-identical windows.
const (
	QuotaLimit  = 50
	QuotaWindow = 24 * time.Hour
)

// QuotaGuard decides whether a user may submit another generation request.
//
// It is stateless: the only record it consults is the generation history
// itself, counted across every project the user owns. That costs a bounded
// scan per check (the cap keeps it small) and in exchange the quota can
// never drift out of sync with the audit trail.
//
// The check is not atomic with the generation's creation. Two concurrent
// submits at the boundary can both pass and push the count slightly past the
// limit — this is an accepted soft limit, not a hard invariant.
type QuotaGuard struct {
	generations repository.GenerationRepository
	limit       int
	window      time.Duration
	now         func() time.Time
}

// NewQuotaGuard creates a guard over the generation history.
func NewQuotaGuard(generations repository.GenerationRepository) *QuotaGuard {
	return &QuotaGuard{
		generations: generations,
		limit:       QuotaLimit,
		window:      QuotaWindow,
		now:         time.Now,
	}
}

// Allow reports whether the user is under their quota right now.
func (g *QuotaGuard) Allow(ctx context.Context, userID string) (bool, error) {
	since := g.now().Add(-g.window)
	count, err := g.generations.CountRecentByUser(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("counting recent generations: %w", err)
	}
	return count < g.limit, nil
}
