package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/repository"
)

// ActivityRecorder writes audit entries. Writes are best-effort: an audit
// failure is logged and swallowed, never rolled into the primary operation's
// result. The state change the entry describes has already happened.
type ActivityRecorder struct {
	repo   repository.ActivityRepository
	logger *slog.Logger
}

func NewActivityRecorder(repo repository.ActivityRepository, logger *slog.Logger) *ActivityRecorder {
	return &ActivityRecorder{repo: repo, logger: logger}
}

// Record appends one audit entry.
func (r *ActivityRecorder) Record(ctx context.Context, userID, action string, md model.ActivityMetadata) {
	metadata, err := json.Marshal(md)
	if err != nil {
		r.logger.Warn("could not encode activity metadata",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		metadata = []byte("{}")
	}

	entry := &model.ActivityLog{
		UserID:   userID,
		Action:   action,
		Metadata: string(metadata),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Warn("could not write activity entry",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

// RecentProjectUpdates returns the user's recent project_updated entries
// whose metadata references projectID. Entries with unparsable metadata are
// excluded, not errored: the log is free-form and one bad row must not hide
// the rest.
func (r *ActivityRecorder) RecentProjectUpdates(ctx context.Context, userID, projectID string) ([]model.ActivityLog, error) {
	entries, err := r.repo.ListByUserAction(ctx, userID, model.ActionProjectUpdated, 50)
	if err != nil {
		return nil, err
	}

	matched := make([]model.ActivityLog, 0, len(entries))
	for _, entry := range entries {
		md, ok := entry.ParseMetadata()
		if !ok {
			continue
		}
		if md.ProjectID == projectID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}
