package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// RepositoryPort defines data access methods for audit entries.
type RepositoryPort interface {
	AppendEntry(ctx context.Context, entry Entry) error
	ListEntries(ctx context.Context) ([]Entry, error)
}

// AppendMetrics counts append outcomes for operational dashboards.
type AppendMetrics interface {
	AuditAppend(outcome string)
}

// Recorder appends immutable audit entries and retrieves them newest-first.
type Recorder struct {
	repo    RepositoryPort
	logger  *slog.Logger
	metrics AppendMetrics
	now     func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo RepositoryPort, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// WithMetrics attaches an append outcome counter.
func (r *Recorder) WithMetrics(metrics AppendMetrics) *Recorder {
	r.metrics = metrics
	return r
}

// Log appends an entry snapshotting the actor's email and role at call time.
// A zero resourceID means the action had no single target. Append failures
// are logged and swallowed: the caller's primary operation must never fail
// because its audit entry could not be written.
func (r *Recorder) Log(ctx context.Context, actor shared.AuthenticatedUser, action shared.Action, resourceID int64, detail string) {
	entry := Entry{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		UserRole:  actor.Role,
		Action:    action,
		Detail:    detail,
		Timestamp: r.now().UTC(),
	}
	if resourceID != 0 {
		id := resourceID
		entry.ResourceID = &id
	}

	if err := r.repo.AppendEntry(ctx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.AuditAppend("error")
		}
		r.logger.Error("audit append failed",
			slog.String("action", string(action)),
			slog.Int64("user_id", actor.ID),
			slog.Any("error", err))
		return
	}
	if r.metrics != nil {
		r.metrics.AuditAppend("ok")
	}

	// Advisory operational line; the durable record is the appended entry.
	attrs := []any{
		slog.Time("at", entry.Timestamp),
		slog.String("user", actor.Email),
		slog.String("role", string(actor.Role)),
		slog.String("action", string(action)),
	}
	if entry.ResourceID != nil {
		attrs = append(attrs, slog.Int64("resource", *entry.ResourceID))
	}
	if detail != "" {
		attrs = append(attrs, slog.String("detail", detail))
	}
	r.logger.Info("audit", attrs...)
}

// FindAll returns every entry ordered by timestamp descending.
func (r *Recorder) FindAll(ctx context.Context) ([]Entry, error) {
	return r.repo.ListEntries(ctx)
}
