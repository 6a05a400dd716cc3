package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

type stubRepo struct {
	entries   []Entry
	appendErr error
}

func (s *stubRepo) AppendEntry(ctx context.Context, entry Entry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubRepo) ListEntries(ctx context.Context) ([]Entry, error) {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	// Newest first, as the real repository orders by occurred_at DESC.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testActor() shared.AuthenticatedUser {
	return shared.AuthenticatedUser{
		ID:             2,
		Name:           "Ada",
		Email:          "ada@example.com",
		Role:           shared.RoleAdmin,
		OrganizationID: 1,
	}
}

func TestLogSnapshotsActorIdentity(t *testing.T) {
	repo := &stubRepo{}
	recorder := NewRecorder(repo, discardLogger())

	actor := testActor()
	recorder.Log(context.Background(), actor, shared.ActionCreateTask, 7, `title="Fix login bug" assignedTo=2`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.UserEmail != "ada@example.com" {
		t.Fatalf("expected snapshot email, got %q", entry.UserEmail)
	}
	if entry.UserRole != shared.RoleAdmin {
		t.Fatalf("expected snapshot role, got %q", entry.UserRole)
	}
	if entry.ResourceID == nil || *entry.ResourceID != 7 {
		t.Fatalf("expected resource id 7, got %v", entry.ResourceID)
	}

	// Changing the actor afterwards must not touch the stored entry.
	actor.Email = "renamed@example.com"
	actor.Role = shared.RoleViewer
	if repo.entries[0].UserEmail != "ada@example.com" || repo.entries[0].UserRole != shared.RoleAdmin {
		t.Fatalf("entry mutated after actor change: %+v", repo.entries[0])
	}
}

func TestLogWithoutResource(t *testing.T) {
	repo := &stubRepo{}
	recorder := NewRecorder(repo, discardLogger())

	recorder.Log(context.Background(), testActor(), shared.ActionViewTasks, 0, "")

	if repo.entries[0].ResourceID != nil {
		t.Fatalf("expected nil resource id, got %v", repo.entries[0].ResourceID)
	}
	if repo.entries[0].Action != shared.ActionViewTasks {
		t.Fatalf("unexpected action %q", repo.entries[0].Action)
	}
}

func TestLogSwallowsAppendFailure(t *testing.T) {
	repo := &stubRepo{appendErr: errors.New("connection refused")}
	recorder := NewRecorder(repo, discardLogger())

	// Must not panic and must not surface the error.
	recorder.Log(context.Background(), testActor(), shared.ActionDeleteTask, 7, "")

	if len(repo.entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(repo.entries))
	}
}

func TestFindAllNewestFirst(t *testing.T) {
	repo := &stubRepo{}
	recorder := NewRecorder(repo, discardLogger())
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	recorder.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	recorder.Log(context.Background(), testActor(), shared.ActionCreateTask, 1, "")
	recorder.Log(context.Background(), testActor(), shared.ActionUpdateTask, 1, "")
	recorder.Log(context.Background(), testActor(), shared.ActionDeleteTask, 1, "")

	entries, err := recorder.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatalf("entries not in non-increasing timestamp order: %v then %v",
				entries[i-1].Timestamp, entries[i].Timestamp)
		}
	}
}
