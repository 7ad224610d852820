package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/epinal/sharpline/internal/domain"
)

type fakePickStore struct {
	stored  []domain.Pick
	listErr error
	gotOpts domain.ListOpts
}

func (f *fakePickStore) Insert(ctx context.Context, pick domain.Pick) error       { return nil }
func (f *fakePickStore) InsertBatch(ctx context.Context, picks []domain.Pick) error { return nil }

func (f *fakePickStore) GetByID(ctx context.Context, id string) (domain.Pick, error) {
	return domain.Pick{}, domain.ErrNotFound
}

// ListRecent returns stored picks newest first, matching the real store's
// ordering.
func (f *fakePickStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.Pick, error) {
	f.gotOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Pick, len(f.stored))
	for i, p := range f.stored {
		out[len(f.stored)-1-i] = p
	}
	return out, nil
}

func (f *fakePickStore) ListByGame(ctx context.Context, gameID string) ([]domain.Pick, error) {
	return nil, nil
}

func (f *fakePickStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.stored)), nil
}

type fakeArchiver struct {
	date     string
	archived []domain.Pick
	writes   int
}

func (f *fakeArchiver) ArchiveOddsSnapshot(ctx context.Context, snap domain.OddsSnapshot) (string, error) {
	return "", nil
}

func (f *fakeArchiver) ArchivePicks(ctx context.Context, date string, picks []domain.Pick) (string, error) {
	f.date = date
	f.archived = picks
	f.writes++
	return "picks/" + date + "/picks.json", nil
}

func testOrchestrator(store domain.PickStore, arch domain.SnapshotArchiver) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(Deps{PickStore: store, Archiver: arch}, time.Minute, time.Hour, logger)
}

func pickAt(id string, ts time.Time) domain.Pick {
	return domain.Pick{ID: id, GameID: "game-" + id, Timestamp: ts}
}

// The pick archive path is fixed per date, so every write must carry the full
// day's slate. A later cycle publishing only its own fresh picks would
// clobber everything archived earlier in the day.
func TestPublishArchivesFullDaySlate(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	earlier := []domain.Pick{
		pickAt("p1", day.Add(2*time.Hour)),
		pickAt("p2", day.Add(5*time.Hour)),
	}
	fresh := []domain.Pick{pickAt("p3", day.Add(9*time.Hour))}

	store := &fakePickStore{stored: append(append([]domain.Pick{}, earlier...), fresh...)}
	arch := &fakeArchiver{}
	o := testOrchestrator(store, arch)

	o.publish(context.Background(), domain.OddsSnapshot{}, "20260829", fresh)

	if arch.writes != 1 {
		t.Fatalf("ArchivePicks called %d times, want 1", arch.writes)
	}
	if arch.date != "20260829" {
		t.Errorf("archived date = %q, want %q", arch.date, "20260829")
	}
	if len(arch.archived) != 3 {
		t.Fatalf("archived %d picks, want the full day's 3", len(arch.archived))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if arch.archived[i].ID != want {
			t.Errorf("archived[%d].ID = %q, want %q", i, arch.archived[i].ID, want)
		}
	}

	if store.gotOpts.Since == nil || !store.gotOpts.Since.Equal(day) {
		t.Errorf("ListRecent Since = %v, want %v", store.gotOpts.Since, day)
	}
	wantUntil := day.Add(24 * time.Hour)
	if store.gotOpts.Until == nil || !store.gotOpts.Until.Equal(wantUntil) {
		t.Errorf("ListRecent Until = %v, want %v", store.gotOpts.Until, wantUntil)
	}
	if store.gotOpts.Limit != 0 {
		t.Errorf("ListRecent Limit = %d, want 0 so the slate is never truncated", store.gotOpts.Limit)
	}
}

func TestPublishArchivesFreshWhenSlateLoadFails(t *testing.T) {
	fresh := []domain.Pick{pickAt("p9", time.Now().UTC())}
	store := &fakePickStore{listErr: errors.New("pool exhausted")}
	arch := &fakeArchiver{}
	o := testOrchestrator(store, arch)

	o.publish(context.Background(), domain.OddsSnapshot{}, "20260829", fresh)

	if arch.writes != 1 {
		t.Fatalf("ArchivePicks called %d times, want 1", arch.writes)
	}
	if len(arch.archived) != 1 || arch.archived[0].ID != "p9" {
		t.Errorf("archived = %v, want just the fresh pick", arch.archived)
	}
}

func TestPublishSkipsArchiveWithoutFreshPicks(t *testing.T) {
	store := &fakePickStore{stored: []domain.Pick{pickAt("p1", time.Now().UTC())}}
	arch := &fakeArchiver{}
	o := testOrchestrator(store, arch)

	o.publish(context.Background(), domain.OddsSnapshot{}, "20260829", nil)

	if arch.writes != 0 {
		t.Errorf("ArchivePicks called %d times, want 0 for a cycle with no fresh picks", arch.writes)
	}
}
