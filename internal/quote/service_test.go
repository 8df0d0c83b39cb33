package quote

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tranenterprises/MotivationFiles2.0-sub001/internal/cache"
)

// fakeSource counts calls and serves canned data.
type fakeSource struct {
	todayCalls   int
	archiveCalls int
	countCalls   int
	createCalls  int

	err error
}

func (f *fakeSource) Today(context.Context) (Quote, error) {
	f.todayCalls++
	if f.err != nil {
		return Quote{}, f.err
	}
	return Quote{ID: fmt.Sprintf("q%d", f.todayCalls), Text: "rise and grind", Category: "motivation"}, nil
}

func (f *fakeSource) Archive(_ context.Context, page, limit int, category string) (Page, error) {
	f.archiveCalls++
	if f.err != nil {
		return Page{}, f.err
	}
	return Page{Quotes: []Quote{{ID: "a1", Category: category}}, Total: page * limit}, nil
}

func (f *fakeSource) Count(context.Context) (int, error) {
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return 42, nil
}

func (f *fakeSource) Create(_ context.Context, q Quote) (Quote, error) {
	f.createCalls++
	if f.err != nil {
		return Quote{}, f.err
	}
	q.ID = "created"
	return q, nil
}

func newTestService(t *testing.T) (*Service, *fakeSource) {
	t.Helper()

	cm, err := cache.NewManager(cache.Config{Dir: t.TempDir(), SessionID: "svc-test"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { cm.Close() })

	src := &fakeSource{}
	return NewService(src, cm, DefaultTTLPolicy(), nil), src
}

func TestService_TodayIsCached(t *testing.T) {
	svc, src := newTestService(t)
	ctx := context.Background()

	first, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	second, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}

	if src.todayCalls != 1 {
		t.Errorf("expected 1 source call, got %d", src.todayCalls)
	}
	if first.ID != second.ID {
		t.Errorf("cached quote differs: %q vs %q", first.ID, second.ID)
	}
}

func TestService_ArchiveKeyedByQuery(t *testing.T) {
	svc, src := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Archive(ctx, 1, 10, "motivation"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if _, err := svc.Archive(ctx, 1, 10, "motivation"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if src.archiveCalls != 1 {
		t.Errorf("same query should hit cache, got %d source calls", src.archiveCalls)
	}

	// A different page is a different key.
	if _, err := svc.Archive(ctx, 2, 10, "motivation"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if src.archiveCalls != 2 {
		t.Errorf("different query should fetch, got %d source calls", src.archiveCalls)
	}
}

func TestService_CreateInvalidatesReads(t *testing.T) {
	svc, src := newTestService(t)
	ctx := context.Background()

	// Warm every cached read.
	if _, err := svc.Today(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Archive(ctx, 1, 10, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Count(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Create(ctx, Quote{Text: "new day", Category: "gratitude"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Every read now goes back to the source.
	svc.Today(ctx)
	svc.Archive(ctx, 1, 10, "")
	svc.Count(ctx)

	if src.todayCalls != 2 || src.archiveCalls != 2 || src.countCalls != 2 {
		t.Errorf("expected all reads refetched after create, got today=%d archive=%d count=%d",
			src.todayCalls, src.archiveCalls, src.countCalls)
	}
}

func TestService_SourceErrorsPropagate(t *testing.T) {
	svc, src := newTestService(t)
	ctx := context.Background()

	src.err = errors.New("backend unavailable")

	if _, err := svc.Today(ctx); !errors.Is(err, src.err) {
		t.Errorf("Today should propagate the source error, got %v", err)
	}
	if _, err := svc.Create(ctx, Quote{}); !errors.Is(err, src.err) {
		t.Errorf("Create should propagate the source error, got %v", err)
	}

	// Nothing was cached for the failed read.
	src.err = nil
	if _, err := svc.Today(ctx); err != nil {
		t.Fatalf("Today failed after recovery: %v", err)
	}
	if src.todayCalls != 2 {
		t.Errorf("failed fetch must not be cached, got %d calls", src.todayCalls)
	}
}

func TestService_TodayKeyFollowsDate(t *testing.T) {
	svc, src := newTestService(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if _, err := svc.Today(ctx); err != nil {
		t.Fatal(err)
	}

	// Midnight rolls the key over even though the TTL has not elapsed.
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := svc.Today(ctx); err != nil {
		t.Fatal(err)
	}

	if src.todayCalls != 2 {
		t.Errorf("expected a fresh fetch after the date rolled over, got %d calls", src.todayCalls)
	}
}
