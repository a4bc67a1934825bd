package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/app"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

type slowIngestor struct {
	mu      sync.Mutex
	active  int
	maxSeen int
	calls   int
	err     error
}

func (s *slowIngestor) Ingest(ctx context.Context, t app.Target) (domain.IngestReport, error) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.active--
	s.calls++
	s.mu.Unlock()
	return domain.IngestReport{Added: 1, Source: domain.SourceDirectScrape}, s.err
}

func batchTargets(n int) []app.Target {
	out := make([]app.Target, n)
	for i := range out {
		out[i] = app.Target{URL: "https://example.com/listing", Query: "reviews"}
	}
	return out
}

func TestRunBatch_BoundsConcurrency(t *testing.T) {
	ing := &slowIngestor{}
	app.RunBatch(context.Background(), ing, batchTargets(9), 2)

	if ing.calls != 9 {
		t.Fatalf("calls = %d, want 9", ing.calls)
	}
	if ing.maxSeen > 2 {
		t.Fatalf("observed %d concurrent pipelines, worker limit is 2", ing.maxSeen)
	}
}

func TestRunBatch_FailuresDoNotStopTheBatch(t *testing.T) {
	ing := &slowIngestor{err: errors.New("scrape blocked")}
	app.RunBatch(context.Background(), ing, batchTargets(4), 2)

	if ing.calls != 4 {
		t.Fatalf("calls = %d, want 4", ing.calls)
	}
}

func TestRunBatch_ZeroWorkersStillRuns(t *testing.T) {
	ing := &slowIngestor{}
	app.RunBatch(context.Background(), ing, batchTargets(3), 0)

	if ing.calls != 3 {
		t.Fatalf("calls = %d, want 3", ing.calls)
	}
	if ing.maxSeen > 1 {
		t.Fatalf("observed %d concurrent pipelines, want serial execution", ing.maxSeen)
	}
}
