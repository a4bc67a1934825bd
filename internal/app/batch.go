package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// Ingestor is the slice of the ingestion pipeline the batch runner needs.
type Ingestor interface {
	Ingest(ctx context.Context, t Target) (domain.IngestReport, error)
}

// RunBatch ingests every target with at most workers pipelines in flight.
// Individual failures are logged and do not stop the batch.
func RunBatch(ctx context.Context, ing Ingestor, targets []Target, workers int) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, t := range targets {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("batch canceled before completion")
			break
		}

		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			defer sem.Release(1)

			rep, err := ing.Ingest(ctx, t)
			if err != nil {
				log.Warn().Str("url", t.URL).Err(err).Msg("ingest failed")
				return
			}
			log.Info().
				Str("url", t.URL).
				Int("added", rep.Added).
				Str("source", rep.Source).
				Msg("ingest ok")
		}(t)
	}

	wg.Wait()
}
