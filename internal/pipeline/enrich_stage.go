package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hts-tools/rfq-processor/internal/enrich"
	"github.com/hts-tools/rfq-processor/internal/entity"
)

// EnrichStage fans record enrichment out over a bounded worker pool.
// Records have no ordering dependency on each other, but the sink does:
// results are written into a pre-sized slice by index, so the output order
// always equals the input order.
type EnrichStage struct {
	Service enrich.Service
	Workers int
	Logger  *slog.Logger
}

func NewEnrichStage(svc enrich.Service, workers int, logger *slog.Logger) *EnrichStage {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichStage{Service: svc, Workers: workers, Logger: logger}
}

// Run enriches every record. It never fails: the enrichment service already
// degrades to pass-through / empty values on upstream trouble.
func (s *EnrichStage) Run(ctx context.Context, records []entity.LineItemRecord) []entity.EnrichedRecord {
	start := time.Now()
	out := make([]entity.EnrichedRecord, len(records))

	idx := make(chan int)
	var wg sync.WaitGroup
	workers := s.Workers
	if workers > len(records) {
		workers = len(records)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				rec := records[i]
				out[i] = entity.EnrichedRecord{
					LineItemRecord: rec,
					CleanedNotes:   s.Service.Clean(ctx, rec.NotesText),
					Manufacturers:  s.Service.ExtractManufacturers(ctx, rec.NotesText),
				}
			}
		}()
	}
	for i := range records {
		idx <- i
	}
	close(idx)
	wg.Wait()

	s.Logger.Info("pipeline.enrich.ok",
		"records", len(records),
		"workers", workers,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}
