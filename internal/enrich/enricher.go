package enrich

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Config holds retry and backoff tuning for upstream calls.
type Config struct {
	MaxAttempts int           // mandatory cap; default 3
	BackoffBase time.Duration // first retry delay, doubled per attempt; default 500ms
	BackoffMax  time.Duration // ceiling on a single delay; default 5s
}

// Enricher wraps a TextCleaner and an EntityExtractor with the pipeline's
// fallback policy, bounded retries, and a per-run memoization cache. The
// same notes text recurs across records, so identical trimmed inputs are
// resolved upstream exactly once even under concurrent callers.
type Enricher struct {
	cleaner   TextCleaner
	extractor EntityExtractor
	cfg       Config
	logger    *slog.Logger

	mu    sync.Mutex
	clean map[string]*memoEntry
	manuf map[string]*memoEntry
}

type memoEntry struct {
	done  chan struct{}
	value string
}

func NewEnricher(cleaner TextCleaner, extractor EntityExtractor, cfg Config, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 5 * time.Second
	}
	return &Enricher{
		cleaner:   cleaner,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
		clean:     make(map[string]*memoEntry),
		manuf:     make(map[string]*memoEntry),
	}
}

// Clean returns the cleaned text, or the original input unchanged when the
// upstream service keeps failing.
func (e *Enricher) Clean(ctx context.Context, text string) string {
	key := strings.TrimSpace(text)
	if key == "" {
		return text
	}
	return e.memoized(ctx, e.clean, key, func(ctx context.Context) (string, error) {
		return e.cleaner.Clean(ctx, text)
	}, text, "enrich.clean")
}

// ExtractManufacturers returns the hyphen-separated name list, or "" when
// the upstream service keeps failing.
func (e *Enricher) ExtractManufacturers(ctx context.Context, text string) string {
	key := strings.TrimSpace(text)
	if key == "" {
		return ""
	}
	return e.memoized(ctx, e.manuf, key, func(ctx context.Context) (string, error) {
		return e.extractor.ExtractManufacturers(ctx, text)
	}, "", "enrich.manufacturers")
}

// memoized resolves key through cache, collapsing concurrent lookups of the
// same key onto one upstream call. The fallback value is cached too: a
// failed key is not retried within the run.
func (e *Enricher) memoized(ctx context.Context, cache map[string]*memoEntry, key string, call func(context.Context) (string, error), fallback, event string) string {
	e.mu.Lock()
	if ent, ok := cache[key]; ok {
		e.mu.Unlock()
		select {
		case <-ent.done:
			return ent.value
		case <-ctx.Done():
			return fallback
		}
	}
	ent := &memoEntry{done: make(chan struct{})}
	cache[key] = ent
	e.mu.Unlock()

	ent.value = e.withRetry(ctx, call, fallback, event)
	close(ent.done)
	return ent.value
}

func (e *Enricher) withRetry(ctx context.Context, call func(context.Context) (string, error), fallback, event string) string {
	delay := e.cfg.BackoffBase
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out
		}
		e.logger.Warn(event+".attempt_failed",
			"attempt", attempt,
			"max_attempts", e.cfg.MaxAttempts,
			"error", err,
		)
		if attempt == e.cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			e.logger.Warn(event+".fallback", "reason", "context cancelled")
			return fallback
		}
		delay *= 2
		if delay > e.cfg.BackoffMax {
			delay = e.cfg.BackoffMax
		}
	}
	e.logger.Warn(event+".fallback", "reason", "attempts exhausted")
	return fallback
}
