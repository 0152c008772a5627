package enrich

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeUpstream struct {
	cleanCalls   int32
	extractCalls int32
	cleanErr     error
	extractErr   error
	failFirstN   int32
}

func (f *fakeUpstream) Clean(ctx context.Context, text string) (string, error) {
	n := atomic.AddInt32(&f.cleanCalls, 1)
	if f.cleanErr != nil {
		return "", f.cleanErr
	}
	if n <= f.failFirstN {
		return "", errors.New("transient")
	}
	return "cleaned:" + text, nil
}

func (f *fakeUpstream) ExtractManufacturers(ctx context.Context, text string) (string, error) {
	atomic.AddInt32(&f.extractCalls, 1)
	if f.extractErr != nil {
		return "", f.extractErr
	}
	return "Acme - Globex", nil
}

func testConfig() Config {
	return Config{MaxAttempts: 3, BackoffBase: time.Millisecond, BackoffMax: 2 * time.Millisecond}
}

func TestCleanFallsBackToInput(t *testing.T) {
	up := &fakeUpstream{cleanErr: errors.New("quota exceeded")}
	e := NewEnricher(up, up, testConfig(), nil)

	got := e.Clean(context.Background(), "original text")
	if got != "original text" {
		t.Fatalf("Clean = %q, want original input on failure", got)
	}
	if n := atomic.LoadInt32(&up.cleanCalls); n != 3 {
		t.Errorf("upstream called %d times, want 3 (max attempts)", n)
	}
}

func TestExtractFallsBackToEmpty(t *testing.T) {
	up := &fakeUpstream{extractErr: errors.New("timeout")}
	e := NewEnricher(up, up, testConfig(), nil)

	if got := e.ExtractManufacturers(context.Background(), "some note"); got != "" {
		t.Fatalf("ExtractManufacturers = %q, want empty on failure", got)
	}
}

func TestCleanRetriesTransientFailures(t *testing.T) {
	up := &fakeUpstream{failFirstN: 2}
	e := NewEnricher(up, up, testConfig(), nil)

	got := e.Clean(context.Background(), "note")
	if got != "cleaned:note" {
		t.Fatalf("Clean = %q, want success after retries", got)
	}
	if n := atomic.LoadInt32(&up.cleanCalls); n != 3 {
		t.Errorf("upstream called %d times, want 3", n)
	}
}

func TestCleanMemoizesIdenticalInputs(t *testing.T) {
	up := &fakeUpstream{}
	e := NewEnricher(up, up, testConfig(), nil)

	ctx := context.Background()
	first := e.Clean(ctx, "same note")
	// Trimmed key: leading/trailing whitespace hits the same entry.
	second := e.Clean(ctx, "same note")
	if first != second {
		t.Fatalf("memoized values differ: %q vs %q", first, second)
	}
	if n := atomic.LoadInt32(&up.cleanCalls); n != 1 {
		t.Errorf("upstream called %d times, want 1", n)
	}
}

func TestCleanSingleFlightUnderConcurrency(t *testing.T) {
	up := &fakeUpstream{}
	e := NewEnricher(up, up, testConfig(), nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := e.Clean(ctx, "shared note"); got != "cleaned:shared note" {
				t.Errorf("Clean = %q", got)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt32(&up.cleanCalls); n != 1 {
		t.Errorf("upstream called %d times under concurrency, want 1", n)
	}
}

func TestEmptyInputShortCircuits(t *testing.T) {
	up := &fakeUpstream{}
	e := NewEnricher(up, up, testConfig(), nil)

	if got := e.Clean(context.Background(), "   "); got != "   " {
		t.Fatalf("Clean(blank) = %q, want input unchanged", got)
	}
	if got := e.ExtractManufacturers(context.Background(), ""); got != "" {
		t.Fatalf("ExtractManufacturers(empty) = %q, want empty", got)
	}
	if up.cleanCalls != 0 || up.extractCalls != 0 {
		t.Errorf("upstream called for empty input")
	}
}
