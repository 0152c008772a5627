package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/hts-tools/rfq-processor/constants"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		BusyTimeout: time.Second,
	}, logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { Close(db, logger) })
	return db
}

func TestRunLifecycleSuccess(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRunRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	id, err := repo.Start(ctx, "/in/rfq.pdf", "pdf")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkParsed(ctx, id, "98765", 4); err != nil {
		t.Fatal(err)
	}
	if err := repo.FinishSuccess(ctx, id, "/out/upload.xlsx", "/out/final.xlsx"); err != nil {
		t.Fatal(err)
	}

	runs, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != id {
		t.Errorf("id = %s, want %s", run.ID, id)
	}
	if run.DocumentID != "98765" || run.ItemCount != 4 {
		t.Errorf("parsed fields = %q/%d", run.DocumentID, run.ItemCount)
	}
	if run.Status != constants.RunStatusOK {
		t.Errorf("status = %s, want %s", run.Status, constants.RunStatusOK)
	}
	if run.UploadPath != "/out/upload.xlsx" || run.FinalPath != "/out/final.xlsx" {
		t.Errorf("output paths = %q/%q", run.UploadPath, run.FinalPath)
	}
	if run.FinishedAt == nil {
		t.Error("finished_at not set")
	}
}

func TestRunLifecycleFailure(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRunRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	id, err := repo.Start(ctx, "/in/broken.pdf", "pdf")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.FinishFailure(ctx, id, "extract document text: no pages"); err != nil {
		t.Fatal(err)
	}

	runs, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Status != constants.RunStatusFailed {
		t.Errorf("status = %s, want %s", runs[0].Status, constants.RunStatusFailed)
	}
	if runs[0].ErrorMessage == "" {
		t.Error("error message not journaled")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRunRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var last string
	for i := 0; i < 3; i++ {
		src := filepath.Join("/in", "doc"+string(rune('a'+i))+".pdf")
		if _, err := repo.Start(ctx, src, "pdf"); err != nil {
			t.Fatal(err)
		}
		last = src
		time.Sleep(5 * time.Millisecond) // distinct started_at ordering
	}

	runs, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want limit of 2", len(runs))
	}
	if runs[0].SourcePath != last {
		t.Errorf("first listed = %s, want newest %s", runs[0].SourcePath, last)
	}
}
