package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hts-tools/rfq-processor/constants"
)

// Run is one journaled processing run.
type Run struct {
	ID           uuid.UUID
	SourcePath   string
	Kind         string // "pdf" | "workbook"
	DocumentID   string
	ItemCount    int
	UploadPath   string
	FinalPath    string
	Status       constants.RunStatus
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

type RunRepository interface {
	Start(ctx context.Context, sourcePath, kind string) (uuid.UUID, error)
	MarkParsed(ctx context.Context, runID uuid.UUID, documentID string, itemCount int) error
	FinishSuccess(ctx context.Context, runID uuid.UUID, uploadPath, finalPath string) error
	FinishFailure(ctx context.Context, runID uuid.UUID, message string) error
	List(ctx context.Context, limit int) ([]Run, error)
}

type runRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRunRepository(db *sql.DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, sourcePath, kind string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO processing_run (id, source_path, kind, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		id.String(), sourcePath, kind, string(constants.RunStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		r.log.Error("processing_run start failed", "source", sourcePath, "err", err)
		return uuid.Nil, err
	}
	r.log.Info("processing_run started", "run_id", id, "source", sourcePath, "kind", kind)
	return id, nil
}

func (r *runRepo) MarkParsed(ctx context.Context, runID uuid.UUID, documentID string, itemCount int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE processing_run SET document_id = ?, item_count = ?, status = ?
		WHERE id = ?`,
		documentID, itemCount, string(constants.RunStatusParseOK), runID.String(),
	)
	if err != nil {
		r.log.Error("processing_run mark parsed failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("processing_run parsed", "run_id", runID, "document_id", documentID, "items", itemCount)
	return nil
}

func (r *runRepo) FinishSuccess(ctx context.Context, runID uuid.UUID, uploadPath, finalPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE processing_run SET upload_path = ?, final_path = ?, status = ?, finished_at = ?
		WHERE id = ?`,
		uploadPath, finalPath, string(constants.RunStatusOK), time.Now().UTC(), runID.String(),
	)
	if err != nil {
		r.log.Error("processing_run finish(OK) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("processing_run finished (OK)", "run_id", runID)
	return nil
}

func (r *runRepo) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE processing_run SET status = ?, error_message = ?, finished_at = ?
		WHERE id = ?`,
		string(constants.RunStatusFailed), message, time.Now().UTC(), runID.String(),
	)
	if err != nil {
		r.log.Error("processing_run finish(FAILED) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Warn("processing_run finished (FAILED)", "run_id", runID, "error", message)
	return nil
}

func (r *runRepo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_path, kind, COALESCE(document_id, ''), item_count,
		       COALESCE(upload_path, ''), COALESCE(final_path, ''),
		       status, COALESCE(error_message, ''), started_at, finished_at
		FROM processing_run
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var run Run
		var id, status string
		var finished sql.NullTime
		if err := rows.Scan(&id, &run.SourcePath, &run.Kind, &run.DocumentID, &run.ItemCount,
			&run.UploadPath, &run.FinalPath, &status, &run.ErrorMessage,
			&run.StartedAt, &finished); err != nil {
			return nil, err
		}
		run.ID, _ = uuid.Parse(id)
		run.Status = constants.RunStatus(status)
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
