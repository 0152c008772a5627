package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/hts-tools/rfq-processor/constants"
	"github.com/hts-tools/rfq-processor/internal/common"
	"github.com/hts-tools/rfq-processor/internal/entity"
	"github.com/hts-tools/rfq-processor/internal/sheet"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// ProcessWorkbook runs the legacy-table path: a Techno-Commercial Envelope
// workbook instead of an RFQ PDF. The document id is the first digit run in
// the source filename; line numbers are assigned 10, 20, 30, … and rows
// without a Description are skipped.
func (p *Processor) ProcessWorkbook(ctx context.Context, workbookPath, uploadOut, finalOut string) error {
	start := time.Now()
	runID, err := p.Runs.Start(ctx, workbookPath, "workbook")
	if err != nil {
		return common.WrapError(err, "journal run")
	}

	t, err := sheet.FindLegacySheet(workbookPath)
	if err != nil {
		_ = p.Runs.FinishFailure(ctx, runID, err.Error())
		return err
	}

	documentID := constants.UnknownDocumentID
	if m := digitsPattern.FindString(filepath.Base(workbookPath)); m != "" {
		documentID = m
	}

	records := RecordsFromLegacyTable(t, documentID, p.Logger)
	if err := p.Runs.MarkParsed(ctx, runID, documentID, len(records)); err != nil {
		return common.WrapError(err, "journal parse result")
	}

	if err := p.writeOutputs(ctx, records, uploadOut, finalOut); err != nil {
		_ = p.Runs.FinishFailure(ctx, runID, err.Error())
		return err
	}

	if err := p.Runs.FinishSuccess(ctx, runID, uploadOut, finalOut); err != nil {
		return common.WrapError(err, "journal run result")
	}
	p.Logger.Info("pipeline.workbook.ok",
		"run_id", runID,
		"document_id", documentID,
		"items", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// RecordsFromLegacyTable converts legacy sheet rows into canonical records.
// The legacy export has no material numbers, so MaterialCode stays empty.
func RecordsFromLegacyTable(t *sheet.Table, documentID string, logger *slog.Logger) []entity.LineItemRecord {
	if logger == nil {
		logger = slog.Default()
	}
	var records []entity.LineItemRecord
	item := 10
	for _, row := range t.Rows {
		desc := t.Value(row, "Description")
		if desc == "" {
			continue
		}
		records = append(records, entity.LineItemRecord{
			DocumentID:    documentID,
			LineNo:        strconv.Itoa(item),
			Description:   desc,
			NotesText:     t.Value(row, "InternalNote"),
			Quantity:      t.Value(row, "Quantity"),
			UnitOfMeasure: t.Value(row, "Unit of Measure"),
		})
		item += 10
	}
	logger.Info("pipeline.workbook.records", "rows", len(t.Rows), "records", len(records))
	return records
}
