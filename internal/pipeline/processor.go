package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hts-tools/rfq-processor/internal/common"
	"github.com/hts-tools/rfq-processor/internal/document"
	"github.com/hts-tools/rfq-processor/internal/entity"
	"github.com/hts-tools/rfq-processor/internal/parser"
	"github.com/hts-tools/rfq-processor/internal/repository"
	"github.com/hts-tools/rfq-processor/internal/sheet"
	"github.com/hts-tools/rfq-processor/internal/summary"
)

// Processor coordinates extraction, parsing, enrichment and the two sheet
// writes for one run. Enrichment trouble degrades per record; only missing
// inputs or templates fail a run, and a failed run is journaled as FAILED
// without touching anything else in flight.
type Processor struct {
	Logger    *slog.Logger
	Extractor *document.Extractor
	Parser    *parser.Parser
	Enrich    *EnrichStage
	Writer    *sheet.Writer
	Runs      repository.RunRepository
	Templates common.TemplatesConfig
}

func NewProcessor(
	logger *slog.Logger,
	extractor *document.Extractor,
	p *parser.Parser,
	enrichStage *EnrichStage,
	writer *sheet.Writer,
	runs repository.RunRepository,
	templates common.TemplatesConfig,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:    logger,
		Extractor: extractor,
		Parser:    p,
		Enrich:    enrichStage,
		Writer:    writer,
		Runs:      runs,
		Templates: templates,
	}
}

// ProcessPDF runs the full RFQ path: PDF → records → Upload File + Final
// Sheet at the given output paths. An empty document yields header-only
// outputs, not an error.
func (p *Processor) ProcessPDF(ctx context.Context, pdfPath, uploadOut, finalOut string) error {
	start := time.Now()
	runID, err := p.Runs.Start(ctx, pdfPath, "pdf")
	if err != nil {
		return common.WrapError(err, "journal run")
	}

	ext, err := p.Extractor.ExtractFile(pdfPath)
	if err != nil {
		_ = p.Runs.FinishFailure(ctx, runID, err.Error())
		return common.WrapError(err, "extract document text")
	}

	res := p.Parser.Parse(ext.BodyText, ext.FullText)
	records := parser.Normalize(res)
	if err := p.Runs.MarkParsed(ctx, runID, res.DocumentID, len(records)); err != nil {
		return common.WrapError(err, "journal parse result")
	}
	if len(records) == 0 {
		p.Logger.Warn("pipeline.pdf.no_items", "run_id", runID, "source", pdfPath)
	}

	if err := p.writeOutputs(ctx, records, uploadOut, finalOut); err != nil {
		_ = p.Runs.FinishFailure(ctx, runID, err.Error())
		return err
	}

	if err := p.Runs.FinishSuccess(ctx, runID, uploadOut, finalOut); err != nil {
		return common.WrapError(err, "journal run result")
	}
	p.Logger.Info("pipeline.pdf.ok",
		"run_id", runID,
		"document_id", res.DocumentID,
		"items", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Summarize reads a completed Final Sheet and returns the manufacturer
// summary text.
func (p *Processor) Summarize(path string) (string, error) {
	t, err := sheet.ReadTable(path)
	if err != nil {
		return "", err
	}
	agg := summary.NewAggregator(p.Logger)
	return summary.Render(agg.Aggregate(t)), nil
}

// writeOutputs populates both templates and writes them to disk. The Final
// Sheet is written even when every enrichment call fell back, so a run
// always produces a downloadable artifact.
func (p *Processor) writeOutputs(ctx context.Context, records []entity.LineItemRecord, uploadOut, finalOut string) error {
	uploadBytes, err := p.Writer.WriteUploadFile(p.Templates.UploadFile, records)
	if err != nil {
		return common.WrapError(err, "build upload file")
	}
	if err := os.WriteFile(uploadOut, uploadBytes, 0o644); err != nil {
		return common.WrapError(err, "write upload file")
	}

	enriched := p.Enrich.Run(ctx, records)

	finalBytes, err := p.Writer.WriteFinalSheet(p.Templates.FinalSheet, enriched)
	if err != nil {
		return common.WrapError(err, "build final sheet")
	}
	if err := os.WriteFile(finalOut, finalBytes, 0o644); err != nil {
		return common.WrapError(err, "write final sheet")
	}
	return nil
}
