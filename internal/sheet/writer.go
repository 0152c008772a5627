package sheet

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hts-tools/rfq-processor/constants"
	"github.com/hts-tools/rfq-processor/internal/common"
	"github.com/hts-tools/rfq-processor/internal/entity"
)

// Writer populates the two fixed template layouts. Templates are opened
// fresh per write; the data region below the header is cleared completely
// before new rows go in, so a shorter run never leaves stale rows behind.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WriteUploadFile fills the Upload File template (columns A-H) and returns
// the workbook bytes.
func (w *Writer) WriteUploadFile(templatePath string, records []entity.LineItemRecord) ([]byte, error) {
	start := time.Now()

	f, sheetName, err := openTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(f, w.logger)

	if err := clearDataRegion(f, sheetName); err != nil {
		return nil, err
	}

	for i, rec := range records {
		row := i + 2
		cells := map[string]string{
			constants.UploadFileColumns["RFx Number"]:  rec.DocumentID,
			constants.UploadFileColumns["RFx Item No"]: rec.LineNo,
			constants.UploadFileColumns["PR Item No"]:  rec.ExternalRef,
			constants.UploadFileColumns["Material No"]: rec.MaterialCode,
			constants.UploadFileColumns["Description"]: rec.Description,
			constants.UploadFileColumns["PO Text"]:     rec.NotesText,
			constants.UploadFileColumns["QTY"]:         rec.Quantity,
			constants.UploadFileColumns["UOM"]:         rec.UnitOfMeasure,
		}
		for col, val := range cells {
			if err := f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), val); err != nil {
				return nil, fmt.Errorf("set cell %s%d: %w", col, row, err)
			}
		}
	}

	if err := applyWrapStyle(f, sheetName, "H", len(records)+1); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	w.logger.Info("sheet.upload_file.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFinalSheet fills the Final Sheet template. Column F is left unused
// on purpose; the layout is shared with recipients who expect it blank.
func (w *Writer) WriteFinalSheet(templatePath string, records []entity.EnrichedRecord) ([]byte, error) {
	start := time.Now()

	f, sheetName, err := openTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(f, w.logger)

	if err := clearDataRegion(f, sheetName); err != nil {
		return nil, err
	}

	for i, rec := range records {
		row := i + 2
		cells := map[string]string{
			constants.FinalSheetColItemNo:        rec.LineNo,
			constants.FinalSheetColDescription:   rec.Description,
			constants.FinalSheetColQuantity:      rec.Quantity,
			constants.FinalSheetColUnit:          rec.UnitOfMeasure,
			constants.FinalSheetColCleanedNotes:  rec.CleanedNotes,
			constants.FinalSheetColManufacturers: rec.Manufacturers,
		}
		for col, val := range cells {
			if err := f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), val); err != nil {
				return nil, fmt.Errorf("set cell %s%d: %w", col, row, err)
			}
		}
	}

	if err := applyWrapStyle(f, sheetName, "G", len(records)+1); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	w.logger.Info("sheet.final_sheet.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func openTemplate(path string) (*excelize.File, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", common.NewAppError("TEMPLATE_ERROR",
			fmt.Sprintf("open template %s", path), common.ErrTemplate)
	}
	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		closeQuietly(f, nil)
		return nil, "", common.NewAppError("TEMPLATE_ERROR",
			fmt.Sprintf("template %s has no active sheet", path), common.ErrTemplate)
	}
	return f, sheetName, nil
}

// clearDataRegion blanks every cell below the header row, regardless of how
// many rows the new data will occupy.
func clearDataRegion(f *excelize.File, sheetName string) error {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read template rows: %w", err)
	}
	for r := 2; r <= len(rows); r++ {
		for c := 1; c <= len(rows[r-1]); c++ {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			if err := f.SetCellValue(sheetName, cell, nil); err != nil {
				return fmt.Errorf("clear cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

// applyWrapStyle sets wrapped, top-aligned, left-aligned text on the used
// region, matching the layout recipients expect.
func applyWrapStyle(f *excelize.File, sheetName, lastCol string, lastRow int) error {
	if lastRow < 1 {
		lastRow = 1
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			WrapText:   true,
			Vertical:   "top",
			Horizontal: "left",
		},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	return f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s%d", lastCol, lastRow), styleID)
}

func closeQuietly(f *excelize.File, logger *slog.Logger) {
	if err := f.Close(); err != nil && logger != nil {
		logger.Warn("sheet.close_error", "error", err)
	}
}
