package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hts-tools/rfq-processor/constants"
	"github.com/hts-tools/rfq-processor/internal/common"
)

// Table is a header-indexed view of one worksheet. Header order is
// preserved: the aggregator collects email values in column order.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Value returns the cell under the named header for a row, or "" when the
// row is ragged or the header is unknown.
func (t *Table) Value(row []string, header string) string {
	for i, h := range t.Headers {
		if h == header {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}

// openWorkbook wraps open failures: a missing file and an unreadable one
// are different defects for the caller.
func openWorkbook(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		cause := common.ErrInvalidInput
		if errors.Is(err, fs.ErrNotExist) {
			cause = common.ErrNotFound
		}
		return nil, common.NewAppError("WORKBOOK_ERROR",
			fmt.Sprintf("open workbook %s", path), cause)
	}
	return f, nil
}

// ReadTable loads the active worksheet of a workbook as a Table. The first
// row is the header; trailing fully-empty rows are dropped.
func ReadTable(path string) (*Table, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	return tableFromSheet(f, sheetName)
}

// FindLegacySheet scans a Techno-Commercial Envelope workbook for the first
// sheet carrying every required column and returns it as a Table.
func FindLegacySheet(path string) (*Table, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	for _, sheetName := range f.GetSheetList() {
		t, err := tableFromSheet(f, sheetName)
		if err != nil {
			continue
		}
		if hasColumns(t.Headers, constants.LegacyRequiredColumns) {
			return t, nil
		}
	}
	return nil, common.NewAppError("WORKBOOK_ERROR",
		"no sheet carries the required columns "+strings.Join(constants.LegacyRequiredColumns, ", "),
		common.ErrInvalidInput)
}

func tableFromSheet(f *excelize.File, sheetName string) (*Table, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	t := &Table{Headers: rows[0]}
	for _, row := range rows[1:] {
		if !rowEmpty(row) {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

func hasColumns(headers, required []string) bool {
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[strings.TrimSpace(h)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}

func rowEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
