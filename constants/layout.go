package constants

import "strings"

// The two downstream spreadsheet layouts are fixed: column letters map to
// record fields and must not drift, since the templates are shared with
// external recipients.

// UploadFileColumns maps field names to column letters in the Upload File
// template. Row 1 is the header; data starts at row 2.
var UploadFileColumns = map[string]string{
	"RFx Number":  "A",
	"RFx Item No": "B",
	"PR Item No":  "C",
	"Material No": "D",
	"Description": "E",
	"PO Text":     "F",
	"QTY":         "G",
	"UOM":         "H",
}

// Final Sheet column letters. Column F is intentionally unused.
const (
	FinalSheetColItemNo        = "A"
	FinalSheetColDescription   = "B"
	FinalSheetColQuantity      = "C"
	FinalSheetColUnit          = "D"
	FinalSheetColCleanedNotes  = "E"
	FinalSheetColManufacturers = "G"
)

// LegacyRequiredColumns are the headers a Techno-Commercial Envelope sheet
// must carry before it is accepted by the workbook path.
var LegacyRequiredColumns = []string{"Description", "InternalNote", "Quantity", "Unit of Measure"}

// IsEmailColumn reports whether a Final Sheet header names an email-bearing
// column. Export tools name overflow columns "Unnamed: N", which is why the
// second token is matched at all.
func IsEmailColumn(header string) bool {
	h := strings.ToLower(header)
	return strings.Contains(h, "mail") || strings.Contains(h, "unnamed")
}

// ManufacturerColumn and ItemColumn are the Final Sheet headers the
// aggregator reads.
const (
	ManufacturerColumn = "Manufacturer"
	ItemColumn         = "Line item number"
)
