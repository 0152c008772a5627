package parser

import (
	"log/slog"
	"regexp"

	"github.com/hts-tools/rfq-processor/constants"
)

// The RFQ body is scanned three times with independent patterns: once for
// the structural item lines, once for every "Short Text" block, once for
// every "PO Material Text" block. Match index i is the sole correlation key
// between the three collections, so the format is only parsed correctly
// when each item contributes exactly one block to each list, in item order.
// Result carries the three counts so callers can notice divergence.
var (
	documentIDPattern = regexp.MustCompile(`RFQ Number (\d+)`)

	// A 5-digit line number, a material token ("12" plus ten digits, with an
	// optional single-letter prefix), a quantity, a unit, and a date anchor
	// further along the same span. The trailing date is required: item lines
	// without one do not occur in fixture documents.
	itemPattern = regexp.MustCompile(`(?s)(\d{5}) (\w?12\d{10}) (\d+(?:\.\d+)?)(\s*)(\w+) .*?(\d{2}\.\d{2}\.\d{4})`)

	shortTextPattern = regexp.MustCompile(`Short Text :(.*?)\n`)

	// The trailing dot after "LineNo" is a wildcard, not a literal: the
	// terminator matches whatever character the extractor yields there.
	notesPattern = regexp.MustCompile(`(?s)PO Material Text :(.*?)Agreement / LineNo.`)
)

// RawItem is one structural match before normalization.
type RawItem struct {
	LineNo      string
	Material    string
	Quantity    string
	Unit        string
	Description string
	NotesText   string
}

// Result is the ordered output of one body scan.
type Result struct {
	DocumentID string
	Items      []RawItem

	// Block counts from the independent scans, for misalignment checks.
	ItemCount        int
	DescriptionCount int
	NotesCount       int
}

// Misaligned reports whether the positional correlation was broken, i.e.
// the description or notes scan produced a different number of blocks than
// there are item matches.
func (r Result) Misaligned() bool {
	return r.DescriptionCount != r.ItemCount || r.NotesCount != r.ItemCount
}

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse recovers the ordered line items from bodyText. fullText is used
// only to recover the document identifier, which lives inside the
// boilerplate block that bodyText no longer contains. Zero matches yields
// an empty item list, not an error.
func (p *Parser) Parse(bodyText, fullText string) Result {
	res := Result{DocumentID: constants.UnknownDocumentID}

	if m := documentIDPattern.FindStringSubmatch(fullText); m != nil {
		res.DocumentID = m[1]
	}

	items := itemPattern.FindAllStringSubmatch(bodyText, -1)
	shorts := shortTextPattern.FindAllStringSubmatch(bodyText, -1)
	notes := notesPattern.FindAllStringSubmatch(bodyText, -1)

	res.ItemCount = len(items)
	res.DescriptionCount = len(shorts)
	res.NotesCount = len(notes)

	for i, m := range items {
		item := RawItem{
			LineNo:   m[1],
			Material: m[2],
			Quantity: m[3],
			Unit:     m[5],
		}
		if i < len(shorts) {
			item.Description = shorts[i][1]
		}
		if i < len(notes) {
			item.NotesText = notes[i][1]
		}
		res.Items = append(res.Items, item)
	}

	if res.Misaligned() {
		p.logger.Warn("parser.block_count_mismatch",
			"document_id", res.DocumentID,
			"items", res.ItemCount,
			"descriptions", res.DescriptionCount,
			"notes", res.NotesCount,
		)
	}
	p.logger.Info("parser.items",
		"document_id", res.DocumentID,
		"count", len(res.Items),
	)
	return res
}
