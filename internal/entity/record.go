package entity

// LineItemRecord is the canonical unit flowing through the pipeline, one
// per recovered line item. All fields are strings: quantity is deliberately
// not parsed to a numeric type so locale and formatting survive the round
// trip into the spreadsheets.
type LineItemRecord struct {
	DocumentID    string // RFQ number shared by every record of a document; "Unknown" if absent
	LineNo        string // fixed-width item position within the document
	ExternalRef   string // always empty at creation; reserved for a downstream manual step
	MaterialCode  string // populated only when the token matches the prefix whitelist
	Description   string // short text; may be empty when block counts diverge
	NotesText     string // PO material text; input to enrichment
	Quantity      string
	UnitOfMeasure string
}

// EnrichedRecord pairs a record with its enrichment outputs. The inputs are
// not mutated: CleanedNotes and Manufacturers become new output columns.
type EnrichedRecord struct {
	LineItemRecord
	CleanedNotes  string
	Manufacturers string // hyphen-separated names, "" when extraction failed
}
