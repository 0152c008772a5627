package enrich

import "context"

// TextCleaner returns a cosmetically cleaned version of a PO text block.
type TextCleaner interface {
	Clean(ctx context.Context, text string) (string, error)
}

// EntityExtractor returns a hyphen-separated plain-text list of the
// manufacturer or maker names mentioned in a PO text block.
type EntityExtractor interface {
	ExtractManufacturers(ctx context.Context, text string) (string, error)
}

// Service is what the pipeline depends on: both capabilities with the
// fallback policy already applied. Clean degrades to the original input and
// ExtractManufacturers to ""; neither ever fails the run.
type Service interface {
	Clean(ctx context.Context, text string) string
	ExtractManufacturers(ctx context.Context, text string) string
}
