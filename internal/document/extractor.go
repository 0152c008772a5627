package document

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// boilerplatePattern recognizes the quotation cover block every RFQ opens
// with. Only its first occurrence is removed; the closing marker doubles as
// the document-identifier line, which the parser recovers from the raw view.
var boilerplatePattern = regexp.MustCompile(`(?s)REQUEST FOR QUOTATION.*?RFQ Number \d+`)

type Config struct {
	MaxPages int // 0 = no limit
}

// ExtractionResult carries the two text views of one document.
type ExtractionResult struct {
	FullText string // every page's text, in page order
	BodyText string // FullText with the first boilerplate block removed
	Pages    int
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// ExtractFile reads a PDF from disk and produces both text views.
func (e *Extractor) ExtractFile(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("read pdf: %w", err)
	}
	return e.Extract(b)
}

// Extract produces both text views from raw PDF bytes. A page with no
// extractable text contributes an empty string; that is a warning, never an
// error. When the boilerplate block is absent, BodyText equals FullText.
func (e *Extractor) Extract(raw []byte) (ExtractionResult, error) {
	start := time.Now()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		total = e.cfg.MaxPages
	}

	var b strings.Builder
	var warns []string
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			warns = append(warns, fmt.Sprintf("page %d: null page object", i))
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		b.WriteString(txt)
	}

	full := b.String()
	res := ExtractionResult{
		FullText: full,
		BodyText: StripBoilerplate(full),
		Pages:    total,
		Duration: time.Since(start),
		Warnings: warns,
	}

	e.logger.Info("document.extract.ok",
		"pages", res.Pages,
		"full_bytes", len(res.FullText),
		"body_bytes", len(res.BodyText),
		"warnings", len(warns),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// StripBoilerplate removes the first occurrence of the cover block. Pure
// text transform; no match means no change.
func StripBoilerplate(full string) string {
	loc := boilerplatePattern.FindStringIndex(full)
	if loc == nil {
		return full
	}
	return full[:loc[0]] + full[loc[1]:]
}
