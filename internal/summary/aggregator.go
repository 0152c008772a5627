package summary

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/hts-tools/rfq-processor/constants"
	"github.com/hts-tools/rfq-processor/internal/sheet"
)

// Entry is the aggregation result for one manufacturer name.
type Entry struct {
	Name   string
	Items  []string // item ids in row order, may repeat; deduped at render time
	Emails []string // one append per contributing row, never deduped
}

type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Aggregate regroups a completed Final Sheet by manufacturer name.
// Manufacturer fields are hyphen-delimited lists; each name collects the
// row's item id plus every non-empty value from the email-bearing columns,
// in column order. Output preserves first-seen order across the row scan.
func (a *Aggregator) Aggregate(t *sheet.Table) []Entry {
	emailCols := make([]int, 0, len(t.Headers))
	for i, h := range t.Headers {
		if constants.IsEmailColumn(h) {
			emailCols = append(emailCols, i)
		}
	}

	byName := make(map[string]*Entry)
	var order []string

	for _, row := range t.Rows {
		field := strings.TrimSpace(t.Value(row, constants.ManufacturerColumn))
		if field == "" {
			continue
		}
		item := t.Value(row, constants.ItemColumn)

		var emails []string
		for _, c := range emailCols {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				emails = append(emails, row[c])
			}
		}

		for _, piece := range strings.Split(field, "-") {
			name := strings.TrimSpace(piece)
			if name == "" {
				continue
			}
			e, ok := byName[name]
			if !ok {
				e = &Entry{Name: name}
				byName[name] = e
				order = append(order, name)
			}
			e.Items = append(e.Items, item)
			e.Emails = append(e.Emails, emails...)
		}
	}

	out := make([]Entry, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	a.logger.Info("summary.aggregate.ok", "rows", len(t.Rows), "manufacturers", len(out))
	return out
}

// Render formats entries as the distribution text: one block per
// manufacturer, item ids sorted and deduped, emails one per line in
// row-encounter order, blocks joined by a blank line.
func Render(entries []Entry) string {
	chunks := make([]string, 0, len(entries))
	for _, e := range entries {
		ids := sortedUnique(e.Items)
		chunks = append(chunks,
			"Item "+strings.Join(ids, ", ")+": "+e.Name+"\n"+strings.Join(e.Emails, "\n")+"\n")
	}
	return strings.Join(chunks, "\n")
}

// sortedUnique dedupes item ids and sorts them numerically when every id is
// a number, which line numbers are. Non-numeric ids fall back to a plain
// string sort.
func sortedUnique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; !ok {
			seen[it] = struct{}{}
			out = append(out, it)
		}
	}

	nums := make(map[string]int, len(out))
	numeric := true
	for _, it := range out {
		n, err := strconv.Atoi(strings.TrimSpace(it))
		if err != nil {
			numeric = false
			break
		}
		nums[it] = n
	}
	if numeric {
		sort.Slice(out, func(i, j int) bool { return nums[out[i]] < nums[out[j]] })
	} else {
		sort.Strings(out)
	}
	return out
}
