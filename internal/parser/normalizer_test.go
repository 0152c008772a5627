package parser

import (
	"testing"

	"github.com/hts-tools/rfq-processor/constants"
)

func TestNormalizeAppliesMaterialWhitelist(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"B121234567890", "B121234567890"},
		{"121234567890", "121234567890"},
		{"B167890123456", "B167890123456"},
		{"159876543210", "159876543210"},
		{"A121234567890", ""},
		{"X999999999999", ""},
		{"", ""},
	}
	for _, tt := range tests {
		res := Result{
			DocumentID: "55555",
			Items:      []RawItem{{LineNo: "10010", Material: tt.token, Quantity: "1", Unit: "EA"}},
		}
		recs := Normalize(res)
		if len(recs) != 1 {
			t.Fatalf("token %q: got %d records, want 1", tt.token, len(recs))
		}
		if recs[0].MaterialCode != tt.want {
			t.Errorf("token %q: material code = %q, want %q", tt.token, recs[0].MaterialCode, tt.want)
		}
	}
}

func TestNormalizeFieldMapping(t *testing.T) {
	res := Result{
		DocumentID: "98765",
		Items: []RawItem{{
			LineNo:      "10010",
			Material:    "B121234567890",
			Quantity:    "2.5",
			Unit:        "KG",
			Description: "Copper Wire",
			NotesText:   "note",
		}},
	}
	recs := Normalize(res)
	rec := recs[0]
	if rec.DocumentID != "98765" || rec.LineNo != "10010" || rec.Quantity != "2.5" ||
		rec.UnitOfMeasure != "KG" || rec.Description != "Copper Wire" || rec.NotesText != "note" {
		t.Errorf("record = %+v", rec)
	}
	if rec.ExternalRef != "" {
		t.Errorf("external ref = %q, want empty placeholder", rec.ExternalRef)
	}
	if rec.DocumentID != res.DocumentID {
		t.Errorf("document id not propagated")
	}
}

func TestNormalizeEmptyResult(t *testing.T) {
	recs := Normalize(Result{DocumentID: constants.UnknownDocumentID})
	if len(recs) != 0 {
		t.Fatalf("got %d records, want 0", len(recs))
	}
}
