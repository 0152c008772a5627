package mistral

import "testing"

func TestDecodeManufacturers(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"two names", `{"manufacturers": ["Acme", "Globex"]}`, []string{"Acme", "Globex"}, false},
		{"empty array", `{"manufacturers": []}`, nil, false},
		{"trims and drops blanks", `{"manufacturers": [" Acme ", "", "  "]}`, []string{"Acme"}, false},
		{"extra key rejected", `{"manufacturers": [], "note": "x"}`, nil, true},
		{"wrong type rejected", `{"manufacturers": "Acme"}`, nil, true},
		{"missing key rejected", `{}`, nil, true},
		{"not json", `Acme - Globex`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeManufacturers([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decode %q: want error, got %v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode %q: %v", tt.raw, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("decode %q = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("decode %q = %v, want %v", tt.raw, got, tt.want)
				}
			}
		})
	}
}
