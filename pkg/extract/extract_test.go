package extract

import (
	"errors"
	"testing"
)

func TestTextExtractor(t *testing.T) {
	e := NewTextExtractor()

	tests := []struct {
		name    string
		payload []byte
		mime    string
		want    string
		wantErr bool
	}{
		{"plain text", []byte("lecture notes on osmosis"), "text/plain", "lecture notes on osmosis", false},
		{"markdown", []byte("# Chapter 1\n\nBody."), "text/markdown", "# Chapter 1\n\nBody.", false},
		{"surrounding whitespace is trimmed", []byte("  notes \n"), "text/plain", "notes", false},
		{"empty payload", nil, "text/plain", "", true},
		{"binary payload", []byte{0xff, 0xfe, 0x00, 0x81}, "application/pdf", "", true},
		{"whitespace-only payload", []byte("   \n\t "), "text/plain", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(tt.payload, tt.mime)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrExtraction) {
					t.Errorf("error should wrap ErrExtraction, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}
