package twitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/iconidentify/xclip/internal/domain"
)

func TestFormatRadix(t *testing.T) {
	tests := []struct {
		v     float64
		radix int
		want  string
	}{
		{0, 36, "0"},
		{35, 36, "z"},
		{36, 36, "10"},
		{255, 16, "ff"},
		{-255, 2, "-11111111"},
		{0.5, 36, "0.i"},
		{3.5, 2, "11.1"},
		{1.0 / 3.0, 3, "0.1"},
		{0.25, 2, "0.01"},
	}
	for _, tt := range tests {
		if got := formatRadix(tt.v, tt.radix); got != tt.want {
			t.Errorf("formatRadix(%v, %d) = %q, want %q", tt.v, tt.radix, got, tt.want)
		}
	}
}

func TestSyndicationToken(t *testing.T) {
	ids := []string{
		"20",
		"1000000000000000",
		"1750000000000000001",
		"1234567890123456789",
		"463440424141459456",
	}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			tok, err := SyndicationToken(id)
			if err != nil {
				t.Fatalf("SyndicationToken: %v", err)
			}
			if tok == "" {
				t.Fatal("token is empty")
			}
			if strings.ContainsAny(tok, "0.") {
				t.Errorf("token %q contains a zero or a dot", tok)
			}
			for _, r := range tok {
				if !strings.ContainsRune(radixDigits, r) {
					t.Errorf("token %q has non base36 rune %q", tok, r)
				}
			}
			again, _ := SyndicationToken(id)
			if again != tok {
				t.Errorf("not deterministic: %q vs %q", tok, again)
			}
		})
	}
}

func TestSyndicationToken_NonNumeric(t *testing.T) {
	for _, id := range []string{"", "abc", "12a4", "-123"} {
		if _, err := SyndicationToken(id); !errors.Is(err, domain.ErrFetchFailed) {
			t.Errorf("SyndicationToken(%q) err = %v, want ErrFetchFailed", id, err)
		}
	}
}
