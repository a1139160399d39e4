package html2pdf

import (
	"errors"
	"testing"
)

func TestParseFooterDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    FooterDisplay
		wantErr bool
	}{
		{"", FooterAll, false},
		{"all", FooterAll, false},
		{"ALL", FooterAll, false},
		{"firstPage", FooterFirstPageOnly, false},
		{"firstpage", FooterFirstPageOnly, false},
		{" firstPage ", FooterFirstPageOnly, false},
		{"first-page", FooterFirstPageOnly, false},
		{"first_page", FooterFirstPageOnly, false},
		{"last", FooterAll, true},
		{"none", FooterAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFooterDisplay(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFooterDisplay) {
					t.Errorf("ParseFooterDisplay(%q) error = %v, want ErrInvalidFooterDisplay", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFooterDisplay(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFooterDisplay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFooterDisplay_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode FooterDisplay
		want string
	}{
		{FooterAll, "all"},
		{FooterFirstPageOnly, "firstPage"},
		{FooterDisplay(7), "FooterDisplay(7)"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFooterDisplay_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, mode := range []FooterDisplay{FooterAll, FooterFirstPageOnly} {
		got, err := ParseFooterDisplay(mode.String())
		if err != nil {
			t.Fatalf("ParseFooterDisplay(%q) error = %v", mode, err)
		}
		if got != mode {
			t.Errorf("ParseFooterDisplay(%q) = %v, want %v", mode, got, mode)
		}
	}
}
