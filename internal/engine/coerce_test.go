package engine

import (
	"testing"
	"time"
)

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name string
		tok  string
		want string // empty means nil
	}{
		{"primary format", "9/2/2025", "2025-09-02"},
		{"primary format padded", "09/02/2025", "2025-09-02"},
		{"iso fallback", "2025-09-02", "2025-09-02"},
		{"slash iso fallback", "2025/09/02", "2025-09-02"},
		{"dash fallback", "9-2-2025", "2025-09-02"},
		{"sentinel yes", "Yes", ""},
		{"sentinel no", "No", ""},
		{"sentinel wrapped ye", "Ye", ""},
		{"sentinel wrapped s", "s", ""},
		{"empty", "", ""},
		{"punctuation", "..//..", ""},
		{"garbage", "notadate", ""},
		{"two digit year rejected", "9/2/25", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceDate(tt.tok)
			if tt.want == "" {
				if got != nil {
					t.Errorf("CoerceDate(%q) = %v, want nil", tt.tok, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CoerceDate(%q) = nil, want %s", tt.tok, tt.want)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("CoerceDate(%q) = %s, want %s", tt.tok, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestCoerceDateNeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", "\t", "Yes", "No", "Ye", "s",
		"!!!", "////", "0/0/0000", "99/99/9999",
		"9/2/2025extra", "\x00", "日付",
	}
	for _, in := range inputs {
		// The call itself must not panic for any input.
		_ = CoerceDate(in)
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		tok  string
		want int
	}{
		{"0", 0},
		{"15", 15},
		{"004", 4},
		{"", 0},
		{"-3", 0},
		{"3.5", 0},
		{"12a", 0},
		{"a12", 0},
		{"1,2", 0},
		{"99999999999999999999999999", 0}, // overflow degrades to 0
	}

	for _, tt := range tests {
		if got := CoerceInt(tt.tok); got != tt.want {
			t.Errorf("CoerceInt(%q) = %d, want %d", tt.tok, got, tt.want)
		}
	}
}

func TestCoerceDateRoundTrip(t *testing.T) {
	want := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	got := CoerceDate("8/31/2025")
	if got == nil || !got.Equal(want) {
		t.Errorf("CoerceDate(8/31/2025) = %v, want %v", got, want)
	}
}
