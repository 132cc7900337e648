package service

import "testing"

func TestFoldText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  École  Maternelle ", "ecole maternelle"},
		{"château", "chateau"},
		{"M'TSAMBOU", "m'tsambou"},
		{"l’eau", "l'eau"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := foldText(tt.in); got != tt.want {
			t.Errorf("foldText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"chien", "chien", 1},
		{"", "", 1},
		{"mbwa", "mbva", 0.75},
		{"chat", "", 0},
		{"maji", "mají", 0.75},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
