package ui

import (
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{12.5, "R$ 12,50"},
		{8.9, "R$ 8,90"},
	}
	for _, tc := range cases {
		if got := formatMoney(tc.in); got != tc.want {
			t.Fatalf("formatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(time.Time{}); got != "-" {
		t.Fatalf("formatDate zero = %q, want -", got)
	}
	d := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
	if got := formatDate(d); got != "01/03/2025" {
		t.Fatalf("formatDate = %q, want 01/03/2025", got)
	}
}

func TestTruncateAndCell(t *testing.T) {
	if got := truncate("  Feijão  ", 10); got != "Feijão" {
		t.Fatalf("truncate trims = %q", got)
	}
	if got := truncate("Detergente neutro", 8); got != "Deter..." {
		t.Fatalf("truncate = %q, want Deter...", got)
	}
	if got := truncate("abcd", 2); got != "ab" {
		t.Fatalf("truncate limit<=3 = %q, want ab", got)
	}
	if got := cell("Arroz", 8); got != "Arroz   " {
		t.Fatalf("cell = %q", got)
	}
	if got := []rune(cell("Açúcar refinado", 6)); len(got) != 6 {
		t.Fatalf("cell width = %d runes, want 6", len(got))
	}
}

func TestContainsFold(t *testing.T) {
	if !containsFold("Feijão Carioca", " feij ") {
		t.Fatal("expected case-insensitive match")
	}
	if containsFold("Arroz", "sal") {
		t.Fatal("unexpected match")
	}
}
