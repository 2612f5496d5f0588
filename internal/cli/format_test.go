package cli

import (
	"strings"
	"testing"

	"github.com/theirongolddev/adburn/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"0.456", "$0.46"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-12.3", "-$12.30"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Fatalf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCPR_ZeroIsDash(t *testing.T) {
	if got := FormatCPR(decimal.Zero); got != "-" {
		t.Fatalf("FormatCPR(0) = %q, want -", got)
	}
	if got := FormatCPR(decimal.RequireFromString("0.4")); got != "$0.40" {
		t.Fatalf("FormatCPR(0.4) = %q, want $0.40", got)
	}
}

func TestFormatNumber(t *testing.T) {
	for in, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"} {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatShare(t *testing.T) {
	if got := FormatShare(decimal.NewFromInt(1), decimal.Zero); got != "0.0%" {
		t.Fatalf("FormatShare(1, 0) = %q", got)
	}
	if got := FormatShare(decimal.NewFromInt(1), decimal.NewFromInt(3)); got != "33.3%" {
		t.Fatalf("FormatShare(1, 3) = %q, want 33.3%%", got)
	}
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)

	out := RenderTable(Table{
		Headers: []string{"Product", "Status"},
		Rows: [][]string{
			{"Cuerpo Divino", RenderStatus(model.StatusOptimal)},
			{"---"},
			{"Kid", RenderStatus(model.StatusAwaitingData)},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("table lines = %d, want 7\n%s", len(lines), out)
	}
	w := lipgloss.Width(lines[0])
	for i, line := range lines {
		if lw := lipgloss.Width(line); lw != w {
			t.Fatalf("line %d width = %d, want %d", i, lw, w)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 5, 10}); got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline(nil); got != "" {
		t.Fatalf("RenderSparkline(nil) = %q, want empty", got)
	}
}
