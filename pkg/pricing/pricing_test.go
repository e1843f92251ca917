package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  int64
	}{
		{name: "no lines", lines: nil, want: 0},
		{name: "single unit", lines: []Line{{PriceCents: 1250, Quantity: 1}}, want: 1250},
		{name: "quantity multiplies", lines: []Line{{PriceCents: 1250, Quantity: 3}}, want: 3750},
		{
			name: "lines accumulate",
			lines: []Line{
				{PriceCents: 999, Quantity: 1},
				{PriceCents: 499, Quantity: 3},
			},
			want: 2496,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subtotal(tt.lines))
		})
	}
}

func TestTax(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{name: "zero subtotal", subtotal: 0, want: 0},
		{name: "rounds down below half", subtotal: 100, want: 8},
		{name: "rounds up above half", subtotal: 7, want: 1},
		{name: "half rounds away from zero", subtotal: 1000, want: 83},
		{name: "exact cents", subtotal: 2000, want: 165},
		{name: "large subtotal", subtotal: 10000, want: 825},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tax(tt.subtotal))
		})
	}
}

func TestTotal(t *testing.T) {
	assert.Equal(t, int64(1083), Total(1000))
	assert.Equal(t, int64(0), Total(0))
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  Breakdown
	}{
		{
			name:  "empty order",
			lines: nil,
			want:  Breakdown{SubtotalCents: 0, TaxCents: 0, TotalCents: 0},
		},
		{
			name:  "single line",
			lines: []Line{{PriceCents: 1250, Quantity: 2}},
			want:  Breakdown{SubtotalCents: 2500, TaxCents: 206, TotalCents: 2706},
		},
		{
			name: "mixed basket",
			lines: []Line{
				{PriceCents: 999, Quantity: 1},
				{PriceCents: 499, Quantity: 3},
			},
			want: Breakdown{SubtotalCents: 2496, TaxCents: 206, TotalCents: 2702},
		},
		{
			name:  "half cent tax rounds up",
			lines: []Line{{PriceCents: 1000, Quantity: 1}},
			want:  Breakdown{SubtotalCents: 1000, TaxCents: 83, TotalCents: 1083},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.lines)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.SubtotalCents+got.TaxCents, got.TotalCents)
		})
	}
}
