// Package pricing computes order money amounts in integer cents.
package pricing

import "math"

// TaxRate is the flat sales tax applied to every order subtotal.
const TaxRate = 0.0825

// Line is one priced order line: a unit price and how many units.
type Line struct {
	PriceCents int64
	Quantity   int
}

// Breakdown is the full money picture for a set of lines.
type Breakdown struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// Subtotal sums price times quantity across all lines.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, line := range lines {
		sum += line.PriceCents * int64(line.Quantity)
	}
	return sum
}

// Tax computes the tax owed on a subtotal, rounding half away from zero.
func Tax(subtotalCents int64) int64 {
	return int64(math.Round(float64(subtotalCents) * TaxRate))
}

// Total is the subtotal plus its tax.
func Total(subtotalCents int64) int64 {
	return subtotalCents + Tax(subtotalCents)
}

// Calculate derives the complete breakdown for a set of lines.
func Calculate(lines []Line) Breakdown {
	subtotal := Subtotal(lines)
	tax := Tax(subtotal)
	return Breakdown{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}
