package tradebook

import "fmt"

// Percent is a gain or loss ratio expressed in percentage points.
type Percent float64

// Equal compares two percentages with the precision they are computed at.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) IsZero() bool { return p.Equal(0) }

// String renders the percentage at display precision (two decimal places).
func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString renders the percentage with an explicit sign, zero as "-".
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}
