package core

import (
	"math"
	"strconv"
)

// Fraction is a ratio that keeps its parts so an empty denominator stays visible
// instead of turning into NaN.
type Fraction struct {
	Name string
	Num  float64
	Den  float64
}

// NewFraction builds a named fraction.
func NewFraction(name string, num, den float64) Fraction {
	return Fraction{Name: name, Num: num, Den: den}
}

// Defined reports whether the denominator is non-zero.
func (f Fraction) Defined() bool { return f.Den != 0 }

// Value returns Num/Den or a DivisionUndefinedError.
func (f Fraction) Value() (float64, error) {
	if !f.Defined() {
		return 0, &DivisionUndefinedError{Statistic: f.Name}
	}
	return f.Num / f.Den, nil
}

// String formats the value, or NA when undefined.
func (f Fraction) String() string {
	v, err := f.Value()
	if err != nil {
		return "NA"
	}
	return FormatFloat(v)
}

// FormatFloat renders a float the way the TSV outputs expect: shortest
// round-tripping form, NA for NaN.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
