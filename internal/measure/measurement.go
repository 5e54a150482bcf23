// Package measure models numeric values paired with a standard deviation and
// parses them from the notations used in experiment configuration files.
//
// Arithmetic uses first-order error propagation and treats every operand as
// an independent variable. Correlations between operands are not tracked.
package measure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmpty is returned by WeightedMean when no measurements are given.
var ErrEmpty = errors.New("no measurements")

// ErrZeroStdDev is returned by WeightedMean for an input with no usable
// uncertainty (zero, NaN or infinite), which cannot be weighted.
var ErrZeroStdDev = errors.New("measurement has no usable standard deviation")

// Measurement is a nominal value with a symmetric standard deviation.
type Measurement struct {
	Nominal float64 `json:"nominal"`
	StdDev  float64 `json:"std_dev"`
}

// New returns a Measurement. A negative stddev is stored as its magnitude.
func New(nominal, stddev float64) Measurement {
	return Measurement{Nominal: nominal, StdDev: math.Abs(stddev)}
}

// Exact returns a Measurement with zero uncertainty.
func Exact(v float64) Measurement {
	return Measurement{Nominal: v}
}

// RelStdDev returns StdDev / |Nominal|. It is +Inf for a zero nominal value.
func (m Measurement) RelStdDev() float64 {
	if m.Nominal == 0 {
		return math.Inf(1)
	}
	return m.StdDev / math.Abs(m.Nominal)
}

func (m Measurement) Add(o Measurement) Measurement {
	return Measurement{Nominal: m.Nominal + o.Nominal, StdDev: math.Hypot(m.StdDev, o.StdDev)}
}

func (m Measurement) Sub(o Measurement) Measurement {
	return Measurement{Nominal: m.Nominal - o.Nominal, StdDev: math.Hypot(m.StdDev, o.StdDev)}
}

func (m Measurement) Mul(o Measurement) Measurement {
	return Measurement{
		Nominal: m.Nominal * o.Nominal,
		StdDev:  math.Hypot(o.Nominal*m.StdDev, m.Nominal*o.StdDev),
	}
}

func (m Measurement) Div(o Measurement) Measurement {
	return Measurement{
		Nominal: m.Nominal / o.Nominal,
		StdDev:  math.Hypot(m.StdDev/o.Nominal, m.Nominal*o.StdDev/(o.Nominal*o.Nominal)),
	}
}

// Scale multiplies by an exact factor.
func (m Measurement) Scale(k float64) Measurement {
	return Measurement{Nominal: m.Nominal * k, StdDev: m.StdDev * math.Abs(k)}
}

// WeightedMean returns the inverse-variance weighted mean of ms.
func WeightedMean(ms []Measurement) (Measurement, error) {
	if len(ms) == 0 {
		return Measurement{}, ErrEmpty
	}

	var sumW, sumWX float64
	for i, m := range ms {
		if m.StdDev == 0 || math.IsNaN(m.StdDev) || math.IsInf(m.StdDev, 0) {
			return Measurement{}, fmt.Errorf("measurement %d (%s): %w", i, m, ErrZeroStdDev)
		}
		w := 1 / (m.StdDev * m.StdDev)
		sumW += w
		sumWX += w * m.Nominal
	}

	return Measurement{Nominal: sumWX / sumW, StdDev: 1 / math.Sqrt(sumW)}, nil
}

// String formats m as "nominal+/-stddev", rounding the uncertainty to two
// significant digits and the nominal value to the same decimal place.
func (m Measurement) String() string {
	if m.StdDev == 0 || math.IsNaN(m.StdDev) || math.IsInf(m.StdDev, 0) ||
		math.IsNaN(m.Nominal) || math.IsInf(m.Nominal, 0) {
		return fmt.Sprintf("%s+/-%s", formatG(m.Nominal), formatG(m.StdDev))
	}

	// exponent after rounding to two significant digits, so 0.0996 counts as 0.10
	sci := strconv.FormatFloat(m.StdDev, 'e', 1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil {
		return fmt.Sprintf("%s+/-%s", formatG(m.Nominal), formatG(m.StdDev))
	}
	prec := 1 - exp
	if prec >= 0 {
		return fmt.Sprintf("%.*f+/-%.*f", prec, m.Nominal, prec, m.StdDev)
	}

	unit := math.Pow10(-prec)
	nominal := math.Round(m.Nominal/unit) * unit
	stddev := math.Round(m.StdDev/unit) * unit
	return fmt.Sprintf("%.0f+/-%.0f", nominal, stddev)
}

func formatG(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
