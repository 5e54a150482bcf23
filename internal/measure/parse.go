package measure

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax is returned when a string is not in a recognised
// number-with-uncertainty notation.
var ErrSyntax = errors.New("invalid number with uncertainty")

// ErrNegativeStdDev is returned when an explicit uncertainty is negative.
var ErrNegativeStdDev = errors.New("standard deviation cannot be negative")

var (
	// (nominal+/-err)eN with the exponent shared by both parts
	factoredRE = regexp.MustCompile(`^\((.*)\)(?:[eE]([+-]?\d+))?$`)

	plusMinusRE = regexp.MustCompile(`\s*(?:\+/-|±|\+-)\s*`)

	floatRE = regexp.MustCompile(`^[+-]?(?:(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?|(?i:nan|inf|infinity))$`)

	// 1.23(4)e-3: sign, integer digits, fraction, uncertainty, exponent
	shortRE = regexp.MustCompile(`^([+-])?(\d*)(\.\d*)?(?:\(([^()]*)\))?(?:[eE]([+-]?\d+))?$`)

	nonFiniteRE = regexp.MustCompile(`^([+-])?((?i:nan|inf|infinity))(?:\(([^()]*)\))?$`)

	uncertaintyRE = regexp.MustCompile(`^(?:\d+\.?\d*|\.\d+|(?i:nan|inf|infinity))$`)
)

// Parse reads a number with uncertainty. Accepted forms:
//
//	1.23+/-0.04   1.23±0.04   1.23+-0.04   (1.23 +/- 0.04)e-3
//	1.23(4)       1.5(0.2)    1.23(4)e-3
//	2.0           3           nan
//
// Digits in parentheses without a decimal point apply to the last digits of
// the nominal value. A bare number gets an uncertainty of one unit in its
// last digit.
func Parse(s string) (Measurement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Measurement{}, ErrSyntax
	}

	if m := factoredRE.FindStringSubmatch(s); m != nil {
		inner, err := parseUnfactored(strings.TrimSpace(m[1]))
		if err != nil {
			return Measurement{}, err
		}
		if m[2] == "" {
			return inner, nil
		}
		exp, err := strconv.Atoi(m[2])
		if err != nil {
			return Measurement{}, ErrSyntax
		}
		return inner.shift(exp), nil
	}

	return parseUnfactored(s)
}

// MustParse is like Parse but panics on error. Intended for tests and
// literals known to be valid.
func MustParse(s string) Measurement {
	m, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("measure: %q: %v", s, err))
	}
	return m
}

func parseUnfactored(s string) (Measurement, error) {
	parts := plusMinusRE.Split(s, -1)
	switch len(parts) {
	case 1:
		return parseShort(s)
	case 2:
		return parsePlusMinus(parts[0], parts[1])
	default:
		return Measurement{}, ErrSyntax
	}
}

func parsePlusMinus(nominal, stddev string) (Measurement, error) {
	if !floatRE.MatchString(nominal) || !floatRE.MatchString(stddev) {
		return Measurement{}, ErrSyntax
	}
	n, err := strconv.ParseFloat(nominal, 64)
	if err != nil {
		return Measurement{}, ErrSyntax
	}
	sd, err := strconv.ParseFloat(stddev, 64)
	if err != nil {
		return Measurement{}, ErrSyntax
	}
	if sd < 0 {
		return Measurement{}, ErrNegativeStdDev
	}
	return Measurement{Nominal: n, StdDev: sd}, nil
}

func parseShort(s string) (Measurement, error) {
	if m := nonFiniteRE.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1]+m[2], 64)
		if err != nil {
			return Measurement{}, ErrSyntax
		}
		sd := 1.0
		if m[3] != "" {
			if sd, err = parseUncertainty(m[3], 0); err != nil {
				return Measurement{}, err
			}
		}
		return Measurement{Nominal: n, StdDev: sd}, nil
	}

	m := shortRE.FindStringSubmatch(s)
	if m == nil {
		return Measurement{}, ErrSyntax
	}
	sign, intPart, frac, unc, exp := m[1], m[2], m[3], m[4], m[5]
	if intPart == "" && len(frac) <= 1 {
		return Measurement{}, ErrSyntax
	}

	decimals := 0
	if frac != "" {
		decimals = len(frac) - 1
	}

	digits := intPart + frac
	if intPart == "" {
		digits = "0" + frac
	}
	n, err := strconv.ParseFloat(sign+digits, 64)
	if err != nil {
		return Measurement{}, ErrSyntax
	}

	sd := 1 / math.Pow10(decimals)
	if unc != "" {
		if sd, err = parseUncertainty(unc, decimals); err != nil {
			return Measurement{}, err
		}
	}

	result := Measurement{Nominal: n, StdDev: sd}
	if exp != "" {
		e, err := strconv.Atoi(exp)
		if err != nil {
			return Measurement{}, ErrSyntax
		}
		result = result.shift(e)
	}
	return result, nil
}

// parseUncertainty reads the parenthesised part of the short form. Without a
// decimal point the digits count in units of the nominal's last digit.
func parseUncertainty(unc string, decimals int) (float64, error) {
	unc = strings.TrimSpace(unc)
	if !uncertaintyRE.MatchString(unc) {
		return 0, ErrSyntax
	}
	sd, err := strconv.ParseFloat(unc, 64)
	if err != nil {
		return 0, ErrSyntax
	}
	if strings.Contains(unc, ".") || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return sd, nil
	}
	return sd / math.Pow10(decimals), nil
}

// shift multiplies both parts by 10^exp.
func (m Measurement) shift(exp int) Measurement {
	if exp >= 0 {
		p := math.Pow10(exp)
		return Measurement{Nominal: m.Nominal * p, StdDev: m.StdDev * p}
	}
	p := math.Pow10(-exp)
	return Measurement{Nominal: m.Nominal / p, StdDev: m.StdDev / p}
}
