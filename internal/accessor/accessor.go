// Package accessor reads values out of run documents, interpreting strings
// written in number-with-uncertainty notation as measurements.
package accessor

import (
	"github.com/harrison/runcollect/internal/jsonvalue"
	"github.com/harrison/runcollect/internal/measure"
)

// Parsed is either a measurement or a passthrough JSON value.
type Parsed struct {
	measurement measure.Measurement
	isMeasure   bool
	raw         jsonvalue.Value
}

// FromMeasurement wraps a measurement.
func FromMeasurement(m measure.Measurement) Parsed {
	return Parsed{measurement: m, isMeasure: true}
}

// Raw wraps a JSON value that is returned as-is.
func Raw(v jsonvalue.Value) Parsed {
	return Parsed{raw: v}
}

// Missing is the absent passthrough used when no default is supplied.
func Missing() Parsed {
	return Parsed{}
}

// IsMeasurement reports whether p holds a parsed measurement.
func (p Parsed) IsMeasurement() bool { return p.isMeasure }

// IsMissing reports whether p holds neither a measurement nor a value.
func (p Parsed) IsMissing() bool { return !p.isMeasure && p.raw.IsAbsent() }

// Measurement returns the measurement held by p.
func (p Parsed) Measurement() (measure.Measurement, bool) {
	return p.measurement, p.isMeasure
}

// Value returns the passthrough JSON value held by p.
func (p Parsed) Value() (jsonvalue.Value, bool) {
	return p.raw, !p.isMeasure
}

// Float returns the nominal value of a measurement or the value of a JSON
// number.
func (p Parsed) Float() (float64, bool) {
	if p.isMeasure {
		return p.measurement.Nominal, true
	}
	return p.raw.Float()
}

// String renders measurements as "n+/-s", strings unquoted, anything else as
// JSON, and a missing value as the empty string.
func (p Parsed) String() string {
	if p.isMeasure {
		return p.measurement.String()
	}
	if s, ok := p.raw.Str(); ok {
		return s
	}
	if p.raw.IsAbsent() {
		return ""
	}
	return p.raw.String()
}

// GetVal returns the value stored under key in obj. A string in
// number-with-uncertainty notation comes back as a measurement; any other
// value comes back unchanged. If obj is not an object or has no such key,
// def is returned.
func GetVal(obj jsonvalue.Value, key string, def Parsed) Parsed {
	v, ok := obj.Get(key)
	if !ok {
		return def
	}
	if s, isStr := v.Str(); isStr {
		if m, err := measure.Parse(s); err == nil {
			return FromMeasurement(m)
		}
	}
	return Raw(v)
}

// Lookup is GetVal with Missing as the default.
func Lookup(obj jsonvalue.Value, key string) Parsed {
	return GetVal(obj, key, Missing())
}

// Measurements collects the measurements found under key across docs,
// skipping documents where the key is missing or holds something else.
func Measurements(docs []jsonvalue.Value, key string) []measure.Measurement {
	var out []measure.Measurement
	for _, doc := range docs {
		if m, ok := Lookup(doc, key).Measurement(); ok {
			out = append(out, m)
		}
	}
	return out
}
