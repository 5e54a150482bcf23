package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a document is not well-formed JSON.
var ErrInvalidJSON = errors.New("invalid JSON document")

// nonFiniteTokens are the bare number tokens written for non-finite floats
// by common JSON emitters. They are accepted wherever a value may appear.
var nonFiniteTokens = []string{"-Infinity", "Infinity", "NaN"}

// Parse decodes a JSON document into a Value. Text must be valid UTF-8.
// The bare tokens NaN, Infinity and -Infinity decode as numbers.
func Parse(data []byte) (Value, error) {
	if !utf8.Valid(data) {
		return Value{}, ErrInvalidJSON
	}
	data, marker := rewriteNonFinite(data)
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data), marker), nil
}

// ParseString decodes a JSON document held in a string.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

// ReadFile reads and decodes the JSON document at path.
func ReadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

// rewriteNonFinite replaces bare non-finite tokens outside string literals
// with string literals of the form marker+token, so gjson can validate the
// document. The marker is chosen so that it does not occur in data. When
// no token is present data is returned unchanged with an empty marker.
func rewriteNonFinite(data []byte) ([]byte, string) {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data, ""
	}

	marker := "runcollect-nonfinite:"
	for n := 0; bytes.Contains(data, []byte(marker)); n++ {
		marker = "runcollect-nonfinite-" + strconv.Itoa(n) + ":"
	}

	var out bytes.Buffer
	out.Grow(len(data) + 64)
	found := false
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			out.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		if tok := nonFiniteAt(data, i); tok != "" {
			out.WriteString(strconv.Quote(marker + tok))
			i += len(tok) - 1
			found = true
			continue
		}
		out.WriteByte(c)
	}
	if !found {
		return data, ""
	}
	return out.Bytes(), marker
}

// nonFiniteAt returns the non-finite token starting at data[i] when it
// stands alone as a value, or "" otherwise.
func nonFiniteAt(data []byte, i int) string {
	if i > 0 && !isValueStart(data[i-1]) {
		return ""
	}
	for _, tok := range nonFiniteTokens {
		if !bytes.HasPrefix(data[i:], []byte(tok)) {
			continue
		}
		end := i + len(tok)
		if end < len(data) && !isValueEnd(data[end]) {
			return ""
		}
		// a token followed by a colon would be an object key
		rest := bytes.TrimLeft(data[end:], " \t\r\n")
		if len(rest) > 0 && rest[0] == ':' {
			return ""
		}
		return tok
	}
	return ""
}

func isValueStart(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ':', ',', '[':
		return true
	}
	return false
}

func isValueEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', ']', '}':
		return true
	}
	return false
}

// fromResult converts a validated gjson result. Object members are visited
// in document order by ForEach, which is what keeps key order intact.
// Strings whose raw text opens with marker are rewritten non-finite numbers.
func fromResult(r gjson.Result, marker string) Value {
	switch r.Type {
	case gjson.Null:
		return NullValue()
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return NumberLiteral(strings.TrimSpace(r.Raw))
	case gjson.String:
		if marker != "" && strings.HasPrefix(r.Raw, `"`+marker) {
			return NumberLiteral(strings.TrimPrefix(r.Str, marker))
		}
		return StringValue(r.Str)
	}

	if r.IsArray() {
		items := make([]Value, 0)
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, fromResult(item, marker))
			return true
		})
		return Value{kind: Array, arr: items}
	}

	members := make([]Member, 0)
	r.ForEach(func(key, item gjson.Result) bool {
		members = append(members, Member{Key: key.Str, Value: fromResult(item, marker)})
		return true
	})
	return ObjectValue(members...)
}
