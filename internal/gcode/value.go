package gcode

import (
	"sort"
	"strconv"
	"strings"
)

// GetValue returns the number following the first occurrence of key on the
// line. The key must appear before any ';' comment, and the number must
// directly follow it (an optional '-', digits, an optional '.' and
// fraction). ok is false when the field is absent or malformed.
func GetValue(line string, key byte) (value float64, ok bool) {
	idx := strings.IndexByte(line, key)
	if idx < 0 {
		return 0, false
	}
	if semi := strings.IndexByte(line, ';'); semi >= 0 && idx > semi {
		return 0, false
	}

	num := leadingNumber(line[idx+1:])
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// leadingNumber returns the longest prefix of s matching -?[0-9]+\.?[0-9]*.
func leadingNumber(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == digits {
		return ""
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return s[:i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Fields maps one-letter G-code words to their numeric values.
type Fields map[byte]float64

// fieldOrder is the canonical word order used by PutValue. Words not listed
// are appended in byte order.
var fieldOrder = []byte{'G', 'M', 'T', 'X', 'Y', 'Z', 'I', 'J', 'E', 'F', 'S', 'P'}

// PutValue formats a command line from fields in canonical word order with
// the shortest representation that round-trips each number.
func PutValue(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	seen := make(map[byte]bool, len(fields))
	write := func(key byte) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(key)
		b.WriteString(FormatNumber(fields[key]))
		seen[key] = true
	}

	for _, key := range fieldOrder {
		if _, ok := fields[key]; ok {
			write(key)
		}
	}

	rest := make([]byte, 0)
	for key := range fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, key := range rest {
		write(key)
	}

	return b.String()
}

// FormatNumber renders v without exponent and without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
