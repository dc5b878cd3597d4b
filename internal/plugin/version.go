package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

type version [3]int

// parseVersion accepts "v1", "v1.2" and "v1.2.3" (the leading "v" is
// optional). Pre-release suffixes are not supported.
func parseVersion(raw string) (version, error) {
	var v version
	trimmed := strings.TrimPrefix(raw, "v")
	parts := strings.Split(trimmed, ".")
	if trimmed == "" || len(parts) > 3 {
		return v, fmt.Errorf("invalid version %q", raw)
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return v, fmt.Errorf("invalid version %q", raw)
		}
		v[i] = n
	}
	return v, nil
}

func (v version) less(other version) bool {
	for i := range v {
		if v[i] != other[i] {
			return v[i] < other[i]
		}
	}
	return false
}
