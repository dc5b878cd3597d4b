package settings

import (
	"strings"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
)

// ParseAssignments turns "key=value" pairs from the command line into
// Values. Values stay strings; Resolve coerces them to the declared type.
func ParseAssignments(pairs []string) (Values, error) {
	values := make(Values, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, perrors.ValidationFailed("--set", "expected key=value, got "+pair)
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}
