package output

import (
	"fmt"
	"strings"

	"github.com/ritzau/codewarn/pkg/model"
)

// FailOn is the least severe level that fails a run. The zero value never
// fails.
type FailOn struct {
	level model.Level
}

// ParseFailOn accepts "", "never" or a warning level.
func ParseFailOn(s string) (FailOn, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "never":
		return FailOn{}, nil
	default:
		level := model.Level(v)
		if level.Severity() < 0 {
			return FailOn{}, fmt.Errorf("invalid fail-on %q: want never, info, warning or error", s)
		}
		return FailOn{level: level}, nil
	}
}

// Fails reports whether result has a warning at or above the threshold.
func (f FailOn) Fails(result *model.Result) bool {
	if f.level == "" || result == nil {
		return false
	}
	threshold := f.level.Severity()
	for _, w := range result.Warnings {
		if w.Level.Severity() >= threshold {
			return true
		}
	}
	return false
}

func (f FailOn) String() string {
	if f.level == "" {
		return "never"
	}
	return string(f.level)
}
