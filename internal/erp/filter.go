package erp

import (
	"fmt"
	"strings"

	"salesrep_sync/platform/apperr"
)

// FilterStrategy selects how reps are screened before forwarding.
type FilterStrategy string

const (
	// FilterNone forwards every active rep.
	FilterNone FilterStrategy = "none"
	// FilterAllow forwards only reps whose id or email is listed.
	FilterAllow FilterStrategy = "allow"
	// FilterDeny drops reps whose display name is listed.
	FilterDeny FilterStrategy = "deny"
)

// RepFilter decides whether a rep change is forwarded.
type RepFilter struct {
	strategy FilterStrategy
	values   map[string]struct{}
}

// NewRepFilter builds a filter. Values are matched case-insensitively.
func NewRepFilter(strategy string, values []string) (RepFilter, error) {
	s := FilterStrategy(strings.ToLower(strings.TrimSpace(strategy)))
	switch s {
	case "":
		s = FilterNone
	case FilterNone, FilterAllow, FilterDeny:
	default:
		return RepFilter{}, apperr.Configuration(fmt.Sprintf("unknown rep filter strategy %q", strategy))
	}

	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = normalize(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return RepFilter{strategy: s, values: set}, nil
}

// Strategy returns the configured strategy.
func (f RepFilter) Strategy() FilterStrategy {
	return f.strategy
}

// Allows reports whether emp may be forwarded, with the reason when not.
// Inactive employees are never forwarded.
func (f RepFilter) Allows(emp Employee) (bool, string) {
	if !emp.IsActive {
		return false, "inactive"
	}
	switch f.strategy {
	case FilterAllow:
		if f.has(emp.ID) || f.has(emp.Email) {
			return true, ""
		}
		return false, "not_allowed"
	case FilterDeny:
		if f.has(emp.DisplayName()) {
			return false, "excluded"
		}
		return true, ""
	default:
		return true, ""
	}
}

func (f RepFilter) has(v string) bool {
	_, ok := f.values[normalize(v)]
	return ok
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
