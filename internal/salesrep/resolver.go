// Package salesrep keeps a storefront customer's sales rep metafield and tags
// in step with the rep assigned in the ERP.
package salesrep

import (
	"fmt"
	"regexp"
	"strings"

	"salesrep_sync/internal/storefront"
	"salesrep_sync/platform/apperr"
)

// DefaultRepHandle is the rep selected when nothing matches.
const DefaultRepHandle = "onboarding"

// MatchStrategy selects which rep field an identifier is compared against.
type MatchStrategy string

const (
	// MatchHandle handleizes the identifier and compares it with the rep handle.
	MatchHandle MatchStrategy = "handle"
	// MatchEmail compares the identifier with the rep email verbatim.
	MatchEmail MatchStrategy = "email"
)

// ParseMatchStrategy validates a configured strategy name.
func ParseMatchStrategy(name string) (MatchStrategy, error) {
	switch MatchStrategy(strings.ToLower(strings.TrimSpace(name))) {
	case MatchHandle:
		return MatchHandle, nil
	case MatchEmail:
		return MatchEmail, nil
	default:
		return "", apperr.Configuration(fmt.Sprintf("unknown match strategy %q", name))
	}
}

var nonHandleChars = regexp.MustCompile(`[^a-z0-9]+`)

// Handleize lower-cases s, collapses every run of characters outside
// [a-z0-9] into a single hyphen and trims hyphens from both ends.
func Handleize(s string) string {
	h := nonHandleChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(h, "-")
}

// Resolver picks the rep an identifier refers to.
type Resolver struct {
	Strategy      MatchStrategy
	DefaultHandle string
}

// NewResolver creates a resolver; an empty default handle means "onboarding".
func NewResolver(strategy MatchStrategy, defaultHandle string) Resolver {
	if defaultHandle == "" {
		defaultHandle = DefaultRepHandle
	}
	return Resolver{Strategy: strategy, DefaultHandle: defaultHandle}
}

// Resolve scans reps once and returns the matching rep, or the default rep
// when nothing matches. Fails with a resolution error when neither exists.
func (r Resolver) Resolve(identifier string, reps []storefront.SalesRep) (storefront.SalesRep, error) {
	key := r.key(identifier)

	var fallback *storefront.SalesRep
	for i := range reps {
		rep := &reps[i]
		if key != "" && r.field(rep) == key {
			return *rep, nil
		}
		if fallback == nil && rep.Handle == r.DefaultHandle {
			fallback = rep
		}
	}

	if fallback == nil {
		return storefront.SalesRep{}, apperr.Resolution(
			fmt.Sprintf("no sales rep matches %q and default rep %q is missing", identifier, r.DefaultHandle),
		).WithDetails(map[string]any{"identifier": identifier, "defaultHandle": r.DefaultHandle, "reps": len(reps)})
	}
	return *fallback, nil
}

// Matches reports whether rep was selected by identifier rather than as the
// default.
func (r Resolver) Matches(identifier string, rep storefront.SalesRep) bool {
	key := r.key(identifier)
	return key != "" && r.field(&rep) == key
}

func (r Resolver) key(identifier string) string {
	if r.Strategy == MatchHandle {
		return Handleize(identifier)
	}
	return identifier
}

func (r Resolver) field(rep *storefront.SalesRep) string {
	if r.Strategy == MatchHandle {
		return rep.Handle
	}
	return rep.Email
}
