package salesrep

import (
	"strings"

	"salesrep_sync/internal/storefront"
)

// TagPrefix marks the tag that carries the assigned rep.
const TagPrefix = "sales_rep:"

// TagDelta is the tag change needed to reflect a rep assignment.
type TagDelta struct {
	ToRemove []string `json:"toRemove"`
	ToAdd    []string `json:"toAdd"`
}

// RepTagName is the name used in tags for rep. Falls back to the handle
// for metaobjects without a display name.
func RepTagName(rep storefront.SalesRep) string {
	if name := strings.TrimSpace(rep.Name); name != "" {
		return name
	}
	return rep.Handle
}

// ComputeDelta returns the tags to drop and add so that the customer ends up
// with exactly one sales_rep tag, for rep. Tags already equal to the new rep
// tag are kept, so repeating an assignment removes nothing.
func ComputeDelta(currentTags []string, rep storefront.SalesRep) TagDelta {
	name := RepTagName(rep)
	repTag := TagPrefix + name

	toRemove := make([]string, 0)
	seen := make(map[string]struct{}, len(currentTags))
	for _, tag := range currentTags {
		if !strings.Contains(tag, TagPrefix) || tag == repTag {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		toRemove = append(toRemove, tag)
	}

	return TagDelta{
		ToRemove: toRemove,
		ToAdd:    []string{name, repTag},
	}
}
