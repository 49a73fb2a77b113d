package catalog

import "strings"

// Rejection classifies a storefront business rejection by its message.
// The admin API returns no structured error codes for these conditions, so
// the engine matches keywords. All rules live here so call sites share one
// testable classifier.
type Rejection int

const (
	// RejectValidation is any rejection with no special handling: the
	// request content was refused and retrying cannot help.
	RejectValidation Rejection = iota
	// RejectDuplicate means the child already exists on the target. Not a
	// failure: the engine locates the existing child and proceeds.
	RejectDuplicate
	// RejectLinkedOption means the option axis is reference-backed and
	// refuses plain labels; the engine resubmits with a metaobject
	// reference.
	RejectLinkedOption
)

var duplicateMarkers = []string{
	"already exists",
	"duplicate",
	"has already been taken",
	"sku is taken",
}

// ClassifyRejection inspects a rejection message and decides how the engine
// should react.
func ClassifyRejection(msg string) Rejection {
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "metafield") {
		return RejectLinkedOption
	}
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return RejectDuplicate
		}
	}
	return RejectValidation
}
