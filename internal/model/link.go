package model

import (
	"fmt"
	"strings"
)

// LinkKind classifies what a submitted URL points at
type LinkKind string

const (
	// LinkKindUnknown is the zero value for an unclassified record
	LinkKindUnknown LinkKind = ""

	// LinkKindVideo marks a streamable video source (the default for any
	// non-PDF link)
	LinkKindVideo LinkKind = "video"

	// LinkKindPDF marks a direct PDF document link
	LinkKindPDF LinkKind = "pdf"
)

// String returns the string representation of LinkKind
func (k LinkKind) String() string {
	return string(k)
}

// Label returns the uppercase tag used in user-facing link listings
func (k LinkKind) Label() string {
	return strings.ToUpper(string(k))
}

// LinkRecord is one classified URL plus its stable 1-based index within a batch
type LinkRecord struct {
	Index  int
	RawURL string
	Kind   LinkKind
}

// ClassificationSummary holds per-kind counts for a classified link list.
// Derived for the summary prompt only, never persisted.
type ClassificationSummary struct {
	Videos int
	PDFs   int
}

// Total returns the number of classified links
func (cs ClassificationSummary) Total() int {
	return cs.Videos + cs.PDFs
}

// String renders the summary as e.g. "2 videos, 1 pdf"
func (cs ClassificationSummary) String() string {
	return fmt.Sprintf("%s, %s", pluralize(cs.Videos, "video"), pluralize(cs.PDFs, "pdf"))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
