package graph

import "strings"

// anchorSep separates the view qualifier from the document id.
const anchorSep = ":"

// AnchorID builds a qualified document anchor. With an empty viewID the
// anchor is the bare document id (a top-level document); otherwise it is
// "<viewId>:<docId>" to disambiguate a document nested inside a view. The
// qualifier's presence is the only scope signal consumers get.
func AnchorID(viewID, docID string) string {
	if viewID == "" {
		return docID
	}
	return viewID + anchorSep + docID
}

// SplitAnchor splits a qualified anchor into its view and document parts.
// The view part is empty for a bare top-level anchor.
func SplitAnchor(anchor string) (viewID, docID string) {
	if i := strings.Index(anchor, anchorSep); i >= 0 {
		return anchor[:i], anchor[i+1:]
	}
	return "", anchor
}

// IsQualified reports whether the anchor carries a view qualifier.
func IsQualified(anchor string) bool {
	return strings.Contains(anchor, anchorSep)
}
