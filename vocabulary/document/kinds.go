package document

import "strings"

// Kind is the classified document kind. Classification is explicit and
// happens once when a document is discovered; consumers switch on Kind
// instead of string-matching IRIs.
type Kind string

const (
	// KindText is a text-bearing document.
	KindText Kind = "text"

	// KindAudio is an audio document.
	KindAudio Kind = "audio"

	// KindVideo is a video document.
	KindVideo Kind = "video"

	// KindImage is an image document.
	KindImage Kind = "image"

	// KindUnknown is any classifier this vocabulary does not recognise.
	KindUnknown Kind = "unknown"
)

// kindBySegment maps the trailing IRI segment to a Kind. Matching by
// trailing segment tolerates versioned or foreign namespaces that reuse
// the conventional class names.
var kindBySegment = map[string]Kind{
	"TextDocument":  KindText,
	"AudioDocument": KindAudio,
	"VideoDocument": KindVideo,
	"ImageDocument": KindImage,
}

// KindOf classifies a document type IRI.
func KindOf(typeIRI string) Kind {
	segment := typeIRI
	if i := strings.LastIndex(typeIRI, "/"); i >= 0 {
		segment = typeIRI[i+1:]
	}
	if k, ok := kindBySegment[segment]; ok {
		return k
	}
	return KindUnknown
}

// IsText reports whether the type IRI classifies as a text document.
func IsText(typeIRI string) bool {
	return KindOf(typeIRI) == KindText
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}
