package document

import "github.com/c360studio/semstreams/vocabulary"

// Document predicates describe documents stored in an annotation graph.
const (
	// DocID is the document identifier, unique within its container.
	DocID = "annograph.document.id"

	// DocType is the document type classifier IRI.
	DocType = "annograph.document.type"

	// DocText is the inline text content. When present it takes
	// precedence over DocLocation, which is never dereferenced.
	DocText = "annograph.document.text"

	// DocLocation is the external content reference (URL or file path).
	DocLocation = "annograph.document.location"
)

func init() {
	vocabulary.Register(DocID,
		vocabulary.WithDescription("Document identifier, unique within its container"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"id"))

	vocabulary.Register(DocType,
		vocabulary.WithDescription("Document type classifier IRI"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"type"))

	vocabulary.Register(DocText,
		vocabulary.WithDescription("Inline text content, preferred over the external location"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"text"))

	vocabulary.Register(DocLocation,
		vocabulary.WithDescription("External content reference (URL or file path)"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"location"))
}
