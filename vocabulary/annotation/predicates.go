package annotation

import "github.com/c360studio/semstreams/vocabulary"

// Annotation predicates describe the fixed fields every produced
// annotation carries.
const (
	// SpanStart is the start offset into the source text.
	SpanStart = "annograph.annotation.start"

	// SpanEnd is the end offset into the source text.
	SpanEnd = "annograph.annotation.end"

	// SpanText is the literal substring text[start:end].
	SpanText = "annograph.annotation.text"

	// AnchorDocument is the qualified document anchor. Present only when
	// the source document is nested inside a view (the qualifier carries
	// the view id); omitted for single-document top-level views.
	AnchorDocument = "annograph.annotation.document"
)

func init() {
	vocabulary.Register(SpanStart,
		vocabulary.WithDescription("Start offset of the annotated span"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"start"))

	vocabulary.Register(SpanEnd,
		vocabulary.WithDescription("End offset of the annotated span"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"end"))

	vocabulary.Register(SpanText,
		vocabulary.WithDescription("Literal substring covered by the span"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"text"))

	vocabulary.Register(AnchorDocument,
		vocabulary.WithDescription("Qualified document anchor (viewId:docId for nested documents)"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"document"))
}
