package document

// Namespace is the base IRI prefix for document type terms.
const Namespace = "https://annograph.dev/vocabulary/document/"

// Class IRIs for the document kinds a graph may carry.
const (
	// TextDocument is a document whose content is plain text,
	// available inline or through an external location.
	TextDocument = Namespace + "TextDocument"

	// AudioDocument is a document referencing audio media.
	AudioDocument = Namespace + "AudioDocument"

	// VideoDocument is a document referencing video media.
	VideoDocument = Namespace + "VideoDocument"

	// ImageDocument is a document referencing a still image.
	ImageDocument = Namespace + "ImageDocument"
)
