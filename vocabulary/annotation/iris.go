package annotation

// Namespace is the base IRI prefix for annotation type terms.
const Namespace = "https://annograph.dev/vocabulary/annotation/"

// Annotation type IRIs produced by the bundled analyzers.
const (
	// Token is a single token span over a text document.
	Token = Namespace + "Token"

	// Sentence is a sentence span over a text document.
	Sentence = Namespace + "Sentence"
)
