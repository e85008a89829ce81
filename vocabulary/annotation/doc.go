// Package annotation provides vocabulary terms for analysis annotations.
//
// Annotation types name what an analyzer produces (tokens, sentences).
// Views declare the types they contain so consumers can discover output
// without scanning every annotation.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/annograph/vocabulary/annotation"
package annotation
