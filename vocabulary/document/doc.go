// Package document provides vocabulary terms for document classification.
//
// Documents carry an IRI type classifier. Classification into a Kind happens
// once at discovery time; downstream code switches on the Kind enum rather
// than re-inspecting IRIs.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/annograph/vocabulary/document"
package document
