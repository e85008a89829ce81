// Package app provides static service metadata for the annotation service.
// The metadata is configuration, not computed state: a discovery endpoint
// exposes it verbatim so collaborators can learn what the service requires
// and produces without running it.
package app

import (
	"fmt"

	"github.com/c360studio/annograph/analysis/tokenizer"
	annovocab "github.com/c360studio/annograph/vocabulary/annotation"
	docvocab "github.com/c360studio/annograph/vocabulary/document"
)

// SpecVersion is the annotation-graph format version this service targets.
const SpecVersion = "0.2.1"

// Metadata identifies an annotation service and declares its input
// requirements and output annotation types.
type Metadata struct {
	// Identifier is the opaque URI-like producer identity. Every view the
	// service creates is stamped with it.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Name is the human-readable service name.
	Name string `json:"name" yaml:"name"`

	// Description explains what the service does.
	Description string `json:"description" yaml:"description"`

	// Vendor names the publishing organisation.
	Vendor string `json:"vendor,omitempty" yaml:"vendor"`

	// AppVersion is the service wrapper version.
	AppVersion string `json:"app_version" yaml:"app_version"`

	// ToolVersion is the wrapped analyzer version.
	ToolVersion string `json:"tool_version" yaml:"tool_version"`

	// SpecVersion is the annotation-graph format version.
	SpecVersion string `json:"spec_version" yaml:"spec_version"`

	// Requires lists document type IRIs the service needs in its input.
	Requires []string `json:"requires" yaml:"requires"`

	// Produces lists annotation type IRIs the service emits.
	Produces []string `json:"produces" yaml:"produces"`
}

// Default returns the metadata of the bundled tokenizer service.
func Default() Metadata {
	return Metadata{
		Identifier:  "https://apps.annograph.dev/tokenizer",
		Name:        "Tokenizer",
		Description: "Applies simple regular-expression tokenization to every text document in an annotation graph.",
		Vendor:      "C360 Studio",
		AppVersion:  "0.1.0",
		ToolVersion: tokenizer.Version,
		SpecVersion: SpecVersion,
		Requires:    []string{docvocab.TextDocument},
		Produces:    []string{annovocab.Token},
	}
}

// Validate checks that the metadata names an identity.
func (m Metadata) Validate() error {
	if m.Identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Merge overlays non-zero fields of other onto m.
func (m *Metadata) Merge(other Metadata) {
	if other.Identifier != "" {
		m.Identifier = other.Identifier
	}
	if other.Name != "" {
		m.Name = other.Name
	}
	if other.Description != "" {
		m.Description = other.Description
	}
	if other.Vendor != "" {
		m.Vendor = other.Vendor
	}
	if other.AppVersion != "" {
		m.AppVersion = other.AppVersion
	}
	if other.ToolVersion != "" {
		m.ToolVersion = other.ToolVersion
	}
	if other.SpecVersion != "" {
		m.SpecVersion = other.SpecVersion
	}
	if len(other.Requires) > 0 {
		m.Requires = other.Requires
	}
	if len(other.Produces) > 0 {
		m.Produces = other.Produces
	}
}
