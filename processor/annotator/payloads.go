package annotator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/payloadregistry"

	"github.com/c360studio/annograph/pipeline"
)

// RegisterPayloads registers the annotation payload types with the
// supplied registry. Called from the binary during process bootstrap,
// after payloadbuiltins.Register. Returns aggregated errors via
// errors.Join so collisions are all reported on a single boot.
func RegisterPayloads(reg *payloadregistry.Registry) error {
	registrations := []*payloadregistry.Registration{
		{Domain: "annotate", Category: "request", Version: "v1", Description: "Annotation request carrying a serialized document graph", Factory: func() any { return &AnnotateRequest{} }},
		{Domain: "annotate", Category: "result", Version: "v1", Description: "Annotation result carrying the enriched document graph", Factory: func() any { return &AnnotateResult{} }},
	}

	var errs []error
	for _, r := range registrations {
		if err := reg.Register(r); err != nil {
			errs = append(errs, fmt.Errorf("register %s.%s.%s: %w", r.Domain, r.Category, r.Version, err))
		}
	}
	return errors.Join(errs...)
}

// AnnotateRequestType is the message type for annotation requests.
var AnnotateRequestType = message.Type{Domain: "annotate", Category: "request", Version: "v1"}

// AnnotateResultType is the message type for annotation results.
var AnnotateResultType = message.Type{Domain: "annotate", Category: "result", Version: "v1"}

// AnnotateRequest implements message.Payload for annotation requests.
type AnnotateRequest struct {
	// RequestID correlates the result with the request.
	RequestID string `json:"request_id"`

	// Graph is the serialized document graph to annotate.
	Graph json.RawMessage `json:"graph"`
}

// Schema returns the message type for Payload interface.
func (p *AnnotateRequest) Schema() message.Type { return AnnotateRequestType }

// Validate validates the payload for Payload interface.
func (p *AnnotateRequest) Validate() error {
	if p.RequestID == "" {
		return errors.New("request ID is required")
	}
	if len(p.Graph) == 0 {
		return errors.New("graph is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *AnnotateRequest) MarshalJSON() ([]byte, error) {
	type Alias AnnotateRequest
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *AnnotateRequest) UnmarshalJSON(data []byte) error {
	type Alias AnnotateRequest
	return json.Unmarshal(data, (*Alias)(p))
}

// AnnotateResult implements message.Payload for annotation results.
type AnnotateResult struct {
	// RequestID echoes the request this result answers.
	RequestID string `json:"request_id"`

	// Graph is the serialized graph with the new views appended.
	// Empty when Error is set.
	Graph json.RawMessage `json:"graph,omitempty"`

	// Views lists the ids of views the run created.
	Views []string `json:"views,omitempty"`

	// Annotations is the total number of annotations produced.
	Annotations int `json:"annotations"`

	// Diagnostics lists documents that could not be read.
	Diagnostics []pipeline.Diagnostic `json:"diagnostics,omitempty"`

	// Error is set when the run aborted before producing output.
	Error string `json:"error,omitempty"`
}

// Schema returns the message type for Payload interface.
func (p *AnnotateResult) Schema() message.Type { return AnnotateResultType }

// Validate validates the payload for Payload interface.
func (p *AnnotateResult) Validate() error {
	if p.RequestID == "" {
		return errors.New("request ID is required")
	}
	if len(p.Graph) == 0 && p.Error == "" {
		return errors.New("result needs a graph or an error")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *AnnotateResult) MarshalJSON() ([]byte, error) {
	type Alias AnnotateResult
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *AnnotateResult) UnmarshalJSON(data []byte) error {
	type Alias AnnotateResult
	return json.Unmarshal(data, (*Alias)(p))
}
