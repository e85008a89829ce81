// Package annotator provides a NATS consumer component that runs the
// annotation pipeline over serialized document graphs.
//
// # Overview
//
// The annotator consumes annotation requests from a JetStream stream,
// parses the carried graph, runs the tokenizer pipeline over every text
// document, and publishes the enriched graph to a result subject keyed
// by request ID. Completed runs can optionally be recorded in NATS KV.
//
// # Architecture
//
// The package consists of several key components:
//
//   - Component: NATS consumer lifecycle management
//   - AnnotateRequest/AnnotateResult: message payloads
//   - HTTP handlers: synchronous annotation and Prometheus metrics
//
// # Processing Model
//
// Each request is an independent run. A run validates the graph first
// and aborts without output when the graph is malformed; documents
// whose content cannot be read are reported as diagnostics while the
// rest of the run completes. Pre-existing views are never modified.
//
// # Usage
//
// The component is registered via the factory and started by the
// component registry:
//
//	import "github.com/c360studio/annograph/processor/annotator"
//
//	func main() {
//	    annotator.Register(registry)
//	    // Component started automatically when configured
//	}
//
// Requests are consumed from the configured stream/consumer and results
// published to result_subject_prefix + request ID.
package annotator
