package annotator

import (
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
)

// Config holds configuration for the annotator processor component.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	// StreamName is the JetStream stream for annotation requests.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream name,category:basic,default:ANNOTATE"`

	// ConsumerName is the durable consumer name.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name,category:basic,default:annotator"`

	// ResultSubjectPrefix is prepended to the request ID when publishing results.
	ResultSubjectPrefix string `json:"result_subject_prefix" schema:"type:string,description:Subject prefix for result publication,category:basic,default:annotate.result."`

	// Producer is the app identity stamped on every created view.
	Producer string `json:"producer" schema:"type:string,description:App identity recorded on produced views,category:basic,default:https://apps.annograph.dev/tokenizer"`

	// FetchTimeout is the maximum time for resolving one document location.
	FetchTimeout string `json:"fetch_timeout" schema:"type:string,description:Location fetch timeout,category:advanced,default:30s"`

	// MaxContentSize is the maximum document body size in bytes.
	MaxContentSize int64 `json:"max_content_size" schema:"type:int,description:Maximum document size in bytes,category:advanced,default:10485760"`

	// UserAgent is the User-Agent header for URL locations.
	UserAgent string `json:"user_agent" schema:"type:string,description:HTTP User-Agent header,category:advanced,default:annograph-annotator/1.0"`

	// AllowInsecure permits plain http URLs and private addresses.
	AllowInsecure bool `json:"allow_insecure" schema:"type:bool,description:Allow http and private-network locations,category:advanced,default:false"`

	// PersistRuns stores a run record in the KV store for each completed run.
	PersistRuns bool `json:"persist_runs" schema:"type:bool,description:Persist run records to NATS KV,category:advanced,default:true"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	if c.ResultSubjectPrefix == "" {
		return fmt.Errorf("result_subject_prefix is required")
	}
	if c.Producer == "" {
		return fmt.Errorf("producer is required")
	}
	if c.FetchTimeout != "" {
		if _, err := time.ParseDuration(c.FetchTimeout); err != nil {
			return fmt.Errorf("invalid fetch_timeout format: %w", err)
		}
	}
	if c.MaxContentSize < 0 {
		return fmt.Errorf("max_content_size must be non-negative")
	}
	return nil
}

// parseDurationOrDefault parses a duration string and returns the default if empty or invalid.
func parseDurationOrDefault(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// GetFetchTimeout returns the fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	return parseDurationOrDefault(c.FetchTimeout, 30*time.Second)
}

// GetMaxContentSize returns the max content size with default.
func (c *Config) GetMaxContentSize() int64 {
	if c.MaxContentSize <= 0 {
		return 10 * 1024 * 1024 // 10MB default
	}
	return c.MaxContentSize
}

// GetUserAgent returns the user agent with default.
func (c *Config) GetUserAgent() string {
	if c.UserAgent == "" {
		return "annograph-annotator/1.0"
	}
	return c.UserAgent
}

// DefaultConfig returns default configuration for the annotator processor.
func DefaultConfig() Config {
	inputDefs := []component.PortDefinition{
		{
			Name:        "annotate.in",
			Type:        "jetstream",
			Subject:     "annotate.request.>",
			StreamName:  "ANNOTATE",
			Required:    true,
			Description: "Annotation requests carrying serialized graphs",
		},
	}

	outputDefs := []component.PortDefinition{
		{
			Name:        "annotate.out",
			Type:        "jetstream",
			Subject:     "annotate.result.>",
			StreamName:  "ANNOTATE",
			Required:    true,
			Description: "Annotation results with enriched graphs",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs:  inputDefs,
			Outputs: outputDefs,
		},
		StreamName:          "ANNOTATE",
		ConsumerName:        "annotator",
		ResultSubjectPrefix: "annotate.result.",
		Producer:            "https://apps.annograph.dev/tokenizer",
		FetchTimeout:        "30s",
		MaxContentSize:      10 * 1024 * 1024, // 10MB
		UserAgent:           "annograph-annotator/1.0",
		PersistRuns:         true,
	}
}
