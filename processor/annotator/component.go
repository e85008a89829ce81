package annotator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/annograph/analysis/tokenizer"
	"github.com/c360studio/annograph/graph"
	"github.com/c360studio/annograph/pipeline"
	"github.com/c360studio/annograph/resolve"
	"github.com/c360studio/annograph/storage"
)

// annotatorSchema defines the configuration schema.
var annotatorSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Component implements the annotator processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	platform   component.PlatformMeta
	runner     *pipeline.Runner
	store      *storage.Store

	// Lifecycle management
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup // Tracks running goroutines for graceful shutdown

	// Metrics
	runsCompleted  atomic.Int64
	annotations    atomic.Int64
	errors         atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// NewComponent creates a new annotator processor component.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Use default config if ports not set
	if config.Ports == nil {
		config = DefaultConfig()
		// Re-unmarshal to get user-provided values
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Component{
		name:       "annotator",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		platform:   deps.Platform,
	}

	return c, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins processing annotation requests.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	// Mark as starting immediately to prevent concurrent starts
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	// Create resolver and runner
	resolver := resolve.New(resolve.Options{
		Timeout:        c.config.GetFetchTimeout(),
		MaxContentSize: c.config.GetMaxContentSize(),
		UserAgent:      c.config.GetUserAgent(),
		AllowInsecure:  c.config.AllowInsecure,
	})

	runner, err := pipeline.NewRunner(pipeline.Config{
		Producer: c.config.Producer,
		Analyzer: tokenizer.New(),
		Resolver: resolver,
	})
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("create runner: %w", err)
	}
	c.runner = runner

	// Create run store if persistence is enabled
	if c.config.PersistRuns {
		js, err := c.natsClient.JetStream()
		if err != nil {
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return fmt.Errorf("get JetStream context: %w", err)
		}
		store, err := storage.NewStore(ctx, js)
		if err != nil {
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return fmt.Errorf("create store: %w", err)
		}
		c.store = store
	}

	// Set up consumer for annotation requests
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	// Start consumer in background with WaitGroup tracking
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consumeMessages(runCtx)
	}()

	c.logger.Info("Annotator started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"producer", c.config.Producer)

	return nil
}

// consumeMessages processes incoming annotation requests.
func (c *Component) consumeMessages(ctx context.Context) {
	js, err := c.natsClient.JetStream()
	if err != nil {
		c.logger.Error("Failed to get JetStream context", "error", err)
		return
	}

	// Get or create consumer
	consumer, err := js.Consumer(ctx, c.config.StreamName, c.config.ConsumerName)
	if err != nil {
		c.logger.Error("Failed to get consumer", "error", err, "stream", c.config.StreamName, "consumer", c.config.ConsumerName)
		return
	}

	c.logger.Info("Consumer connected", "stream", c.config.StreamName, "consumer", c.config.ConsumerName)

	// Consume messages
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Fetch next message with timeout
		msgs, err := consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue // Timeout, try again
		}

		for msg := range msgs.Messages() {
			select {
			case <-ctx.Done():
				// NAK the current message so it can be redelivered
				_ = msg.Nak()
				// Drain remaining messages from this batch
				for remaining := range msgs.Messages() {
					_ = remaining.Nak()
				}
				return
			default:
				c.handleMessage(ctx, msg)
			}
		}
	}
}

// handleMessage processes a single annotation request.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	c.updateLastActivity()

	// Parse request
	var req AnnotateRequest
	if err := json.Unmarshal(msg.Data(), &req); err != nil {
		c.logger.Warn("Failed to parse annotation request", "error", err)
		c.errors.Add(1)
		_ = msg.Nak()
		return
	}
	if err := req.Validate(); err != nil {
		c.logger.Warn("Invalid annotation request", "error", err)
		c.errors.Add(1)
		// A malformed request will never succeed on redelivery
		_ = msg.Ack()
		return
	}

	c.logger.Info("Processing annotation request", "request_id", req.RequestID)

	result := c.annotate(ctx, &req)
	if result.Error != "" {
		c.errors.Add(1)
		metricRunErrors.Inc()
	} else {
		c.runsCompleted.Add(1)
		c.annotations.Add(int64(result.Annotations))
	}

	// Publish result keyed by request ID
	if err := c.publishResult(ctx, result); err != nil {
		c.logger.Error("Failed to publish annotation result", "request_id", req.RequestID, "error", err)
		c.errors.Add(1)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()

	c.logger.Info("Annotation request processed",
		"request_id", req.RequestID,
		"views", len(result.Views),
		"annotations", result.Annotations,
		"diagnostics", len(result.Diagnostics))
}

// annotate runs the pipeline over the request graph and builds the result.
func (c *Component) annotate(ctx context.Context, req *AnnotateRequest) *AnnotateResult {
	start := time.Now()

	g, err := graph.Parse(req.Graph)
	if err != nil {
		return &AnnotateResult{RequestID: req.RequestID, Error: err.Error()}
	}

	runResult, err := c.runner.Run(ctx, g)
	if err != nil {
		return &AnnotateResult{RequestID: req.RequestID, Error: err.Error()}
	}

	serialized, err := g.Serialize()
	if err != nil {
		return &AnnotateResult{RequestID: req.RequestID, Error: err.Error()}
	}

	metricRunsTotal.Inc()
	metricAnnotationsTotal.Add(float64(runResult.Annotations))
	metricUnreadableDocs.Add(float64(len(runResult.Diagnostics)))
	metricRunDuration.Observe(time.Since(start).Seconds())

	// Persist the annotated graph and run record when storage is configured
	if c.store != nil {
		if _, err := c.store.PutGraph(ctx, req.RequestID, serialized); err != nil {
			c.logger.Warn("Failed to persist graph", "request_id", req.RequestID, "error", err)
		}
		record := &storage.RunRecord{
			GraphID:     req.RequestID,
			Producer:    c.config.Producer,
			Views:       runResult.NewViews,
			Annotations: runResult.Annotations,
			Diagnostics: runResult.Diagnostics,
		}
		if _, err := c.store.CreateRun(ctx, record); err != nil {
			c.logger.Warn("Failed to persist run record", "request_id", req.RequestID, "error", err)
		}
	}

	return &AnnotateResult{
		RequestID:   req.RequestID,
		Graph:       serialized,
		Views:       runResult.NewViews,
		Annotations: runResult.Annotations,
		Diagnostics: runResult.Diagnostics,
	}
}

// publishResult wraps an AnnotateResult and publishes it to the result subject.
func (c *Component) publishResult(ctx context.Context, result *AnnotateResult) error {
	msg := message.NewBaseMessage(AnnotateResultType, result, "annograph")
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal result message: %w", err)
	}
	subject := c.config.ResultSubjectPrefix + result.RequestID
	return c.natsClient.PublishToStream(ctx, subject, data)
}

// updateLastActivity safely updates the last activity timestamp.
func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

// getLastActivity safely retrieves the last activity timestamp.
func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}

// Stop gracefully stops the component within the given timeout.
func (c *Component) Stop(timeout time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	// Wait for goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		// Graceful shutdown completed
	case <-time.After(timeout):
		err = fmt.Errorf("stop timed out after %v", timeout)
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	c.logger.Info("Annotator stopped",
		"runs_completed", c.runsCompleted.Load(),
		"annotations", c.annotations.Load(),
		"errors", c.errors.Load())

	return err
}

// Discoverable interface implementation

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "annotator",
		Type:        "processor",
		Description: "Document graph annotator producing token views",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return annotatorSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.errors.Load()),
		Uptime:     time.Since(startTime),
		Status:     c.getStatusString(running),
	}
}

// getStatusString returns a status string based on running state.
func (c *Component) getStatusString(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}
