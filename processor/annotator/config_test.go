package annotator

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.StreamName != "ANNOTATE" {
		t.Errorf("expected stream ANNOTATE, got %s", cfg.StreamName)
	}
	if cfg.ConsumerName != "annotator" {
		t.Errorf("expected consumer annotator, got %s", cfg.ConsumerName)
	}
	if cfg.Ports == nil || len(cfg.Ports.Inputs) != 1 || len(cfg.Ports.Outputs) != 1 {
		t.Error("expected one input and one output port")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing stream name",
			modify:  func(c *Config) { c.StreamName = "" },
			wantErr: true,
		},
		{
			name:    "missing consumer name",
			modify:  func(c *Config) { c.ConsumerName = "" },
			wantErr: true,
		},
		{
			name:    "missing result subject prefix",
			modify:  func(c *Config) { c.ResultSubjectPrefix = "" },
			wantErr: true,
		},
		{
			name:    "missing producer",
			modify:  func(c *Config) { c.Producer = "" },
			wantErr: true,
		},
		{
			name:    "bad fetch timeout",
			modify:  func(c *Config) { c.FetchTimeout = "not-a-duration" },
			wantErr: true,
		},
		{
			name:    "negative content size",
			modify:  func(c *Config) { c.MaxContentSize = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigGetters(t *testing.T) {
	cfg := Config{}

	if cfg.GetFetchTimeout() != 30*time.Second {
		t.Errorf("expected default fetch timeout 30s, got %v", cfg.GetFetchTimeout())
	}
	if cfg.GetMaxContentSize() != 10*1024*1024 {
		t.Errorf("expected default max content size 10MB, got %d", cfg.GetMaxContentSize())
	}
	if cfg.GetUserAgent() != "annograph-annotator/1.0" {
		t.Errorf("unexpected default user agent: %s", cfg.GetUserAgent())
	}

	cfg.FetchTimeout = "5s"
	if cfg.GetFetchTimeout() != 5*time.Second {
		t.Errorf("expected fetch timeout 5s, got %v", cfg.GetFetchTimeout())
	}
}
