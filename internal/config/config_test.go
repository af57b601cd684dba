package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		TargetURL:   "http://localhost:8080/generate",
		Total:       10,
		Concurrency: 10,
		Timeout:     60 * time.Second,
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateIssues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing target", func(c *Config) { c.TargetURL = " " }, "target is required"},
		{"zero total", func(c *Config) { c.Total = 0 }, "total must be >= 1"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency must be >= 1"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout must be > 0"},
		{"body conflict", func(c *Config) {
			c.Body = `{}`
			c.BodyFile = "body.json"
		}, "mutually exclusive"},
		{"output conflict", func(c *Config) {
			c.Dashboard = true
			c.JSONOutput = true
		}, "dashboard and json-output"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
		{"bad protocol", func(c *Config) { c.Tracing.Protocol = "udp" }, "protocol must be"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %q, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	cfg := Config{}

	err := cfg.Validate()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Issues()) < 3 {
		t.Fatalf("issues = %v, want every violation reported", verr.Issues())
	}
}

func TestTracingEnabled(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var tc TracingConfig
	if tc.Enabled() {
		t.Fatal("empty tracing config must be disabled")
	}
	tc.Endpoint = "localhost:4317"
	if !tc.Enabled() {
		t.Fatal("endpoint set but tracing disabled")
	}
}
