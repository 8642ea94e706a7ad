package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.History != "inmem" {
		t.Fatalf("History = %q", cfg.History)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.TerminalGrace != 2*time.Second {
		t.Fatalf("TerminalGrace = %v", cfg.TerminalGrace)
	}
	if cfg.MaxConcurrent != 0 {
		t.Fatalf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.FetchTimeout != 0 {
		t.Fatalf("FetchTimeout = %v", cfg.FetchTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TUNEGRAB_ADDR", ":9090")
	t.Setenv("TUNEGRAB_HISTORY", "postgres")
	t.Setenv("TUNEGRAB_POLL_INTERVAL_MS", "100")
	t.Setenv("TUNEGRAB_MAX_CONCURRENT", "4")
	t.Setenv("TUNEGRAB_FETCH_TIMEOUT_MS", "30000")

	cfg := FromEnv()
	if cfg.Addr != ":9090" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.History != "postgres" {
		t.Fatalf("History = %q", cfg.History)
	}
	if cfg.PollInterval != 100*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.MaxConcurrent != 4 {
		t.Fatalf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("FetchTimeout = %v", cfg.FetchTimeout)
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TUNEGRAB_MAX_CONCURRENT", "lots")
	t.Setenv("TUNEGRAB_POLL_INTERVAL_MS", "-5")

	cfg := FromEnv()
	if cfg.MaxConcurrent != 0 {
		t.Fatalf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
}
