package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RPCURL != "https://eth.llamarpc.com" {
		t.Fatalf("rpc default mismatch: %s", cfg.RPCURL)
	}
	if cfg.Transport != "stdio" || cfg.SSEAddr != ":8080" {
		t.Fatalf("transport defaults mismatch: %+v", cfg)
	}
	if cfg.MaxRetries != 3 || cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("retry defaults mismatch: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level default mismatch: %s", cfg.LogLevel)
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("transport", "stdio", "")
	if err := flags.Parse([]string{"--rpc", "http://localhost:8545", "--transport", "sse"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RPCURL != "http://localhost:8545" {
		t.Fatalf("rpc override lost: %s", cfg.RPCURL)
	}
	if cfg.Transport != "sse" {
		t.Fatalf("transport override lost: %s", cfg.Transport)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{RPCURL: "http://localhost:8545", Transport: "stdio"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Transport = "websocket"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown transport")
	}

	cfg = Config{Transport: "stdio"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing rpc")
	}
}
