package utils

import "testing"

func TestPoolConfigDefaults(t *testing.T) {
	cfg := PostgresPoolConfig{}.withDefaults()
	if cfg.MaxOpenConns <= 0 || cfg.MaxIdleConns <= 0 {
		t.Fatalf("expected positive pool defaults")
	}
	if cfg.PingTimeout <= 0 {
		t.Fatalf("expected ping timeout default")
	}
}

func TestPoolConfigKeepsExplicitValues(t *testing.T) {
	cfg := PostgresPoolConfig{MaxOpenConns: 5}.withDefaults()
	if cfg.MaxOpenConns != 5 {
		t.Fatalf("expected explicit MaxOpenConns to survive, got %d", cfg.MaxOpenConns)
	}
}
