package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("catalog.loaded", map[string]any{"version": "2026.10", "treatments": 16})
	Warn("matching.unknown_budget_range", map[string]any{"budget_range_id": "x"})
	Error("db.ping_failed", map[string]any{"error": errors.New("boom")})
	Debug("matching.complete", nil)

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].Message != "catalog.loaded" {
		t.Fatalf("unexpected first entry %+v", entries[0].Entry)
	}
	ctx := entries[0].ContextMap()
	if ctx["version"] != "2026.10" || ctx["treatments"] != int64(16) {
		t.Fatalf("unexpected fields %v", ctx)
	}
	if entries[2].ContextMap()["error"] != "boom" {
		t.Fatalf("expected error field, got %v", entries[2].ContextMap())
	}
	if entries[3].Level != zapcore.DebugLevel {
		t.Fatalf("expected debug level, got %v", entries[3].Level)
	}
}

func TestSetLoggerNil(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	Info("dropped", map[string]any{"k": "v"})
	if L() == nil {
		t.Fatalf("expected nop logger")
	}
}

func TestInit(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	if err := Init("dev"); err != nil {
		t.Fatalf("init dev: %v", err)
	}
	if err := Init("prod"); err != nil {
		t.Fatalf("init prod: %v", err)
	}
}
