package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWithErrorAddsField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromZap(zap.New(core))

	log.WithComponent("lists").WithError(errors.New("boom")).Errorw("save failed", "handle", "Ab12")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["error"] != "boom" {
		t.Errorf("error field = %v, want boom", fields["error"])
	}
	if fields["component"] != "lists" {
		t.Errorf("component field = %v, want lists", fields["component"])
	}
	if fields["handle"] != "Ab12" {
		t.Errorf("handle field = %v, want Ab12", fields["handle"])
	}
}

func TestLogSecurityEventIsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.LogSecurityEvent("invalid_share_token", "10.0.0.1", map[string]interface{}{"reason": "expired"})

	entries := logs.FilterMessage("Security event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 security event, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
}
