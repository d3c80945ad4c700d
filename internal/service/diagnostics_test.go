package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ecommerce-api/internal/testutil"
)

func TestDiagnosticsNoStore(t *testing.T) {
	report := NewDiagnostics(nil, "").Report(context.Background())

	if report.Backend != "✅ Running" {
		t.Errorf("unexpected backend %q", report.Backend)
	}
	if report.ConnectionStatus != StatusNotConnected {
		t.Errorf("expected %s, got %s", StatusNotConnected, report.ConnectionStatus)
	}
	if !strings.Contains(report.Database, "not initialized") {
		t.Errorf("unexpected database status %q", report.Database)
	}
	if report.DatabaseURL != nil {
		t.Errorf("expected no database_url without a store, got %v", *report.DatabaseURL)
	}
	if report.DatabaseName != nil {
		t.Errorf("expected no database name, got %v", *report.DatabaseName)
	}
	if report.Collections == nil || len(report.Collections) != 0 {
		t.Errorf("expected empty collections, got %v", report.Collections)
	}
}

func TestDiagnosticsURLNotSet(t *testing.T) {
	report := NewDiagnostics(testutil.NewMemoryStore(), "").Report(context.Background())

	if report.DatabaseURL == nil || *report.DatabaseURL != "❌ Not Set" {
		t.Errorf("unexpected database_url %v", report.DatabaseURL)
	}
}

func TestDiagnosticsUnreachable(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.PingErr = errors.New("server selection error: context deadline exceeded, current topology: { Type: Unknown }")

	report := NewDiagnostics(store, "mongodb://db:27017").Report(context.Background())

	if report.ConnectionStatus != StatusNotConnected {
		t.Errorf("expected %s, got %s", StatusNotConnected, report.ConnectionStatus)
	}
	if !strings.HasPrefix(report.Database, "❌ Error: ") {
		t.Errorf("unexpected database status %q", report.Database)
	}
	detail := strings.TrimPrefix(report.Database, "❌ Error: ")
	if len([]rune(detail)) > 50 {
		t.Errorf("expected detail truncated to 50 runes, got %d", len([]rune(detail)))
	}
	if *report.DatabaseURL != "✅ Set" {
		t.Errorf("unexpected database_url %s", *report.DatabaseURL)
	}
}

func TestDiagnosticsListFails(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.ListErr = errors.New("not authorized on shop to execute command")

	report := NewDiagnostics(store, "x").Report(context.Background())

	if report.ConnectionStatus != StatusConnected {
		t.Errorf("expected %s, got %s", StatusConnected, report.ConnectionStatus)
	}
	if !strings.HasPrefix(report.Database, "⚠️  Connected but Error: ") {
		t.Errorf("unexpected database status %q", report.Database)
	}
}

func TestDiagnosticsHealthy(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.DBName = "shop"
	for i := 0; i < 12; i++ {
		if _, err := store.CreateDocument(context.Background(), fmt.Sprintf("c%d", i), map[string]any{"n": i}); err != nil {
			t.Fatal(err)
		}
	}

	report := NewDiagnostics(store, "x").Report(context.Background())

	if report.Database != "✅ Connected & Working" {
		t.Errorf("unexpected database status %q", report.Database)
	}
	if report.DatabaseName == nil || *report.DatabaseName != "shop" {
		t.Errorf("unexpected database name %v", report.DatabaseName)
	}
	if len(report.Collections) != 10 {
		t.Errorf("expected collections capped at 10, got %d", len(report.Collections))
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("expected hé, got %s", got)
	}
	if got := Truncate("ok", 10); got != "ok" {
		t.Errorf("expected ok, got %s", got)
	}
}
