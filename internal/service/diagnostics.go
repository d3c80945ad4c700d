package service

import (
	"context"
	"fmt"

	"github.com/ecommerce-api/internal/logger"
	"github.com/ecommerce-api/internal/repo"
	"go.uber.org/zap"
)

const (
	StatusConnected    = "Connected"
	StatusNotConnected = "Not Connected"

	maxListedCollections = 10
	maxStatusDetail      = 50
)

// DiagnosticsReport is the /test payload. Every problem is folded into the
// Database string; nothing here is an error.
type DiagnosticsReport struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

type Diagnostics struct {
	store          repo.DocumentStore
	databaseURLSet bool
}

func NewDiagnostics(store repo.DocumentStore, databaseURL string) *Diagnostics {
	return &Diagnostics{store: store, databaseURLSet: databaseURL != ""}
}

func (d *Diagnostics) Report(ctx context.Context) (report DiagnosticsReport) {
	report = DiagnosticsReport{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: StatusNotConnected,
		Collections:      []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("diagnostics panicked", zap.Any("panic", r))
			report.Database = "❌ Error: " + Truncate(fmt.Sprint(r), maxStatusDetail)
		}
	}()

	if d.store == nil {
		report.Database = "⚠️  Available but not initialized"
		return report
	}

	urlStatus := "❌ Not Set"
	if d.databaseURLSet {
		urlStatus = "✅ Set"
	}
	report.DatabaseURL = &urlStatus

	name := d.store.Name()
	if name == "" {
		name = "✅ Connected"
	}
	report.DatabaseName = &name
	report.Database = "✅ Available"

	if err := d.store.Ping(ctx); err != nil {
		report.Database = "❌ Error: " + Truncate(err.Error(), maxStatusDetail)
		return report
	}
	report.ConnectionStatus = StatusConnected

	names, err := d.store.ListCollectionNames(ctx)
	if err != nil {
		report.Database = "⚠️  Connected but Error: " + Truncate(err.Error(), maxStatusDetail)
		return report
	}
	if len(names) > maxListedCollections {
		names = names[:maxListedCollections]
	}
	if names != nil {
		report.Collections = names
	}
	report.Database = "✅ Connected & Working"
	return report
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
