package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

var (
	attrDBOperation = attribute.Key("db.operation")
	attrDBTable     = attribute.Key("db.table")
	attrDBState     = attribute.Key("db.pool.state")
	attrDBOutcome   = attribute.Key("db.outcome")
)

// DBMetrics is a gorm plugin recording query counts and latency, plus
// connection pool gauges observed at collection time
type DBMetrics struct {
	queries  metric.Int64Counter
	duration metric.Float64Histogram
	pool     metric.Int64ObservableGauge
	reg      metric.Registration
}

// NewDBMetrics creates the instruments on meter. The pool gauge reads
// sqlDB.Stats() on every collection.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB) (*DBMetrics, error) {
	queries, err := meter.Int64Counter("db_query_total",
		metric.WithDescription("Database statements executed"),
		metric.WithUnit("{query}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_total: %w", err)
	}
	duration, err := meter.Float64Histogram("db_query_duration_seconds",
		metric.WithDescription("Database statement latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DBDurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_duration_seconds: %w", err)
	}
	pool, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create db_pool_connections: %w", err)
	}

	m := &DBMetrics{queries: queries, duration: duration, pool: pool}
	if sqlDB != nil {
		m.reg, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			stats := sqlDB.Stats()
			o.ObserveInt64(pool, int64(stats.Idle), metric.WithAttributes(attrDBState.String("idle")))
			o.ObserveInt64(pool, int64(stats.InUse), metric.WithAttributes(attrDBState.String("in_use")))
			o.ObserveInt64(pool, int64(stats.MaxOpenConnections), metric.WithAttributes(attrDBState.String("max")))
			return nil
		}, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to register pool callback: %w", err)
		}
	}
	return m, nil
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string {
	return "db_metrics"
}

// Initialize implements gorm.Plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	return registerAround(db, "db_metrics", markQueryStart, m.record)
}

// Close stops observing the pool
func (m *DBMetrics) Close() error {
	if m.reg == nil {
		return nil
	}
	return m.reg.Unregister()
}

func (m *DBMetrics) record(db *gorm.DB) {
	elapsed, ok := queryElapsed(db)
	if !ok {
		return
	}
	ctx := db.Statement.Context
	outcome := "ok"
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		outcome = "error"
	}
	table := db.Statement.Table
	if table == "" {
		table = "unknown"
	}
	attrs := metric.WithAttributes(
		attrDBOperation.String(operationOf(db.Statement.SQL.String())),
		attrDBTable.String(table),
		attrDBOutcome.String(outcome),
	)
	m.queries.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// operationOf returns the leading SQL keyword in upper case
func operationOf(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	switch op := strings.ToUpper(fields[0]); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return op
	default:
		return "OTHER"
	}
}
