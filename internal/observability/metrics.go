package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthAttempts counts login attempts by result.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_auth_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	// AuthzDenials counts operations refused by the authorization guard.
	AuthzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_authz_denials_total",
		Help: "Operations refused by the authorization guard",
	}, []string{"operation"})

	// MessageEvents counts message creations and deletions.
	MessageEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_message_events_total",
		Help: "Message lifecycle events",
	}, []string{"event"})

	// EdgeEvents counts follow and like edge changes.
	EdgeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_edge_events_total",
		Help: "Follow and like edge changes",
	}, []string{"edge", "action"})
)

const queryStartKey = "warbler:query_start"

// RegisterQueryMetrics hooks GORM callbacks so every query feeds
// DatabaseQueryLatency.
func RegisterQueryMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("metrics:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:after_create", after("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("metrics:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:after_query", after("query")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:after_update", after("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("delete")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("metrics:after_raw", after("raw"))
}
