package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheRequests counts pricing cache lookups by cache name and result (hit, miss, error)
var CacheRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Pricing cache lookups by cache and result",
	},
	[]string{"cache", "result"},
)

// CatalogWrites counts successful catalog commands by entity and operation
var CatalogWrites = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_writes_total",
		Help: "Successful catalog write operations",
	},
	[]string{"entity", "op"},
)

// CircuitBreakerState reports the Redis circuit breaker state (0 closed, 1 half-open, 2 open)
var CircuitBreakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "catalog_circuit_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
	},
	[]string{"component"},
)

// Database connection pool metrics
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
		[]string{"db"},
	)

	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
		[]string{"db"},
	)

	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_db_in_use_connections",
			Help: "Number of in-use connections in the DB pool",
		},
		[]string{"db"},
	)
)

func init() {
	prometheus.MustRegister(CacheRequests, CatalogWrites, CircuitBreakerState)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}
