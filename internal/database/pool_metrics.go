package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/pkg/metrics"
)

// ReportPoolStats publishes connection pool gauges every interval until ctx is done.
func ReportPoolStats(ctx context.Context, db *gorm.DB, interval time.Duration) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	name := db.Dialector.Name()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stats := sqlDB.Stats()
		metrics.DBOpenConns.WithLabelValues(name).Set(float64(stats.OpenConnections))
		metrics.DBIdleConns.WithLabelValues(name).Set(float64(stats.Idle))
		metrics.DBInUseConns.WithLabelValues(name).Set(float64(stats.InUse))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
