package monitoring

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	marketplaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_operations_total",
			Help: "Total marketplace operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	listedTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_listed_tickets",
			Help: "Number of tickets currently listed for resale",
		},
	)

	lineageWalkDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketplace_lineage_walk_depth",
			Help:    "Ancestor hops visited while resolving a ticket's original price",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	purchaseVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_purchase_volume_total",
			Help: "Total funds moved through completed purchases",
		},
	)

	topUpVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_topup_volume_total",
			Help: "Total funds credited through top-ups",
		},
	)
)

func TrackOperation(operation, status string) {
	marketplaceOperations.WithLabelValues(operation, status).Inc()
}

func TrackLineageWalk(depth int) {
	lineageWalkDepth.Observe(float64(depth))
}

func TrackPurchase(amount int64) {
	purchaseVolume.Add(float64(amount))
}

func TrackTopUp(amount int64) {
	topUpVolume.Add(float64(amount))
}

// Monitor periodically samples marketplace state into gauges.
type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	m := &Monitor{redis: redisClient}
	go m.collectMetrics()
	return m
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.sampleListings()
	}
}

// sampleListings reads the cached resale listing and records its size.
// A cache miss is not an error, the gauge simply keeps its last value
// until the next hit.
func (m *Monitor) sampleListings() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := m.redis.Get(ctx, "listing:resale").Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("monitor: failed to read listing cache", "error", err)
		}
		return
	}

	var listings []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &listings); err != nil {
		slog.Warn("monitor: corrupt listing cache", "error", err)
		return
	}
	listedTickets.Set(float64(len(listings)))
}
