package octree

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	octreeNodeInserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_node_inserts",
		Help: "The number of node insertions and relocations.",
	})

	octreeNodeRemoves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_node_removes",
		Help: "The number of node removals.",
	})

	octreeNodeReinserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_node_reinserts",
		Help: "The number of queued nodes processed by update drains.",
	})

	octreeTrackedNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octree_tracked_nodes",
		Help: "The number of nodes currently tracked by the octree.",
	})

	octreeLiveOctants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octree_live_octants",
		Help: "The number of allocated octants, root included.",
	})

	octreeUpdateQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octree_update_queue_length",
		Help: "The number of nodes waiting for reinsertion.",
	})

	octreeVolumeQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_volume_queries",
		Help: "The number of volume queries served.",
	})

	octreeRaycasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_raycasts",
		Help: "The number of raycast queries served.",
	})

	octreeUpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "octree_update_duration_seconds",
		Help: "The time to drain the update queue.",
	})
)

func instrumentNodeInsert() {
	octreeNodeInserts.Inc()
}

func instrumentNodeRemove() {
	octreeNodeRemoves.Inc()
}

func instrumentNodeReinsert() {
	octreeNodeReinserts.Inc()
}

func instrumentTrackedNodes(n int) {
	octreeTrackedNodes.Set(float64(n))
}

func instrumentLiveOctants(n int) {
	octreeLiveOctants.Set(float64(n))
}

func instrumentQueueLength(n int) {
	octreeUpdateQueueLength.Set(float64(n))
}

func instrumentVolumeQuery() {
	octreeVolumeQueries.Inc()
}

func instrumentRaycast() {
	octreeRaycasts.Inc()
}

func instrumentUpdateDuration(d time.Duration) {
	octreeUpdateDuration.Observe(d.Seconds())
}
