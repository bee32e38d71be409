// Package telemetry exposes the Prometheus counters the probe, deauth,
// and orchestrator packages update as they run, adapted for this
// tool's own events rather than the packet counters a general sniffer
// would track.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BeaconsObserved counts every beacon frame that passes codec
	// decoding and the blacklist filter, per channel.
	BeaconsObserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wiredeauth",
			Name:      "beacons_observed_total",
			Help:      "Total number of beacon frames folded into an inventory",
		},
		[]string{"channel"},
	)

	// BeaconsDeduplicated counts beacons that matched an existing
	// record's BSSID (incremented beacons_seen rather than creating a
	// new record).
	BeaconsDeduplicated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wiredeauth",
			Name:      "beacons_deduplicated_total",
			Help:      "Total number of beacons that matched an already-known BSSID",
		},
		[]string{"channel"},
	)

	// DeauthFramesSent counts successfully transmitted deauthentication
	// frames, per target BSSID.
	DeauthFramesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wiredeauth",
			Name:      "deauth_frames_sent_total",
			Help:      "Total number of deauthentication frames transmitted",
		},
		[]string{"bssid"},
	)

	// DeauthSendFailures counts fatal frame transmission failures.
	DeauthSendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wiredeauth",
			Name:      "deauth_send_failures_total",
			Help:      "Total number of deauthentication frame send failures",
		},
		[]string{"bssid"},
	)

	// ChannelSetFailures counts best-effort channel-switch failures
	// (spec.md §4.2/§7: logged, non-fatal).
	ChannelSetFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wiredeauth",
			Name:      "channel_set_failures_total",
			Help:      "Total number of channel switch attempts that failed",
		},
		[]string{"interface", "channel"},
	)

	once sync.Once
)

// InitMetrics registers every counter with the default Prometheus
// registry. Idempotent: safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			BeaconsObserved,
			BeaconsDeduplicated,
			DeauthFramesSent,
			DeauthSendFailures,
			ChannelSetFailures,
		)
	})
}
