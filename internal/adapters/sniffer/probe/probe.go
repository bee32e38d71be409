// Package probe implements the Probe Engine (spec.md §4.5): given a
// channel and time/count budgets, it reads frames from the Raw Packet
// Channel, decodes and filters them, and folds survivors into the
// current channel's AP inventory.
package probe

import (
	"errors"
	"strconv"
	"time"

	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/capture"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/codec"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
	"github.com/bssid-zero/wiredeauth/internal/telemetry"
)

// Budget bounds a single gather call: AddrLimit caps the number of
// beacons folded into the inventory (0 = uncapped), TimeLimit caps the
// wall-clock duration of the probe window (0 = uncapped). At least one
// must be positive — validated by the orchestrator's configuration step,
// not here.
type Budget struct {
	AddrLimit int
	TimeLimit time.Duration
}

// unboundedRecvSlice is the per-Recv deadline used when TimeLimit is 0
// (uncapped): Recv still needs a finite wait so the loop keeps polling
// for AddrLimit, rather than blocking the kernel socket read forever.
const unboundedRecvSlice = time.Second

// Gather reads frames from ch until either budget is exhausted,
// decoding each one with codec.ParseIncoming and folding surviving
// beacons into inventory via AppendUniqueOrIncrement. Frames that fail
// to parse, are not beacons, or whose BSSID is blacklisted are silently
// skipped and do not count against AddrLimit (spec.md §7).
//
// Gather never blocks indefinitely: every Recv call carries a deadline
// derived from the remaining time budget, or unboundedRecvSlice when
// TimeLimit is 0. A Recv error other than
// capture.ErrTimeout is fatal and returned to the caller.
func Gather(ch capture.Channel, inventory *domain.AccessPointInventory, channel int, blacklist domain.Blacklist, budget Budget) error {
	expiry := time.Now().Add(budget.TimeLimit)
	recorded := 0

	for {
		if budget.AddrLimit > 0 && recorded >= budget.AddrLimit {
			return nil
		}

		remaining := unboundedRecvSlice
		if budget.TimeLimit > 0 {
			remaining = time.Until(expiry)
			if remaining <= 0 {
				return nil
			}
		}

		frame, err := ch.Recv(remaining)
		if err != nil {
			if errors.Is(err, capture.ErrTimeout) {
				continue
			}
			return err
		}

		beacon, err := codec.ParseIncoming(frame)
		if err != nil {
			continue
		}

		if blacklist.Contains(beacon.BSSID) {
			continue
		}

		chanLabel := strconv.Itoa(channel)
		telemetry.BeaconsObserved.WithLabelValues(chanLabel).Inc()
		if created := inventory.AppendUniqueOrIncrement(beacon.BSSID, channel, beacon.SSID, beacon.Location); !created {
			telemetry.BeaconsDeduplicated.WithLabelValues(chanLabel).Inc()
		}
		recorded++
	}
}
