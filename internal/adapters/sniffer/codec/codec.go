// Package codec implements the Frame Codec (spec.md §4.3): parsing a
// minimal radiotap+802.11 management header out of a captured frame, and
// forging the fixed radiotap header and broadcast deauthentication frame
// used for injection.
//
// Byte layouts are translated directly from
// original_source/src/deauth/deauth_wld.c (forge_radiotap,
// forge_broadcast_deauth) rather than built on gopacket's layer
// serializer, because the injected bytes must match the source's
// fixed-width layout exactly (radiotap_len == 12, a literal frame-control
// value, a literal reason code) — gopacket's SerializeLayers recomputes
// lengths and checksums and does not guarantee that byte-for-byte
// reproduction.
package codec

import (
	"errors"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

const (
	// IEEE80211MgmtHdrLen is the fixed-size 802.11 management header:
	// frame control (2) + duration (2) + addr1/addr2/addr3 (6 each) +
	// sequence control (2).
	IEEE80211MgmtHdrLen = 24

	// BeaconFixedLen is the beacon body's fixed prefix before
	// information elements: timestamp (8) + beacon interval (2) +
	// capability info (2).
	BeaconFixedLen = 12

	// MaxSSIDLen is the largest SSID octet length a beacon may carry.
	MaxSSIDLen = 32

	// radiotapForgedLen is the length of the fixed radiotap header
	// ForgeRadiotap writes.
	radiotapForgedLen = 12

	// deauthFrameLen is the total length of a forged deauthentication
	// frame: management header plus a 2-octet reason code.
	deauthFrameLen = IEEE80211MgmtHdrLen + 2

	// fcTypeMgmt and fcSubtypeBeacon/fcSubtypeDeauth are the frame
	// control type/subtype fields for management frames, beacon and
	// deauthentication subtypes respectively (802.11 §9.2.4.1).
	fcTypeMgmt           = 0x00
	fcSubtypeBeacon      = 0x08
	fcSubtypeDeauth      = 0x0C
	tagSSID              = 0
	tagVendorSpecific    = 221
	deauthReasonCode     = 0x0007
)

// frameControlBeacon and frameControlDeauth are the little-endian
// 16-bit frame-control values for Management/Beacon and
// Management/Deauthentication respectively: protocol version 0, in bits
// [1:0]; type in bits [3:2]; subtype in bits [7:4].
var (
	frameControlBeacon = uint16(fcTypeMgmt<<2) | uint16(fcSubtypeBeacon<<4)
	frameControlDeauth = uint16(fcTypeMgmt<<2) | uint16(fcSubtypeDeauth<<4)
)

// ErrNotABeacon is returned by ParseIncoming when the frame decodes
// cleanly but is not a Management/Beacon frame.
var ErrNotABeacon = errors.New("codec: not a beacon frame")

// ErrMalformed is returned by ParseIncoming when the frame is too short
// or contains a truncated information element.
var ErrMalformed = errors.New("codec: malformed frame")

// ParsedBeacon is the result of successfully decoding a beacon frame.
type ParsedBeacon struct {
	BSSID    domain.MAC
	SSID     string
	Location string
}
