package codec

import (
	"encoding/binary"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// ciscoOUI and ciscoSystemNameType identify the Cisco vendor-specific
// information element sub-field that carries the access point's
// configured system name, surfaced here as AccessPointRecord.Location.
var ciscoOUI = [3]byte{0x00, 0x40, 0x96}

const ciscoSystemNameType = 0x03

// ParseIncoming decodes a captured radiotap+802.11 frame.
//
// It returns ErrNotABeacon if the frame's frame-control field does not
// match Management/Beacon, and ErrMalformed if the frame is shorter
// than the radiotap header plus the fixed management+beacon prefix, or
// contains a truncated information element.
func ParseIncoming(frame []byte) (ParsedBeacon, error) {
	if len(frame) < 4 {
		return ParsedBeacon{}, ErrMalformed
	}

	radiotapLen := int(binary.LittleEndian.Uint16(frame[2:4]))
	if len(frame) < radiotapLen+IEEE80211MgmtHdrLen+BeaconFixedLen {
		return ParsedBeacon{}, ErrMalformed
	}

	mgmt := frame[radiotapLen:]
	frameControl := binary.LittleEndian.Uint16(mgmt[0:2])
	if frameControl != frameControlBeacon {
		return ParsedBeacon{}, ErrNotABeacon
	}

	var bssid domain.MAC
	copy(bssid[:], mgmt[16:22]) // addr3 == BSSID in a beacon

	body := mgmt[IEEE80211MgmtHdrLen:]
	variable := body[BeaconFixedLen:]

	beacon := ParsedBeacon{BSSID: bssid}
	if err := walkIEs(variable, func(tag int, value []byte) {
		switch {
		case tag == tagSSID:
			n := len(value)
			if n > MaxSSIDLen {
				n = MaxSSIDLen
			}
			beacon.SSID = string(value[:n])
		case tag == tagVendorSpecific && isCiscoSystemName(value):
			beacon.Location = string(value[4:])
		}
	}); err != nil {
		return ParsedBeacon{}, err
	}

	return beacon, nil
}

// isCiscoSystemName reports whether a vendor-specific IE value carries
// the Cisco OUI followed by the system-name sub-type byte.
func isCiscoSystemName(value []byte) bool {
	return len(value) >= 4 &&
		value[0] == ciscoOUI[0] && value[1] == ciscoOUI[1] && value[2] == ciscoOUI[2] &&
		value[3] == ciscoSystemNameType
}

// walkIEs iterates the (tag, length, value) records in data, invoking
// fn for each one. It returns ErrMalformed if a record's declared
// length runs past the end of data.
func walkIEs(data []byte, fn func(tag int, value []byte)) error {
	offset := 0
	for offset < len(data) {
		if offset+2 > len(data) {
			return ErrMalformed
		}
		tag := int(data[offset])
		length := int(data[offset+1])
		offset += 2

		if offset+length > len(data) {
			return ErrMalformed
		}
		fn(tag, data[offset:offset+length])
		offset += length
	}
	return nil
}
