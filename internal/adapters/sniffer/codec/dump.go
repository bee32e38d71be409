package codec

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Dump decodes frame with gopacket's RadioTap/Dot11 layers and renders a
// human-readable summary for cmd/wiredeauth's WIREDEAUTH_DUMP_FRAME_FILE
// diagnostic path. This
// is a read-only, best-effort view: it never feeds the probe/deauth
// path, which decodes with ParseIncoming/ForgeBroadcastDeauth instead
// (see the package doc comment for why those are hand-rolled).
func Dump(frame []byte) string {
	packet := gopacket.NewPacket(frame, layers.LayerTypeRadioTap, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	var b strings.Builder

	if rt, ok := packet.Layer(layers.LayerTypeRadioTap).(*layers.RadioTap); ok {
		fmt.Fprintf(&b, "radiotap freq=%d dBm=%d", rt.ChannelFrequency, rt.DBMAntennaSignal)
	}

	dot11, ok := packet.Layer(layers.LayerTypeDot11).(*layers.Dot11)
	if !ok {
		b.WriteString(" | no 802.11 header")
		return b.String()
	}

	fmt.Fprintf(&b, " | type=%s bssid=%s addr1=%s addr2=%s",
		dot11.Type, dot11.Address3, dot11.Address1, dot11.Address2)

	if dot11.Type == layers.Dot11TypeMgmtDeauthentication {
		if deauth, ok := packet.Layer(layers.LayerTypeDot11MgmtDeauthentication).(*layers.Dot11MgmtDeauthentication); ok {
			fmt.Fprintf(&b, " | deauth reason=%d", deauth.Reason)
		}
	}

	return b.String()
}
