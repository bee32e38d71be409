// Package capture implements the Raw Packet Channel (spec.md §4.1): a
// link-layer socket bound to a named interface that sends whole frames
// and receives with a microsecond deadline. It does not interpret frames.
package capture

import (
	"errors"
	"time"
)

// MaxFrameLen is the largest frame recv will return; longer frames are
// truncated, matching spec.md §4.1.
const MaxFrameLen = 2048

// ErrTimeout is returned by Recv when no frame arrives before the deadline.
var ErrTimeout = errors.New("capture: recv timeout")

// Channel is the Raw Packet Channel contract. Implementations are
// exclusively owned by their caller once Open succeeds; Close is safe
// to call more than once.
type Channel interface {
	// Recv waits up to deadline for a frame and returns its bytes
	// (truncated to MaxFrameLen). Returns ErrTimeout if the deadline
	// elapses first; any other error is fatal to the channel.
	Recv(deadline time.Duration) ([]byte, error)

	// Send transmits one complete frame, retrying short writes
	// internally. Any error is fatal to the channel.
	Send(frame []byte) error

	// Close releases the underlying socket/handle. Safe to call on a
	// partially-initialized or already-closed Channel.
	Close() error
}

// Open binds a Channel to ifName, preferring the raw AF_PACKET backend
// and falling back to a pcap-backed handle when the raw backend cannot
// be opened (non-Linux build, or a permission/bind failure).
// protocol is the Ethernet protocol number to bind to; pass
// ProtocolAll to receive every link-layer frame.
func Open(ifName string, protocol int) (Channel, error) {
	ch, err := openRaw(ifName, protocol)
	if err == nil {
		return ch, nil
	}
	rawErr := err

	pcapCh, pcapErr := openPcap(ifName)
	if pcapErr == nil {
		return pcapCh, nil
	}

	return nil, errors.Join(rawErr, pcapErr)
}

// ProtocolAll requests delivery of all link-layer protocols, the
// default named in spec.md §4.1.
const ProtocolAll = 0x0003 // ETH_P_ALL
