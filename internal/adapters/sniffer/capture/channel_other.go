//go:build !linux

package capture

import "fmt"

// openRaw is unavailable outside Linux; Open falls back to the pcap
// backend.
func openRaw(ifName string, protocol int) (Channel, error) {
	return nil, fmt.Errorf("capture: raw AF_PACKET sockets are only supported on linux")
}
