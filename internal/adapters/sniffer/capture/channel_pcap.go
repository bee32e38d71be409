package capture

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/gopacket/pcap"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// pcapChannel is the fallback Raw Packet Channel backend. It is
// selected by Open when the Linux AF_PACKET backend cannot be opened
// (non-Linux build, permission failure, or missing interface).
type pcapChannel struct {
	mu     sync.Mutex
	handle *pcap.Handle
	closed bool
}

// pcapPollInterval bounds each individual pcap read attempt. Unlike the
// raw AF_PACKET backend, gopacket/pcap's read timeout is fixed at
// handle-open time rather than passed per call, so Recv polls in
// pcapPollInterval slices until the caller's deadline elapses.
const pcapPollInterval = 50 * time.Millisecond

func openPcap(ifName string) (Channel, error) {
	handle, err := pcap.OpenLive(ifName, MaxFrameLen, true, pcapPollInterval)
	if err != nil {
		return nil, fmt.Errorf("capture: pcap open %s: %w", ifName, err)
	}
	return &pcapChannel{handle: handle}, nil
}

func (c *pcapChannel) Recv(deadline time.Duration) ([]byte, error) {
	c.mu.Lock()
	handle := c.handle
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, domain.ErrSocketClosed
	}

	expiry := time.Now().Add(deadline)
	for {
		data, _, err := handle.ZeroCopyReadPacketData()
		switch {
		case err == nil:
			if len(data) > MaxFrameLen {
				data = data[:MaxFrameLen]
			}
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		case err == pcap.NextErrorTimeoutExpired:
			if !time.Now().Before(expiry) {
				return nil, ErrTimeout
			}
		default:
			return nil, fmt.Errorf("capture: pcap recv: %w", err)
		}
	}
}

func (c *pcapChannel) Send(frame []byte) error {
	c.mu.Lock()
	handle := c.handle
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return domain.ErrSocketClosed
	}

	if err := handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("capture: pcap send: %w", err)
	}
	return nil
}

func (c *pcapChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.handle.Close()
	return nil
}
