//go:build linux

package capture

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// rawChannel is the AF_PACKET/SOCK_RAW backend, translated from
// original_source/src/raw_socket/raw_socket.c (rawsock_new/_recv/_send/_close)
// onto golang.org/x/sys/unix's typed wrappers instead of bare syscall numbers.
type rawChannel struct {
	mu      sync.Mutex
	fd      int
	ifIndex int
	closed  bool
}

func openRaw(ifName string, protocol int) (Channel, error) {
	idx, err := interfaceIndex(ifName)
	if err != nil {
		return nil, fmt.Errorf("capture: interface %s not found: %w", ifName, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, htons(protocol))
	if err != nil {
		return nil, fmt.Errorf("capture: socket: %w", err)
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: uint16(htons(protocol)),
		Ifindex:  idx,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("capture: bind %s: %w", ifName, err)
	}

	return &rawChannel{fd: fd, ifIndex: idx}, nil
}

func interfaceIndex(name string) (int, error) {
	ifi, err := unix.IfNametoindex(name)
	if err != nil {
		return 0, err
	}
	return int(ifi), nil
}

// htons converts a host-order 16-bit value to network order, matching
// the C source's htons(protocol) call when binding the socket.
func htons(v int) int {
	return int(uint16(v)>>8 | uint16(v)<<8)
}

// Recv is rawsock_recv translated: a select() wait bounded by deadline,
// then a single recv() call. A zero or negative deadline still polls
// once without blocking (mirrors usec_limit == 0 in the C source).
func (c *rawChannel) Recv(deadline time.Duration) ([]byte, error) {
	c.mu.Lock()
	fd := c.fd
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, domain.ErrSocketClosed
	}

	if deadline < 0 {
		deadline = 0
	}

	fdSet := &unix.FdSet{}
	setFd(fdSet, fd)
	tv := unix.NsecToTimeval(deadline.Nanoseconds())

	n, err := unix.Select(fd+1, fdSet, nil, nil, &tv)
	if err != nil {
		return nil, fmt.Errorf("capture: select: %w", err)
	}
	if n == 0 {
		return nil, ErrTimeout
	}

	buf := make([]byte, MaxFrameLen)
	recvLen, err := unix.Read(fd, buf)
	if err != nil {
		return nil, fmt.Errorf("capture: recv: %w", err)
	}
	if recvLen > MaxFrameLen {
		recvLen = MaxFrameLen
	}
	return buf[:recvLen], nil
}

// Send is rawsock_send translated: retry short writes with an advanced
// buffer pointer until all bytes are consumed.
func (c *rawChannel) Send(frame []byte) error {
	c.mu.Lock()
	fd := c.fd
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return domain.ErrSocketClosed
	}

	for len(frame) > 0 {
		n, err := unix.Write(fd, frame)
		if err != nil {
			return fmt.Errorf("capture: send: %w", err)
		}
		frame = frame[n:]
	}
	return nil
}

// setFd sets fd's bit in an unix.FdSet, replicating the FD_SET macro
// select() needs (x/sys/unix exposes the raw bit array but no helper).
func setFd(set *unix.FdSet, fd int) {
	idx := fd / 64
	bit := uint(fd % 64)
	set.Bits[idx] |= 1 << bit
}

func (c *rawChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Close(c.fd)
}
