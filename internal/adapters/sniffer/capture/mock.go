package capture

import (
	"sync"
	"time"
)

// MockChannel is a Channel test double: it queues frames to hand back
// from Recv and records every frame passed to Send, without touching a
// real socket.
type MockChannel struct {
	mu sync.Mutex

	inbox   [][]byte
	inboxAt int

	sent     [][]byte
	sendErrs map[int]error // index (0-based, across all Send calls) -> error to return instead of appending
	sendN    int

	closed bool
}

// NewMockChannel returns an empty MockChannel.
func NewMockChannel() *MockChannel {
	return &MockChannel{sendErrs: make(map[int]error)}
}

// QueueFrame appends a frame that a future Recv call will return, in order.
func (m *MockChannel) QueueFrame(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, append([]byte(nil), frame...))
}

// FailSendAt makes the (1-indexed) n-th Send call return err instead of
// recording the frame — used to exercise spec.md §8 scenario S6.
func (m *MockChannel) FailSendAt(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErrs[n-1] = err
}

// Recv returns the next queued frame, or ErrTimeout if the inbox is empty.
func (m *MockChannel) Recv(deadline time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inboxAt >= len(m.inbox) {
		return nil, ErrTimeout
	}
	frame := m.inbox[m.inboxAt]
	m.inboxAt++
	return frame, nil
}

// Send records frame, or returns the error configured via FailSendAt
// for this call index.
func (m *MockChannel) Send(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.sendN
	m.sendN++
	if err, ok := m.sendErrs[idx]; ok {
		return err
	}
	m.sent = append(m.sent, append([]byte(nil), frame...))
	return nil
}

// SentFrames returns a copy of every frame successfully sent so far.
func (m *MockChannel) SentFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockChannel) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
