package probe_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/capture"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/codec"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/probe"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

func beaconFrame(bssid domain.MAC, ssid string) []byte {
	var buf []byte
	buf = append(buf, 0x00, 0x00, 0x0C, 0x00, 0x04, 0x80, 0x00, 0x00, 0x02, 0x00, 0x18, 0x00)

	mgmt := make([]byte, codec.IEEE80211MgmtHdrLen)
	mgmt[0], mgmt[1] = 0x80, 0x00
	copy(mgmt[4:10], domain.Broadcast[:])
	copy(mgmt[10:16], bssid[:])
	copy(mgmt[16:22], bssid[:])
	buf = append(buf, mgmt...)

	buf = append(buf, make([]byte, codec.BeaconFixedLen)...)
	buf = append(buf, 0, byte(len(ssid)))
	buf = append(buf, []byte(ssid)...)
	return buf
}

var bssidA = domain.MAC{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
var bssidB = domain.MAC{0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB}

// TestGather_DedupCounter exercises scenario S1: four beacons {A,A,B,A}
// collapse into two records, A with beacons_seen=3, B with
// beacons_seen=1, insertion order [A, B].
func TestGather_DedupCounter(t *testing.T) {
	ch := capture.NewMockChannel()
	for _, bssid := range []domain.MAC{bssidA, bssidA, bssidB, bssidA} {
		ch.QueueFrame(beaconFrame(bssid, "X"))
	}

	inv := domain.NewAccessPointInventory()
	err := probe.Gather(ch, inv, 6, nil, probe.Budget{AddrLimit: 4})
	require.NoError(t, err)

	require.Equal(t, 2, inv.Len())
	var seenA, seenB int
	var order []domain.MAC
	inv.ForEach(func(rec *domain.AccessPointRecord, _ any) int {
		order = append(order, rec.BSSID)
		if rec.BSSID == bssidA {
			seenA = rec.BeaconsSeen
		}
		if rec.BSSID == bssidB {
			seenB = rec.BeaconsSeen
		}
		return 0
	}, nil)
	assert.Equal(t, 3, seenA)
	assert.Equal(t, 1, seenB)
	assert.Equal(t, []domain.MAC{bssidA, bssidB}, order)
}

// TestGather_Blacklist exercises scenario S2: blacklisted frames are
// skipped entirely and do not count against the probe budget.
func TestGather_Blacklist(t *testing.T) {
	ch := capture.NewMockChannel()
	for _, bssid := range []domain.MAC{bssidA, bssidA, bssidB, bssidA} {
		ch.QueueFrame(beaconFrame(bssid, "X"))
	}

	inv := domain.NewAccessPointInventory()
	blacklist := domain.Blacklist{{MAC: bssidA}}
	err := probe.Gather(ch, inv, 6, blacklist, probe.Budget{AddrLimit: 4, TimeLimit: 100 * time.Millisecond})
	require.NoError(t, err)

	require.Equal(t, 1, inv.Len())
	assert.Equal(t, bssidB, inv.Records()[0].BSSID)
	assert.Equal(t, 1, inv.Records()[0].BeaconsSeen)
}

// timedChannel sleeps briefly before each Recv to simulate a steady
// beacon arrival rate for scenario S3 (time bound). It never sends.
type timedChannel struct {
	delay   time.Duration
	mu      sync.Mutex
	nextIdx int
	frames  [][]byte
}

func (c *timedChannel) Recv(deadline time.Duration) ([]byte, error) {
	time.Sleep(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nextIdx >= len(c.frames) {
		return nil, capture.ErrTimeout
	}
	f := c.frames[c.nextIdx]
	c.nextIdx++
	return f, nil
}

func (c *timedChannel) Send(frame []byte) error { return nil }
func (c *timedChannel) Close() error            { return nil }

// TestGather_TimeBound exercises scenario S3: a source emitting one
// beacon per 10ms (scaled down from the spec's 100ms for test speed),
// bounded by a 100ms time limit, yields between 8 and 11 records with
// distinct BSSIDs.
func TestGather_TimeBound(t *testing.T) {
	var frames [][]byte
	var counter uint32
	for i := 0; i < 200; i++ {
		n := atomic.AddUint32(&counter, 1)
		bssid := domain.MAC{0x00, 0x00, 0x00, 0x00, byte(n >> 8), byte(n)}
		frames = append(frames, beaconFrame(bssid, "X"))
	}

	ch := &timedChannel{delay: 10 * time.Millisecond, frames: frames}
	inv := domain.NewAccessPointInventory()

	err := probe.Gather(ch, inv, 6, nil, probe.Budget{TimeLimit: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, inv.Len(), 8)
	assert.LessOrEqual(t, inv.Len(), 11)
}
