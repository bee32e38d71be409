package orchestrator_test

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/capture"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/driver"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
	"github.com/bssid-zero/wiredeauth/internal/orchestrator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// channelRecorder implements driver.CommandExecutor and records every
// channel number passed to "iw <iface> set channel N".
type channelRecorder struct {
	channels []int
}

func (r *channelRecorder) Execute(name string, args ...string) ([]byte, error) {
	if name == "iw" && len(args) == 4 && args[1] == "set" && args[2] == "channel" {
		n, _ := strconv.Atoi(args[3])
		r.channels = append(r.channels, n)
	}
	return nil, nil
}

func newTestContext(t *testing.T, rec *channelRecorder, opts orchestrator.Options) *orchestrator.DeauthContext {
	t.Helper()
	drv := driver.NewWirelessDriverWithExecutor(rec)
	ctx := orchestrator.New(testLogger(), drv)
	require.NoError(t, ctx.Config(opts))
	return ctx
}

// TestConfig_AllocatesOnlyAllowedInventories exercises invariant #1.
func TestConfig_AllocatesOnlyAllowedInventories(t *testing.T) {
	rec := &channelRecorder{}
	ctx := newTestContext(t, rec, orchestrator.Options{
		InterfaceName:   "wlan0",
		NDeauthRounds:   64,
		AllowedChannels: []int{1, 6, 11},
		ProbeAddrLimit:  1,
	})

	assert.NotNil(t, ctx.Inventory(1))
	assert.NotNil(t, ctx.Inventory(6))
	assert.NotNil(t, ctx.Inventory(11))
	assert.Nil(t, ctx.Inventory(2))
	assert.Nil(t, ctx.Inventory(14))
	assert.Equal(t, 0, ctx.Inventory(1).Len())
}

func TestConfig_RejectsNoAllowedChannels(t *testing.T) {
	drv := driver.NewWirelessDriverWithExecutor(&channelRecorder{})
	ctx := orchestrator.New(testLogger(), drv)
	err := ctx.Config(orchestrator.Options{InterfaceName: "wlan0", ProbeAddrLimit: 1})
	assert.ErrorIs(t, err, domain.ErrNoAllowedChannels)
}

func TestConfig_RejectsMissingProbeBudget(t *testing.T) {
	drv := driver.NewWirelessDriverWithExecutor(&channelRecorder{})
	ctx := orchestrator.New(testLogger(), drv)
	err := ctx.Config(orchestrator.Options{InterfaceName: "wlan0", NDeauthRounds: 64, AllowedChannels: []int{1}})
	assert.ErrorIs(t, err, domain.ErrNoProbeBudget)
}

func beaconFrame(bssid domain.MAC) []byte {
	var buf []byte
	buf = append(buf, 0x00, 0x00, 0x0C, 0x00, 0x04, 0x80, 0x00, 0x00, 0x02, 0x00, 0x18, 0x00)
	mgmt := make([]byte, 24)
	mgmt[0], mgmt[1] = 0x80, 0x00
	copy(mgmt[4:10], domain.Broadcast[:])
	copy(mgmt[10:16], bssid[:])
	copy(mgmt[16:22], bssid[:])
	buf = append(buf, mgmt...)
	buf = append(buf, make([]byte, 12)...) // beacon fixed fields
	buf = append(buf, 0, 1, 'X')           // SSID IE
	return buf
}

// TestChannelCycling exercises scenario S4: --channels 1 --channels 6
// --channels 11 --probe-rate 2, driven through six GatherAPs calls.
// The dwell counter only triggers a cycle on the 3rd and 5th call
// (channelProbesRemaining resets to 2 and is checked before the
// decrement), so the channel setter is invoked exactly three times:
// once by Init (channel 1) and once per cycle (6, then 11). AddrLimit=1
// with one queued beacon per call makes every GatherAPs terminate as
// soon as it records that one beacon, without depending on wall-clock
// timing.
func TestChannelCycling(t *testing.T) {
	rec := &channelRecorder{}
	ctx := newTestContext(t, rec, orchestrator.Options{
		InterfaceName:    "wlan0",
		NDeauthRounds:    64,
		AllowedChannels:  []int{1, 6, 11},
		ProbesPerChannel: 2,
		ProbeAddrLimit:   1,
	})

	ch := capture.NewMockChannel()
	for i := 0; i < 6; i++ {
		ch.QueueFrame(beaconFrame(domain.MAC{0, 0, 0, 0, 0, byte(i)}))
	}
	require.NoError(t, ctx.InitWithChannel(ch))

	for i := 0; i < 6; i++ {
		require.NoError(t, ctx.GatherAPs())
	}

	assert.Equal(t, []int{1, 6, 11}, rec.channels)
}

func TestGatherAPs_InventoryAbsentIsFatal(t *testing.T) {
	rec := &channelRecorder{}
	ctx := newTestContext(t, rec, orchestrator.Options{
		InterfaceName:   "wlan0",
		NDeauthRounds:   64,
		AllowedChannels: []int{6},
		ProbeAddrLimit:  1,
	})
	require.NoError(t, ctx.InitWithChannel(capture.NewMockChannel()))

	ctx.CurrentChannel = 1 // not an allowed channel; no inventory allocated
	err := ctx.GatherAPs()
	assert.ErrorIs(t, err, domain.ErrInventoryAbsent)
}

// TestRun_StopsOnSocketFailure exercises the main-loop error
// propagation spec.md §5/§7 describe: a fatal recv error from
// GatherAPs breaks Run.
func TestRun_StopsOnSocketFailure(t *testing.T) {
	rec := &channelRecorder{}
	ctx := newTestContext(t, rec, orchestrator.Options{
		InterfaceName:   "wlan0",
		NDeauthRounds:   64,
		AllowedChannels: []int{6},
		ProbeAddrLimit:  1,
	})

	ch := &failingChannel{err: errors.New("socket gone")}
	require.NoError(t, ctx.InitWithChannel(ch))

	err := ctx.Run()
	require.Error(t, err)
	assert.NoError(t, ctx.Exit())
	ctx.Destroy()
	assert.Nil(t, ctx.Inventory(6))
}

// failingChannel is a Channel whose Recv always returns a non-timeout
// error, exercising the fatal-error propagation path out of GatherAPs
// and Run.
type failingChannel struct{ err error }

func (f *failingChannel) Recv(_ time.Duration) ([]byte, error) { return nil, f.err }
func (f *failingChannel) Send(_ []byte) error                  { return nil }
func (f *failingChannel) Close() error                         { return nil }
