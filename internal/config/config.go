// Package config implements the configuration loader spec.md treats as
// an external collaborator (§1, §6): parsing the command-line surface
// into validated orchestrator defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// Config holds every value the orchestrator's DeauthContext needs at
// startup, corresponding one-to-one with spec.md §6's flag surface.
type Config struct {
	NDeauthRounds int
	Interface     string
	Channels      []int
	Blacklist     []domain.MAC
	ProbeRate     int
	MaxProbeAddrs int
	MaxProbeTime  int // seconds
}

// Usage is the text printed on --help or a configuration error, grounded
// in the source's USAGE_STR_WLD.
const Usage = `wiredeauth (wld mode)
Deauthentication tool for wireless attacks.

    -n, --n-deauth=N                     Send N deauthentication packets for every
                                          targeted access point

    -i, --interface=NAME                 Use network interface NAME

    -c, --channels=C1,C2...Ck            Only inject on channels C1, C2... Ck
                                          (repeatable; unspecified means all 14)

    -b, --blacklist=MAC1,MAC2...MACk     Do not deauthenticate routers with MAC
                                          addresses MAC1, MAC2... MACk (repeatable)

    -p, --probe-rate=N                   Cycle the channel after every N probes

    --max-probe-addrs=N                  Do not record more than N addrs per probe

    --max-probe-time=T                   Do not probe for more than T seconds
`

// Load parses args (typically os.Args[1:]) into a validated Config.
// On a parse or validation failure it returns an error whose message
// is suitable for printing alongside Usage; the caller is responsible
// for the non-zero exit spec.md §6 requires.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("wiredeauth", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), Usage) }

	cfg := &Config{
		NDeauthRounds: 64,
		ProbeRate:     3,
		MaxProbeAddrs: 64,
		MaxProbeTime:  20,
	}

	fs.IntVar(&cfg.NDeauthRounds, "n", cfg.NDeauthRounds, "deauth rounds per target")
	fs.IntVar(&cfg.NDeauthRounds, "n-deauth", cfg.NDeauthRounds, "deauth rounds per target")
	fs.StringVar(&cfg.Interface, "i", "", "wireless interface name")
	fs.StringVar(&cfg.Interface, "interface", "", "wireless interface name")
	fs.IntVar(&cfg.ProbeRate, "p", cfg.ProbeRate, "probes per channel dwell")
	fs.IntVar(&cfg.ProbeRate, "probe-rate", cfg.ProbeRate, "probes per channel dwell")
	fs.IntVar(&cfg.MaxProbeAddrs, "max-probe-addrs", cfg.MaxProbeAddrs, "cap on beacons recorded per probe (0 = uncapped)")
	fs.IntVar(&cfg.MaxProbeTime, "max-probe-time", cfg.MaxProbeTime, "cap on probe wall-clock seconds (0 = uncapped)")

	var channels channelList
	fs.Var(&channels, "c", "allowed channel (repeatable)")
	fs.Var(&channels, "channels", "allowed channel (repeatable)")

	var blacklist macList
	fs.Var(&blacklist, "b", "blacklisted BSSID (repeatable)")
	fs.Var(&blacklist, "blacklist", "blacklisted BSSID (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Interface == "" {
		return nil, domain.ErrInterfaceRequired
	}
	if cfg.NDeauthRounds < 1 || cfg.NDeauthRounds > 256 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDeauthRounds, cfg.NDeauthRounds)
	}
	if cfg.MaxProbeAddrs == 0 && cfg.MaxProbeTime == 0 {
		return nil, domain.ErrNoProbeBudget
	}

	cfg.Channels = channels.values
	if len(cfg.Channels) == 0 {
		for c := 1; c <= 14; c++ {
			cfg.Channels = append(cfg.Channels, c)
		}
	}
	cfg.Blacklist = blacklist.values

	return cfg, nil
}

// channelList is a flag.Value accumulating repeated -c/--channels
// flags, each of which may itself be a comma-separated list (so both
// "-c 1 -c 6" and "-c 1,6" are accepted). Each channel is
// validated against spec.md's [1,14] range; duplicates are silently
// ignored, mirroring the source's "already allowed" warning as a
// no-op rather than an error.
type channelList struct {
	values []int
	seen   map[int]bool
}

func (c *channelList) String() string {
	return fmt.Sprint(c.values)
}

func (c *channelList) Set(s string) error {
	if c.seen == nil {
		c.seen = make(map[int]bool)
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("%w: %q", domain.ErrInvalidChannel, part)
		}
		if n < 1 || n > 14 {
			return fmt.Errorf("%w: %d", domain.ErrInvalidChannel, n)
		}
		if c.seen[n] {
			continue
		}
		c.seen[n] = true
		c.values = append(c.values, n)
	}
	return nil
}

// macList is a flag.Value accumulating repeated -b/--blacklist flags.
type macList struct {
	values []domain.MAC
}

func (m *macList) String() string {
	return fmt.Sprint(m.values)
}

func (m *macList) Set(s string) error {
	mac, err := domain.ParseMAC(s)
	if err != nil {
		return err
	}
	m.values = append(m.values, mac)
	return nil
}

// PrintUsage writes Usage to stderr, matching the source's behavior on
// a configuration error or --help.
func PrintUsage() {
	fmt.Fprint(os.Stderr, Usage)
}
