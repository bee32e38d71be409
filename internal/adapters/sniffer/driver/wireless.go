// Package driver implements the Channel Setter (spec.md §4.2): a
// best-effort shell-out to the kernel's wireless configuration tooling.
package driver

import (
	"fmt"
	"os/exec"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// CommandExecutor abstracts system command execution so SetChannel can
// be exercised in tests without shelling out.
type CommandExecutor interface {
	Execute(name string, args ...string) ([]byte, error)
}

// systemCommandExecutor runs commands via os/exec.
type systemCommandExecutor struct{}

func (systemCommandExecutor) Execute(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// WirelessDriver sets the operating channel of a wireless interface.
type WirelessDriver struct {
	executor CommandExecutor
}

// NewWirelessDriver returns a driver backed by the real "iw" binary.
func NewWirelessDriver() *WirelessDriver {
	return &WirelessDriver{executor: systemCommandExecutor{}}
}

// NewWirelessDriverWithExecutor returns a driver using a caller-supplied
// CommandExecutor, for tests.
func NewWirelessDriverWithExecutor(e CommandExecutor) *WirelessDriver {
	return &WirelessDriver{executor: e}
}

// FrequencyForChannel computes the 2.4 GHz center frequency for channel,
// per spec.md §4.2: 2407 + 5*channel for 1..13, 2484 for 14.
func FrequencyForChannel(channel int) (int, error) {
	if channel < 1 || channel > 14 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidChannel, channel)
	}
	if channel == 14 {
		return 2484, nil
	}
	return 2407 + 5*channel, nil
}

// SetChannel issues a single configuration request to the wireless
// subsystem, setting the interface's operating frequency for channel.
// It is best-effort (spec.md §4.2, §7): the returned error should be
// logged by the caller, not treated as fatal to the orchestrator.
func (d *WirelessDriver) SetChannel(ifName string, channel int) error {
	if _, err := FrequencyForChannel(channel); err != nil {
		return err
	}

	out, err := d.executor.Execute("iw", ifName, "set", "channel", fmt.Sprintf("%d", channel))
	if err != nil {
		return fmt.Errorf("driver: set channel %d on %s: %w (%s)", channel, ifName, err, string(out))
	}
	return nil
}
