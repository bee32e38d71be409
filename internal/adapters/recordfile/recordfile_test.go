package recordfile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssid-zero/wiredeauth/internal/adapters/recordfile"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

func newInventories(channels ...int) [14]*domain.AccessPointInventory {
	var out [14]*domain.AccessPointInventory
	for _, c := range channels {
		out[c-1] = domain.NewAccessPointInventory()
	}
	return out
}

func TestLoad_BasicRecord(t *testing.T) {
	inv := newInventories(6)
	r := strings.NewReader("AA:BB:CC:DD:EE:FF|MyNetwork|Lobby|6|3\n")

	n, err := recordfile.Load(r, inv)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Equal(t, 1, inv[5].Len())
	rec := inv[5].Records()[0]
	assert.Equal(t, "MyNetwork", rec.SSID)
	assert.Equal(t, "Lobby", rec.Location)
	assert.Equal(t, 3, rec.BeaconsSeen)
}

func TestLoad_UnknownFieldsBlank(t *testing.T) {
	inv := newInventories(1)
	r := strings.NewReader("AA:BB:CC:DD:EE:FF|_|_|1|_\n")

	_, err := recordfile.Load(r, inv)
	require.NoError(t, err)

	rec := inv[0].Records()[0]
	assert.Empty(t, rec.SSID)
	assert.Empty(t, rec.Location)
	assert.Equal(t, 1, rec.BeaconsSeen)
}

func TestLoad_SkipsChannelsNotAllowed(t *testing.T) {
	inv := newInventories(1) // only channel 1 allocated
	r := strings.NewReader("AA:BB:CC:DD:EE:FF|X|_|6|1\n")

	n, err := recordfile.Load(r, inv)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLoad_DedupMergesWithExistingBSSID(t *testing.T) {
	inv := newInventories(1)
	inv[0].AppendUniqueOrIncrement(domain.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, 1, "X", "")

	r := strings.NewReader("AA:BB:CC:DD:EE:FF|X|_|1|4\n")
	_, err := recordfile.Load(r, inv)
	require.NoError(t, err)

	require.Equal(t, 1, inv[0].Len())
	assert.Equal(t, 4, inv[0].Records()[0].BeaconsSeen)
}

func TestLoad_MalformedLine(t *testing.T) {
	inv := newInventories(1)
	r := strings.NewReader("not-enough-fields|1\n")

	_, err := recordfile.Load(r, inv)
	assert.ErrorIs(t, err, recordfile.ErrMalformedLine)
}

func TestLoad_BadMACAddress(t *testing.T) {
	inv := newInventories(1)
	r := strings.NewReader("zz|X|_|1|1\n")

	_, err := recordfile.Load(r, inv)
	assert.ErrorIs(t, err, recordfile.ErrMalformedLine)
}

func TestLoad_ChannelOutOfRange(t *testing.T) {
	inv := newInventories(1)
	r := strings.NewReader("AA:BB:CC:DD:EE:FF|X|_|15|1\n")

	_, err := recordfile.Load(r, inv)
	assert.ErrorIs(t, err, recordfile.ErrMalformedLine)
}

func TestLoad_BlankLinesIgnored(t *testing.T) {
	inv := newInventories(1)
	r := strings.NewReader("\nAA:BB:CC:DD:EE:FF|X|_|1|1\n\n")

	n, err := recordfile.Load(r, inv)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
