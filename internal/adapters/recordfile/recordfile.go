// Package recordfile implements the optional record-file pre-seed
// named in spec.md §9's "Open question / possible bug in source" note:
// the original loader's scan format string was commented out and never
// populated fields, so this package follows the documented intended
// contract instead of the broken behavior: pipe-separated
// "MAC|SSID|location|channel|beacons" lines, one record per line, with
// "_" meaning an unknown field.
package recordfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bssid-zero/wiredeauth/internal/core/domain"
)

// ErrMalformedLine is returned when a line does not have exactly five
// pipe-separated fields, or its channel/beacons fields are not parseable
// integers.
var ErrMalformedLine = errors.New("recordfile: malformed line")

// unknownField is the placeholder the file format uses for a field the
// writer did not know, matching spec.md §9.
const unknownField = "_"

// Load reads pipe-separated records from r and merges each into the
// inventory belonging to its channel, through the same BSSID-dedup
// ForEach mechanism AppendUniqueOrIncrement is built on (spec.md §4.4):
// no inventory ever ends up holding two records for the same BSSID,
// whether the record came from a probe or a pre-seed file. inventories
// is indexed the way the orchestrator's channel array is: inventories[c-1]
// for channel c, nil entries are channels not currently allowed and are
// skipped rather than erroring, so a record file covering more channels
// than --channels restricts to can still be loaded.
//
// A line whose MAC or numeric fields fail to parse is reported via
// ErrMalformedLine wrapping the line number and content; Load stops at
// the first such line rather than silently skipping it, since a
// malformed pre-seed file is very likely a channel or field-order
// mistake worth surfacing immediately.
func Load(r io.Reader, inventories [14]*domain.AccessPointInventory) (loaded int, err error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, channel, err := parseLine(line)
		if err != nil {
			return loaded, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, lineNo, err)
		}

		if channel < 1 || channel > 14 {
			return loaded, fmt.Errorf("%w: line %d: channel %d out of [1,14]", ErrMalformedLine, lineNo, channel)
		}
		inv := inventories[channel-1]
		if inv == nil {
			continue
		}

		mergeRecord(inv, rec)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("recordfile: read: %w", err)
	}
	return loaded, nil
}

func parseLine(line string) (domain.AccessPointRecord, int, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 5 {
		return domain.AccessPointRecord{}, 0, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	macField, ssidField, locationField, channelField, beaconsField := fields[0], fields[1], fields[2], fields[3], fields[4]

	mac, err := domain.ParseMAC(macField)
	if err != nil {
		return domain.AccessPointRecord{}, 0, err
	}

	channel, err := strconv.Atoi(channelField)
	if err != nil {
		return domain.AccessPointRecord{}, 0, fmt.Errorf("bad channel %q: %w", channelField, err)
	}

	beacons := 1
	if beaconsField != unknownField {
		beacons, err = strconv.Atoi(beaconsField)
		if err != nil {
			return domain.AccessPointRecord{}, 0, fmt.Errorf("bad beacons_seen %q: %w", beaconsField, err)
		}
	}

	rec := domain.AccessPointRecord{
		BSSID:       mac,
		Channel:     channel,
		SSID:        resolveUnknown(ssidField),
		Location:    resolveUnknown(locationField),
		BeaconsSeen: beacons,
	}
	return rec, channel, nil
}

func resolveUnknown(field string) string {
	if field == unknownField {
		return ""
	}
	return field
}

// mergeRecord folds rec into inv using the inventory's ForEach, the same
// mechanism AppendUniqueOrIncrement is built on (spec.md §4.4, §9 design
// note 1): a BSSID already present has its fields overwritten with the
// file's (a pre-seed is a snapshot of record state, not a running
// probe count to add to), otherwise rec is appended as a new entry.
func mergeRecord(inv *domain.AccessPointInventory, rec domain.AccessPointRecord) {
	hit := inv.ForEach(func(existing *domain.AccessPointRecord, ctx any) int {
		r := ctx.(domain.AccessPointRecord)
		if existing.BSSID != r.BSSID {
			return 0
		}
		existing.SSID = r.SSID
		existing.Location = r.Location
		existing.BeaconsSeen = r.BeaconsSeen
		return 1
	}, rec)

	if hit == 0 {
		inv.Append(rec)
	}
}
