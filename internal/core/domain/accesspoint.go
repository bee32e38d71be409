package domain

// AccessPointRecord is one observed access point, created on the first
// beacon seen for a BSSID on the current channel and mutated thereafter
// by the probe engine (beacons_seen increments on repeats) or by the
// record-file pre-seed (fields overwritten from the file).
type AccessPointRecord struct {
	BSSID       MAC
	Channel     int
	SSID        string
	Location    string
	BeaconsSeen int
}

// Predicate is the single callable type for AccessPointInventory.ForEach,
// resolving the source's variant-arity callback workaround (spec.md §9):
// a uniform (record, ctx) -> int signature, where ctx is nil when unused.
type Predicate func(rec *AccessPointRecord, ctx any) int

// AccessPointInventory is an insertion-ordered, BSSID-deduplicated
// collection: spec.md §3/§4.4, one instance per allowed channel.
type AccessPointInventory struct {
	records []AccessPointRecord
}

// NewAccessPointInventory returns an empty inventory.
func NewAccessPointInventory() *AccessPointInventory {
	return &AccessPointInventory{}
}

// Len reports the number of records currently held.
func (inv *AccessPointInventory) Len() int {
	return len(inv.records)
}

// Records returns a copy of the inventory's records in insertion order.
func (inv *AccessPointInventory) Records() []AccessPointRecord {
	out := make([]AccessPointRecord, len(inv.records))
	copy(out, inv.records)
	return out
}

// Clear empties the inventory in place.
func (inv *AccessPointInventory) Clear() {
	inv.records = nil
}

// Destroy releases the inventory's backing storage. Kept as a distinct
// operation (rather than relying on GC alone) to mirror the explicit
// destroy/free lifecycle spec.md §3 and §4.4 describe.
func (inv *AccessPointInventory) Destroy() {
	inv.records = nil
}

// Append adds a record at the tail in O(1). The caller guarantees the
// BSSID is not already present; ForEach-based lookups are the caller's
// responsibility (see AppendUniqueOrIncrement).
func (inv *AccessPointInventory) Append(rec AccessPointRecord) {
	inv.records = append(inv.records, rec)
}

// ForEach evaluates pred over every record in insertion order and
// returns the sum of its results. Mutating the record through the
// pointer passed to pred is permitted; mutating the inventory itself
// (Append/Clear) from within pred is not supported.
func (inv *AccessPointInventory) ForEach(pred Predicate, ctx any) int {
	sum := 0
	for i := range inv.records {
		sum += pred(&inv.records[i], ctx)
	}
	return sum
}

// incrementIfBSSIDMatches is the predicate AppendUniqueOrIncrement (and
// so the probe engine) uses to express deduplicating insertion purely in
// terms of ForEach, per spec.md §4.4: returns 1 and bumps BeaconsSeen on
// a match, 0 otherwise.
func incrementIfBSSIDMatches(rec *AccessPointRecord, ctx any) int {
	target := ctx.(MAC)
	if rec.BSSID != target {
		return 0
	}
	rec.BeaconsSeen++
	return 1
}

// AppendUniqueOrIncrement implements the dedup rule of spec.md §4.4: if a
// record with this BSSID exists, its BeaconsSeen is incremented and
// false is returned (not newly created); otherwise a fresh record is
// appended with BeaconsSeen=1 and true is returned.
func (inv *AccessPointInventory) AppendUniqueOrIncrement(bssid MAC, channel int, ssid, location string) (created bool) {
	hits := inv.ForEach(incrementIfBSSIDMatches, bssid)
	if hits > 0 {
		return false
	}
	inv.Append(AccessPointRecord{
		BSSID:       bssid,
		Channel:     channel,
		SSID:        ssid,
		Location:    location,
		BeaconsSeen: 1,
	})
	return true
}

// BlacklistEntry is an opaque BSSID exempted from deauthentication.
type BlacklistEntry struct {
	MAC MAC
}

// Blacklist is an unordered, typically-small collection of BlacklistEntry.
type Blacklist []BlacklistEntry

// Contains reports whether mac appears anywhere in the blacklist.
func (b Blacklist) Contains(mac MAC) bool {
	for _, e := range b {
		if e.MAC == mac {
			return true
		}
	}
	return false
}
