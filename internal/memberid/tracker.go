// Package memberid tracks parameter-list member ids written by a cdr.Writer within a
// single aggregate scope, to catch a programmer writing the same id twice before the
// caller closes that scope. The scope ends at Writer.SentinelHeader (which writes
// nothing and resets nothing under XCDR2) or at Writer.DHeader (under either version).
//
// This is a bookkeeping aid, not part of the wire format: it never changes what bytes a
// Writer emits. It is grounded on the teacher's hash-collision Tracker, generalized from
// string-metric-name hashes to the numeric member ids XCDR1/XCDR2 EMHEADER uses.
package memberid

import "github.com/Lichtblick-Suite/cdr/errs"

// Tracker records member ids seen since the last Reset and reports a duplicate.
type Tracker struct {
	seen map[uint32]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[uint32]struct{})}
}

// Track records id, returning errs.ErrDuplicateMemberID if it was already seen since the
// last Reset.
func (t *Tracker) Track(id uint32) error {
	if _, exists := t.seen[id]; exists {
		return errs.ErrDuplicateMemberID
	}

	t.seen[id] = struct{}{}

	return nil
}

// Count returns the number of distinct ids tracked since the last Reset.
func (t *Tracker) Count() int {
	return len(t.seen)
}

// Reset clears tracked ids, preserving map capacity for reuse. Called by the Writer
// whenever a sentinel header or DHEADER closes an aggregate's member-id scope.
func (t *Tracker) Reset() {
	for k := range t.seen {
		delete(t.seen, k)
	}
}
