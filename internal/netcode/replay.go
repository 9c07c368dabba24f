package netcode

// ReplayWindowSize is the number of trailing sequence numbers tracked
// per peer (spec §4.2: "a sliding window of the last 256 sequence
// numbers").
const ReplayWindowSize = 256

// ReplayProtection rejects a sequence number that has already been seen
// or that falls below the window's low watermark. Only KeepAlive,
// Payload, and Disconnect packets are subject to it (spec §4.2);
// ConnectionRequest/Challenge/Response are handshake packets exchanged
// before a window exists.
type ReplayProtection struct {
	mostRecent uint64
	seen       [ReplayWindowSize]bool
	started    bool
}

// NewReplayProtection returns a fresh, empty window.
func NewReplayProtection() *ReplayProtection {
	return &ReplayProtection{}
}

// Accept reports whether seq is new (not a replay) and, if so, records
// it. Call this once per received packet subject to replay protection.
func (r *ReplayProtection) Accept(seq uint64) bool {
	if !r.started {
		r.started = true
		r.mostRecent = seq
		r.mark(seq)
		return true
	}

	if seq+ReplayWindowSize <= r.mostRecent {
		// Older than the window's low watermark: reject (spec §4.2).
		return false
	}

	if seq <= r.mostRecent {
		if r.isMarked(seq) {
			return false
		}
		r.mark(seq)
		return true
	}

	// seq advances the window: clear every slot strictly between the
	// old high watermark and the new one before marking seq itself.
	for s := r.mostRecent + 1; s < seq; s++ {
		r.unmark(s)
	}
	r.mostRecent = seq
	r.mark(seq)
	return true
}

func (r *ReplayProtection) slot(seq uint64) int {
	return int(seq % ReplayWindowSize)
}

func (r *ReplayProtection) mark(seq uint64)   { r.seen[r.slot(seq)] = true }
func (r *ReplayProtection) unmark(seq uint64) { r.seen[r.slot(seq)] = false }
func (r *ReplayProtection) isMarked(seq uint64) bool {
	return r.seen[r.slot(seq)]
}
