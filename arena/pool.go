package arena

// WaitingEntry is one player waiting for an opponent. A connection holds at
// most one entry at a time.
type WaitingEntry struct {
	ConnectionID string
	UserID       string
	EntryFee     int
}

// WaitingPool is a FIFO queue of players seeking a match. It carries no
// locking of its own; the engine serializes all access.
type WaitingPool struct {
	entries []WaitingEntry
}

// NewWaitingPool creates an empty pool.
func NewWaitingPool() *WaitingPool {
	return &WaitingPool{}
}

// Enqueue adds an entry to the back of the queue. Any existing entry for the
// same connection is removed first, so a repeated findMatch re-queues the
// player instead of duplicating them.
func (p *WaitingPool) Enqueue(entry WaitingEntry) {
	p.RemoveByConnection(entry.ConnectionID)
	p.entries = append(p.entries, entry)
}

// TryDequeuePair removes and returns the two oldest entries. It returns
// ok=false without mutating the pool when fewer than two players are waiting.
func (p *WaitingPool) TryDequeuePair() (first, second WaitingEntry, ok bool) {
	if len(p.entries) < 2 {
		return WaitingEntry{}, WaitingEntry{}, false
	}
	first, second = p.entries[0], p.entries[1]
	p.entries = append([]WaitingEntry{}, p.entries[2:]...)
	return first, second, true
}

// RemoveByConnection drops the entry owned by connectionID, if any.
func (p *WaitingPool) RemoveByConnection(connectionID string) bool {
	for i, e := range p.entries {
		if e.ConnectionID == connectionID {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports how many players are waiting.
func (p *WaitingPool) Len() int {
	return len(p.entries)
}
