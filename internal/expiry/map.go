package expiry

import (
	"container/heap"
	"time"
)

// AugmentingMap is the loop thread's sole record of in-flight auctions. It
// is not safe for concurrent use; the loop thread owns it exclusively.
type AugmentingMap struct {
	entries map[string]*AuctionEntry
	items   map[string]*item
	heap    itemHeap
}

func NewAugmentingMap() (m *AugmentingMap) {
	m = &AugmentingMap{
		entries: make(map[string]*AuctionEntry),
		items:   make(map[string]*item),
	}
	heap.Init(&m.heap)
	return
}

// Contains reports whether auctionID already has a live entry.
func (m *AugmentingMap) Contains(auctionID string) (found bool) {
	_, found = m.entries[auctionID]
	return
}

// Insert adds entry keyed by auctionID. Caller must have already checked
// Contains to enforce the duplicate-auction policy.
func (m *AugmentingMap) Insert(auctionID string, entry *AuctionEntry) {
	m.entries[auctionID] = entry
	it := &item{auctionID: auctionID, deadline: entry.Deadline}
	m.items[auctionID] = it
	heap.Push(&m.heap, it)
}

// Get returns the live entry for auctionID, if any.
func (m *AugmentingMap) Get(auctionID string) (entry *AuctionEntry, found bool) {
	entry, found = m.entries[auctionID]
	return
}

// Remove deletes auctionID from both the lookup map and the deadline heap.
// Used on normal completion (Outstanding emptied by a RESPONSE).
func (m *AugmentingMap) Remove(auctionID string) {
	delete(m.entries, auctionID)
	it, found := m.items[auctionID]
	if !found {
		return
	}
	heap.Remove(&m.heap, it.index)
	delete(m.items, auctionID)
}

// Len reports the number of live entries.
func (m *AugmentingMap) Len() (n int) {
	n = len(m.entries)
	return
}

// Earliest returns the soonest deadline among live entries. ok is false
// when the map is empty, letting checkExpiries skip the scan entirely.
func (m *AugmentingMap) Earliest() (deadline time.Time, ok bool) {
	if len(m.heap) == 0 {
		return
	}
	deadline = m.heap[0].deadline
	ok = true
	return
}

// ExpireDue pops every entry whose deadline is <= now and returns them in
// deadline order, removing them from the map. The caller is responsible
// for invoking OnFinished on each.
func (m *AugmentingMap) ExpireDue(now time.Time) (due []*AuctionEntry) {
	for len(m.heap) > 0 && !m.heap[0].deadline.After(now) {
		it := heap.Pop(&m.heap).(*item)
		entry, found := m.entries[it.auctionID]
		delete(m.items, it.auctionID)
		if !found {
			continue
		}
		delete(m.entries, it.auctionID)
		due = append(due, entry)
	}
	return
}
