// Registry tracks every connected augmentor instance and publishes an
// immutable snapshot the dispatch loop can read without locking. Mutation
// (CONFIG frames, disconnects) happens on the loop thread; reads of the
// published snapshot can happen from any goroutine.
package registry

import (
	"augmentloop/internal/transport"
	"sync"
	"sync/atomic"
)

// AugmentorInstance is one live connection to an augmentor process.
// NumInFlight is incremented by dispatch when an AUGMENT is sent,
// decremented when a RESPONSE from this instance arrives (expiry does not
// decrement it), and read by pool.Pick, so it is kept as an atomic rather
// than guarded by the registry's mutex.
type AugmentorInstance struct {
	Name        string
	Address     string
	Conn        transport.Connection
	MaxInFlight int
	NumInFlight atomic.Int64
}

// RegistrySnapshot is the immutable, atomically-published view of the
// registry at a point in time. Safe for concurrent readers without
// synchronization — it is never mutated after publication.
type RegistrySnapshot struct {
	ByName    map[string][]*AugmentorInstance
	ByAddress map[string]*AugmentorInstance
	Names     []string // sorted lexicographically, for the dispatcher's linear merge against a sorted required set
}

// AugmentorRegistry owns the mutable source of truth; only the loop thread
// should call Upsert/RemoveByAddress. Readers (the pool's Pick) use Current.
type AugmentorRegistry struct {
	mu      sync.Mutex
	byName  map[string][]*AugmentorInstance
	current atomic.Pointer[RegistrySnapshot]
}

func New() (r *AugmentorRegistry) {
	r = &AugmentorRegistry{byName: make(map[string][]*AugmentorInstance)}
	r.current.Store(&RegistrySnapshot{
		ByName:    map[string][]*AugmentorInstance{},
		ByAddress: map[string]*AugmentorInstance{},
		Names:     []string{},
	})
	return
}

// Current returns the latest published snapshot.
func (r *AugmentorRegistry) Current() (snap *RegistrySnapshot) {
	snap = r.current.Load()
	return
}
