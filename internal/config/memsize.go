package config

import (
	"augmentloop/internal/global"

	"github.com/pbnjay/memory"
)

// bytesPerInFlightEntry is a rough working-set estimate (request blob,
// augmentor fan-out state, response buffers) per outstanding auction.
const bytesPerInFlightEntry = 4096

// defaultMaxInFlightFromMemory sizes Config.DefaultMaxInFlight from
// available system memory rather than a single fixed constant, the same
// free-memory-aware sizing the teacher's queue auto-scaler uses to avoid
// growing past what the host can hold, applied here to a startup default
// instead of a live resize decision. The augmentation loop does not read
// Config.DefaultMaxInFlight: doConfig falls back to the fixed
// global.DefaultMaxInFlight when a CONFIG frame carries no usable cap.
func defaultMaxInFlightFromMemory() (n int) {
	avail := memory.FreeMemory()
	if avail == 0 {
		n = global.DefaultMaxInFlight
		return
	}

	// Budget at most 5% of free memory toward in-flight augmentor state.
	n = int(avail / 20 / bytesPerInFlightEntry)
	if n < global.DefaultMinQueueSize {
		n = global.DefaultMinQueueSize
	}
	if n > global.DefaultMaxQueueSize {
		n = global.DefaultMaxQueueSize
	}
	return
}
