package augmentation

import (
	"augmentloop/internal/expiry"
	"augmentloop/internal/global"
	"context"
	"sort"
	"time"
)

// requiredAugmentorNames computes the union, deduplicated and sorted, of
// every augmentor name referenced by any bidder in any potential group.
func requiredAugmentorNames(info AuctionInfo) (names []string) {
	seen := make(map[string]struct{})
	for _, group := range info.PotentialGroups() {
		for _, bidder := range group.Bidders {
			if bidder.Config == nil {
				continue
			}
			for _, name := range bidder.Config.AugmentorNames() {
				if name == "" {
					continue
				}
				seen[name] = struct{}{}
			}
		}
	}

	names = make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// intersectSorted linear-merges two sorted name slices, returning the
// intersection as a set. Both inputs must already be sorted lexicographically.
func intersectSorted(required []string, live []string) (outstanding map[string]struct{}) {
	outstanding = make(map[string]struct{})
	i, j := 0, 0
	for i < len(required) && j < len(live) {
		switch {
		case required[i] < live[j]:
			i++
		case required[i] > live[j]:
			j++
		default:
			outstanding[required[i]] = struct{}{}
			i++
			j++
		}
	}
	return
}

// Augment is the sole entry point external callers use to submit an auction
// for augmentation. It may complete synchronously on the caller's goroutine
// (the no-augmentors fast path) or hand off to the loop thread via the
// inbox. Safe for concurrent use by arbitrary caller goroutines.
func (loop *Loop) Augment(ctx context.Context, info AuctionInfo, deadline time.Time, onFinished func(AuctionInfo)) {
	required := requiredAugmentorNames(info)
	snapshot := loop.registry.Current()
	outstanding := intersectSorted(required, snapshot.Names)

	for name := range outstanding {
		loop.stats.incCounter([]string{global.NSAugment}, "request")
		loop.stats.incCounter([]string{global.NSAugment, name}, "request")
	}

	if len(outstanding) == 0 {
		onFinished(info)
		return
	}

	entry := &expiry.AuctionEntry{
		Info:        info,
		Deadline:    deadline,
		Outstanding: outstanding,
		OnFinished: func(completed expiry.AuctionInfo) {
			onFinished(completed.(AuctionInfo))
		},
	}

	select {
	case loop.inbox <- entry:
	case <-ctx.Done():
	}
}
