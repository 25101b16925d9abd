// Pool selects which connected instance of a named augmentor should handle
// the next auction, by least number of in-flight requests.
package pool

import "augmentloop/internal/registry"

// Pick scans every instance registered under augmentorName and returns the
// one with the fewest in-flight requests, skipping any instance already at
// its configured MaxInFlight cap. Ties keep the first instance found (a
// strict < comparison, matching the original router's pickInstance) so
// selection is stable across repeated calls against an unchanged snapshot.
func Pick(snapshot *registry.RegistrySnapshot, augmentorName string) (best *registry.AugmentorInstance, found bool) {
	instances := snapshot.ByName[augmentorName]

	var bestLoad int64
	for _, inst := range instances {
		load := inst.NumInFlight.Load()
		if int(load) >= inst.MaxInFlight {
			continue
		}
		if !found || load < bestLoad {
			best = inst
			bestLoad = load
			found = true
		}
	}
	return
}
