package registry

import "sort"

// Upsert adds a new instance or replaces an existing one at the same
// address under the same name. Mirrors the original router's updateAllAugmentors:
// reconfiguring an already-known augmentor name/address pair replaces its
// entry in place rather than appending a duplicate.
func (r *AugmentorRegistry) Upsert(inst *AugmentorInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	instances := r.byName[inst.Name]
	replaced := false
	for i, existing := range instances {
		if existing.Address == inst.Address {
			instances[i] = inst
			replaced = true
			break
		}
	}
	if !replaced {
		instances = append(instances, inst)
	}
	r.byName[inst.Name] = instances

	r.publishLocked()
}

// RemoveByAddress evicts every instance registered under address,
// regardless of augmentor name. A real transport disconnect and a CONFIG
// frame replacing a stale address both use this: the original router's
// narrower same-name-only eviction on CONFIG looked like an oversight
// against its own stated "evict under any name" behavior, so both paths
// here scan every name.
func (r *AugmentorRegistry) RemoveByAddress(address string) (removed []*AugmentorInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, instances := range r.byName {
		kept := instances[:0:0]
		for _, inst := range instances {
			if inst.Address == address {
				removed = append(removed, inst)
				continue
			}
			kept = append(kept, inst)
		}
		if len(kept) == 0 {
			delete(r.byName, name)
		} else {
			r.byName[name] = kept
		}
	}

	if len(removed) > 0 {
		r.publishLocked()
	}
	return
}

// publishLocked rebuilds the immutable snapshot and atomically swaps it in.
// Caller must hold r.mu.
func (r *AugmentorRegistry) publishLocked() {
	byName := make(map[string][]*AugmentorInstance, len(r.byName))
	byAddress := make(map[string]*AugmentorInstance)
	names := make([]string, 0, len(r.byName))

	for name, instances := range r.byName {
		copied := make([]*AugmentorInstance, len(instances))
		copy(copied, instances)
		byName[name] = copied
		for _, inst := range copied {
			byAddress[inst.Address] = inst
		}
		names = append(names, name)
	}
	sort.Strings(names)

	r.current.Store(&RegistrySnapshot{ByName: byName, ByAddress: byAddress, Names: names})
}
