package domain

// Delta describes a selection-state change as a pair of id sets.
// Add and Remove are disjoint by contract: applying them to the canonical
// selection in either order yields the same result, which is what makes a
// merge a single atomic step.
type Delta struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// IsEmpty reports whether the delta carries no changes.
func (d *Delta) IsEmpty() bool {
	return d == nil || (len(d.Add) == 0 && len(d.Remove) == 0)
}

// Normalize deduplicates both sets and restores the disjointness contract.
// Hosts are expected to forward engine deltas untouched, but a remote host
// can hand back anything; an id present on both sides is treated as a
// removal, never a crash.
func (d *Delta) Normalize() {
	if d == nil {
		return
	}
	d.Remove = dedupe(d.Remove)
	removed := make(map[string]bool, len(d.Remove))
	for _, id := range d.Remove {
		removed[id] = true
	}
	add := dedupe(d.Add)
	d.Add = d.Add[:0]
	for _, id := range add {
		if !removed[id] {
			d.Add = append(d.Add, id)
		}
	}
	if len(d.Add) == 0 {
		d.Add = nil
	}
}
