package refpath

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/scenekit/scenesync/internal/scene"
)

// Some serialized units can only preserve a reference when both ends are
// present in the unit. For targets outside a container's own children, a
// carrier is appended after the real children to hold the one reference;
// it is discarded after decoding.

// Carrier is a placeholder appended to a container's serialized child list.
type Carrier struct {
	Target scene.Ref
}

// ContainerRecord is the per-container wire record for reference-typed
// properties. Refs maps a property name to a 1-based index into the combined
// list of [children..., carriers...]; index 0 or an absent entry means the
// reference is nil.
type ContainerRecord struct {
	ChildCount     int            `msgpack:"child_count"`
	RefTargetCount int            `msgpack:"ref_target_count"`
	Refs           map[string]int `msgpack:"refs,omitempty"`
}

// EncodeContainer builds the record for a container with the given real
// children and reference-typed properties. Targets that are direct children
// index into the child range; any other non-nil target gets a carrier.
// Carriers are ordered by property name so the encoding is deterministic.
func EncodeContainer(children []scene.Ref, refProps map[string]scene.Ref) (ContainerRecord, []Carrier) {
	record := ContainerRecord{ChildCount: len(children)}
	if len(refProps) == 0 {
		return record, nil
	}

	childIndex := make(map[scene.Ref]int, len(children))
	for i, child := range children {
		childIndex[child] = i + 1
	}

	names := make([]string, 0, len(refProps))
	for name := range refProps {
		names = append(names, name)
	}
	sort.Strings(names)

	record.Refs = make(map[string]int, len(names))
	var carriers []Carrier
	carrierIndex := make(map[scene.Ref]int)
	for _, name := range names {
		target := refProps[name]
		if target.IsNone() {
			record.Refs[name] = 0
			continue
		}
		if i, ok := childIndex[target]; ok {
			record.Refs[name] = i
			continue
		}
		i, ok := carrierIndex[target]
		if !ok {
			carriers = append(carriers, Carrier{Target: target})
			i = len(children) + len(carriers)
			carrierIndex[target] = i
		}
		record.Refs[name] = i
	}
	record.RefTargetCount = len(carriers)
	return record, carriers
}

// Resolve recovers the reference targets from a decoded record. children and
// carriers are the two slices of the combined list, sliced by the record's
// counts. Nil indexes, out-of-range indexes and carriers holding no target
// are skipped, degrading the single property rather than the whole decode.
func (r ContainerRecord) Resolve(children []scene.Ref, carriers []Carrier) map[string]scene.Ref {
	if len(r.Refs) == 0 {
		return nil
	}
	out := make(map[string]scene.Ref, len(r.Refs))
	for name, index := range r.Refs {
		switch {
		case index <= 0:
		case index <= len(children):
			out[name] = children[index-1]
		case index <= len(children)+len(carriers):
			target := carriers[index-len(children)-1].Target
			if !target.IsNone() {
				out[name] = target
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Marshal encodes the record for embedding in a serialized container.
func (r ContainerRecord) Marshal() ([]byte, error) {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode container record: %w", err)
	}
	return data, nil
}

// UnmarshalContainerRecord decodes a record produced by Marshal.
func UnmarshalContainerRecord(data []byte) (ContainerRecord, error) {
	var record ContainerRecord
	if err := msgpack.Unmarshal(data, &record); err != nil {
		return ContainerRecord{}, fmt.Errorf("decode container record: %w", err)
	}
	return record, nil
}
