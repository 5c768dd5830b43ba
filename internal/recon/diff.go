package recon

import (
	"sort"

	"github.com/scenekit/scenesync/internal/scene"
)

// UnmatchedPenalty is the flat cost of one unmatched child during scoring.
// It is large enough that no realistic number of property diffs outweighs a
// structural create or delete.
const UnmatchedPenalty = 100

// PropertyDiff records one property or attribute change between two
// instances. Old is nil for additions, New is nil for removals.
type PropertyDiff struct {
	Name string
	Old  scene.Value
	New  scene.Value
}

// TagDiff records the tag changes between two instances.
type TagDiff struct {
	Added   []string
	Removed []string
}

func (d TagDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// DiffProperties compares the property maps of two instances, returning one
// entry per key that was added, removed or changed, sorted by name.
func DiffProperties(old, new *scene.Instance) []PropertyDiff {
	return diffValueMaps(old.Properties, new.Properties)
}

// DiffAttributes is DiffProperties over the attribute maps.
func DiffAttributes(old, new *scene.Instance) []PropertyDiff {
	return diffValueMaps(old.Attributes, new.Attributes)
}

func diffValueMaps(old, new map[string]scene.Value) []PropertyDiff {
	var diffs []PropertyDiff
	for name, oldValue := range old {
		newValue, ok := new[name]
		if !ok {
			diffs = append(diffs, PropertyDiff{Name: name, Old: oldValue})
			continue
		}
		if !scene.ValuesEqual(oldValue, newValue) {
			diffs = append(diffs, PropertyDiff{Name: name, Old: oldValue, New: newValue})
		}
	}
	for name, newValue := range new {
		if _, ok := old[name]; !ok {
			diffs = append(diffs, PropertyDiff{Name: name, New: newValue})
		}
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Name < diffs[j].Name })
	return diffs
}

// DiffTags returns the tags to add and remove to turn old's tag set into
// new's, each sorted.
func DiffTags(old, new *scene.Instance) TagDiff {
	added := new.Tags.Difference(old.Tags).ToSlice()
	removed := old.Tags.Difference(new.Tags).ToSlice()
	sort.Strings(added)
	sort.Strings(removed)
	return TagDiff{Added: added, Removed: removed}
}

// OwnStateCost counts the discrete edits needed to reconcile two instances'
// own state: one per differing or one-sided property key, one per tag in the
// symmetric difference, one per added, removed or changed attribute. Name
// and class are not counted; callers pair instances within a (name, class)
// group so they are already equal.
func OwnStateCost(old, new *scene.Instance) int {
	cost := costOfValueMaps(old.Properties, new.Properties)
	cost += old.Tags.SymmetricDifference(new.Tags).Cardinality()
	cost += costOfValueMaps(old.Attributes, new.Attributes)
	return cost
}

func costOfValueMaps(old, new map[string]scene.Value) int {
	cost := 0
	for name, oldValue := range old {
		newValue, ok := new[name]
		if !ok || !scene.ValuesEqual(oldValue, newValue) {
			cost++
		}
	}
	for name := range new {
		if _, ok := old[name]; !ok {
			cost++
		}
	}
	return cost
}
