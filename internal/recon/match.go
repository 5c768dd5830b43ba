package recon

import (
	"math"
	"sort"

	"github.com/scenekit/scenesync/internal/scene"
)

// ambiguousGroupCap bounds the per-side size of a group that gets exhaustive
// pair scoring. Larger groups are a performance concern, not a correctness
// one, and fall back to sibling-order pairing.
const ambiguousGroupCap = 64

// MatchedPair joins an instance from the old tree with its counterpart in
// the new tree.
type MatchedPair struct {
	Old scene.Ref
	New scene.Ref
}

// MatchResult is the outcome of matching one pair of sibling sets. Matched
// is ordered by the old side's original child order; leftovers on the old
// side are deletion candidates, leftovers on the new side creation
// candidates.
type MatchResult struct {
	Matched      []MatchedPair
	UnmatchedOld []scene.Ref
	UnmatchedNew []scene.Ref
}

// Matcher pairs children between two tree snapshots. Neither snapshot may
// be mutated while a Matcher is using them.
type Matcher struct {
	oldTree scene.Provider
	newTree scene.Provider
	oldHash *scene.Hasher
	newHash *scene.Hasher
}

func NewMatcher(oldTree, newTree scene.Provider) *Matcher {
	return &Matcher{
		oldTree: oldTree,
		newTree: newTree,
		oldHash: scene.NewHasher(),
		newHash: scene.NewHasher(),
	}
}

type groupKey struct {
	name  string
	class string
}

// MatchChildren pairs the children of oldParent and newParent. Reference
// properties shared by the two parents pin their targets first, then groups
// with exactly one candidate per (name, class) on each side match without
// scoring, then remaining groups are resolved greedily by ascending
// ChangeCount with ties broken by original child order. The result is
// deterministic for unchanged inputs.
func (m *Matcher) MatchChildren(oldParent, newParent scene.Ref) MatchResult {
	oldChildren := m.oldTree.ChildrenOf(oldParent)
	newChildren := m.newTree.ChildrenOf(newParent)

	oldTaken := make([]bool, len(oldChildren))
	newTaken := make([]bool, len(newChildren))
	oldIndex := make(map[scene.Ref]int, len(oldChildren))
	for i, ref := range oldChildren {
		oldIndex[ref] = i
	}
	newIndex := make(map[scene.Ref]int, len(newChildren))
	for i, ref := range newChildren {
		newIndex[ref] = i
	}

	var matched []MatchedPair
	take := func(oi, ni int) {
		oldTaken[oi] = true
		newTaken[ni] = true
		matched = append(matched, MatchedPair{Old: oldChildren[oi], New: newChildren[ni]})
	}

	m.pinByParentReferences(oldParent, newParent, oldIndex, newIndex, oldTaken, newTaken, take)

	groups := make(map[groupKey][2][]int)
	keys := make([]groupKey, 0)
	for i, ref := range oldChildren {
		if oldTaken[i] {
			continue
		}
		inst := m.oldTree.Get(ref)
		key := groupKey{name: inst.Name, class: inst.Class}
		group, ok := groups[key]
		if !ok {
			keys = append(keys, key)
		}
		group[0] = append(group[0], i)
		groups[key] = group
	}
	for i, ref := range newChildren {
		if newTaken[i] {
			continue
		}
		inst := m.newTree.Get(ref)
		key := groupKey{name: inst.Name, class: inst.Class}
		group, ok := groups[key]
		if !ok {
			keys = append(keys, key)
		}
		group[1] = append(group[1], i)
		groups[key] = group
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].class < keys[j].class
	})

	// Exact-group fast path: one candidate per side matches without scoring.
	for _, key := range keys {
		group := groups[key]
		if len(group[0]) == 1 && len(group[1]) == 1 {
			take(group[0][0], group[1][0])
		}
	}

	for _, key := range keys {
		group := groups[key]
		if len(group[0]) == 1 && len(group[1]) == 1 {
			continue
		}
		if len(group[0]) == 0 || len(group[1]) == 0 {
			continue
		}
		if len(group[0]) > ambiguousGroupCap || len(group[1]) > ambiguousGroupCap {
			m.matchBySiblingOrder(group, take)
			continue
		}
		m.matchByScore(group, oldChildren, newChildren, oldTaken, newTaken, take)
	}

	result := MatchResult{Matched: matched}
	sort.Slice(result.Matched, func(i, j int) bool {
		return oldIndex[result.Matched[i].Old] < oldIndex[result.Matched[j].Old]
	})
	for i, ref := range oldChildren {
		if !oldTaken[i] {
			result.UnmatchedOld = append(result.UnmatchedOld, ref)
		}
	}
	for i, ref := range newChildren {
		if !newTaken[i] {
			result.UnmatchedNew = append(result.UnmatchedNew, ref)
		}
	}
	return result
}

// pinByParentReferences matches children named by reference properties held
// on both parents. A shared pointer property is confirmed identity and
// outranks any scored alternative. Properties are visited in sorted order.
func (m *Matcher) pinByParentReferences(oldParent, newParent scene.Ref, oldIndex, newIndex map[scene.Ref]int, oldTaken, newTaken []bool, take func(oi, ni int)) {
	oldInst := m.oldTree.Get(oldParent)
	newInst := m.newTree.Get(newParent)
	if oldInst == nil || newInst == nil {
		return
	}
	oldTargets := oldInst.ReferenceTargets()
	newTargets := newInst.ReferenceTargets()
	if len(oldTargets) == 0 || len(newTargets) == 0 {
		return
	}

	names := make([]string, 0, len(oldTargets))
	for name := range oldTargets {
		if _, ok := newTargets[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		oi, ok := oldIndex[oldTargets[name]]
		if !ok || oldTaken[oi] {
			continue
		}
		ni, ok := newIndex[newTargets[name]]
		if !ok || newTaken[ni] {
			continue
		}
		take(oi, ni)
	}
}

func (m *Matcher) matchBySiblingOrder(group [2][]int, take func(oi, ni int)) {
	n := len(group[0])
	if len(group[1]) < n {
		n = len(group[1])
	}
	for i := 0; i < n; i++ {
		take(group[0][i], group[1][i])
	}
}

type scoredPair struct {
	cost int
	oi   int
	ni   int
}

// matchByScore resolves an ambiguous group greedily: score every candidate
// pair, sort by (cost, old index, new index), then repeatedly take the best
// pair whose members are both free. Not globally optimal, but ambiguous
// groups are expected to stay small.
func (m *Matcher) matchByScore(group [2][]int, oldChildren, newChildren []scene.Ref, oldTaken, newTaken []bool, take func(oi, ni int)) {
	pairs := make([]scoredPair, 0, len(group[0])*len(group[1]))
	best := math.MaxInt
	for _, oi := range group[0] {
		for _, ni := range group[1] {
			cost := m.ChangeCount(oldChildren[oi], newChildren[ni], best)
			if cost < best {
				best = cost
			}
			pairs = append(pairs, scoredPair{cost: cost, oi: oi, ni: ni})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].cost != pairs[j].cost {
			return pairs[i].cost < pairs[j].cost
		}
		if pairs[i].oi != pairs[j].oi {
			return pairs[i].oi < pairs[j].oi
		}
		return pairs[i].ni < pairs[j].ni
	})
	for _, pair := range pairs {
		if oldTaken[pair.oi] || newTaken[pair.ni] {
			continue
		}
		take(pair.oi, pair.ni)
	}
}

// ChangeCount returns the number of discrete edits needed to turn the old
// subtree into the new one. budget is an upper bound from an already-scored
// cheaper candidate; once the running total reaches it the pair cannot win
// and scoring returns early, before recursing into children. Equal subtree
// digests short-circuit to zero.
func (m *Matcher) ChangeCount(oldRef, newRef scene.Ref, budget int) int {
	oldInst := m.oldTree.Get(oldRef)
	newInst := m.newTree.Get(newRef)
	if oldInst == nil || newInst == nil {
		return UnmatchedPenalty
	}

	if m.oldHash.SubtreeDigest(m.oldTree, oldRef) == m.newHash.SubtreeDigest(m.newTree, newRef) {
		return 0
	}

	cost := OwnStateCost(oldInst, newInst)
	if cost >= budget {
		return cost
	}

	children := m.MatchChildren(oldRef, newRef)
	for _, pair := range children.Matched {
		cost += m.ChangeCount(pair.Old, pair.New, budget-cost)
		if cost >= budget {
			return cost
		}
	}
	cost += UnmatchedPenalty * (len(children.UnmatchedOld) + len(children.UnmatchedNew))
	return cost
}
