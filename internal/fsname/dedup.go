package fsname

import (
	"path"
	"sort"
	"strconv"
	"strings"
)

// ParseDedupSuffix splits a trailing "~N" collision suffix from a filesystem
// stem. "Foo~3" parses to ("Foo", 3, true); "Foo", "Foo~0" and "Foo~abc" do
// not carry a valid suffix.
func ParseDedupSuffix(stem string) (base string, suffix int, ok bool) {
	idx := strings.LastIndexByte(stem, '~')
	if idx < 0 {
		return stem, 0, false
	}
	n, err := strconv.Atoi(stem[idx+1:])
	if err != nil || n <= 0 {
		return stem, 0, false
	}
	return stem[:idx], n, true
}

// StripDedupSuffix returns the stem without its "~N" suffix, or the stem
// unchanged when it has none.
func StripDedupSuffix(stem string) string {
	base, _, ok := ParseDedupSuffix(stem)
	if !ok {
		return stem
	}
	return base
}

// BuildDedupName assembles a filesystem name from a base stem, an optional
// suffix number (0 means none) and an optional extension ("" for directory
// artifacts).
func BuildDedupName(base string, suffix int, extension string) string {
	stem := base
	if suffix > 0 {
		stem = base + "~" + strconv.Itoa(suffix)
	}
	if extension == "" {
		return stem
	}
	return stem + "." + extension
}

// CleanupKind classifies the rename required after a dedup group member is
// removed.
type CleanupKind int

const (
	// CleanupNone means no rename is needed. Gaps in the suffix sequence
	// are tolerated; removing "Foo~1" from {Foo, Foo~1, Foo~2} leaves
	// Foo~2 alone.
	CleanupNone CleanupKind = iota
	// CleanupRemoveSuffix means the group shrank to one member and the
	// survivor's suffix is dropped.
	CleanupRemoveSuffix
	// CleanupPromoteLowest means the bare-name holder was removed and the
	// lowest-suffixed member takes the bare name.
	CleanupPromoteLowest
)

var cleanupKindNames = []string{
	"none",
	"remove-suffix",
	"promote-lowest",
}

func (k CleanupKind) String() string {
	if int(k) < len(cleanupKindNames) {
		return cleanupKindNames[k]
	}
	return "unknown"
}

// CleanupAction is the single rename (at most) a dedup group needs after one
// member is removed. FromPath and ToPath are empty for CleanupNone.
type CleanupAction struct {
	Kind     CleanupKind
	FromPath string
	ToPath   string
}

// ComputeCleanupAction decides the cleanup rename after removing one member
// of a dedup group. remainingStems are the stems of the siblings that still
// exist, enumerated from the parent before the removal is committed;
// removedBase reports whether the removed member held the bare base name.
// At most one member is ever renamed.
func ComputeCleanupAction(base, extension string, remainingStems []string, removedBase bool, parentDir string) CleanupAction {
	switch len(remainingStems) {
	case 0:
		return CleanupAction{Kind: CleanupNone}
	case 1:
		_, suffix, ok := ParseDedupSuffix(remainingStems[0])
		if !ok {
			return CleanupAction{Kind: CleanupNone}
		}
		return CleanupAction{
			Kind:     CleanupRemoveSuffix,
			FromPath: path.Join(parentDir, BuildDedupName(base, suffix, extension)),
			ToPath:   path.Join(parentDir, BuildDedupName(base, 0, extension)),
		}
	default:
		if !removedBase {
			return CleanupAction{Kind: CleanupNone}
		}
		suffixes := make([]int, 0, len(remainingStems))
		for _, stem := range remainingStems {
			if _, n, ok := ParseDedupSuffix(stem); ok {
				suffixes = append(suffixes, n)
			}
		}
		if len(suffixes) == 0 {
			return CleanupAction{Kind: CleanupNone}
		}
		sort.Ints(suffixes)
		return CleanupAction{
			Kind:     CleanupPromoteLowest,
			FromPath: path.Join(parentDir, BuildDedupName(base, suffixes[0], extension)),
			ToPath:   path.Join(parentDir, BuildDedupName(base, 0, extension)),
		}
	}
}

// RepairGroup resolves a dedup group where external mutation left an invalid
// assignment, e.g. two members both claiming the bare base name. Members are
// considered in discovery order; the earliest keeps its name, later members
// that collide are moved to the next free suffix. The result maps a member's
// index to its corrected stem and contains entries only for members that
// must move.
func RepairGroup(stems []string) map[int]string {
	taken := make(map[string]bool, len(stems))
	var moved map[int]string
	for i, stem := range stems {
		lower := strings.ToLower(stem)
		if !taken[lower] {
			taken[lower] = true
			continue
		}
		base := StripDedupSuffix(stem)
		fixed := Deduplicate(base, taken)
		taken[strings.ToLower(fixed)] = true
		if moved == nil {
			moved = make(map[int]string)
		}
		moved[i] = fixed
	}
	return moved
}
