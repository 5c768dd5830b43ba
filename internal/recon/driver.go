package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/scenekit/scenesync/internal/fsname"
	"github.com/scenekit/scenesync/internal/scene"
)

var (
	ErrReconcileInFlight = errors.New("reconcile already in flight")
	ErrWorkspaceLocked   = errors.New("workspace locked by another process")
)

const lockFileName = ".scenesync.lock"

// DriverConfig carries the optional collaborators of a Driver.
type DriverConfig struct {
	// Workspace is the artifact root. When set, Apply takes an exclusive
	// file lock under it so only one process mutates the projection.
	Workspace string
	// Ignore excludes matching subtrees from reconciliation.
	Ignore *IgnoreList
	// Journal records a waypoint per applied pass when set.
	Journal *Journal
}

// Driver orchestrates reconciliation of a live tree against an incoming
// snapshot: it matches the trees recursively, turns the outcome into an
// edit set, resolves reference properties in a second pass, and applies the
// edits. At most one reconcile per Driver runs at a time.
type Driver struct {
	live *scene.Tree
	cfg  DriverConfig
	lock *flock.Flock
	mu   sync.Mutex
}

func NewDriver(live *scene.Tree, cfg DriverConfig) *Driver {
	d := &Driver{live: live, cfg: cfg}
	if cfg.Workspace != "" {
		d.lock = flock.New(filepath.Join(cfg.Workspace, lockFileName))
	}
	return d
}

// Live returns the tree the driver mutates.
func (d *Driver) Live() *scene.Tree {
	return d.live
}

type reconcileState struct {
	edits EditSet
	// newToOld maps matched incoming identities to live identities.
	newToOld map[scene.Ref]scene.Ref
	// created maps incoming identities inside create snapshots to their
	// clone identities.
	created map[scene.Ref]scene.Ref
	// snapshots are the roots of create snapshots, for the second pass.
	snapshots []*scene.Instance
	// cleaned guards dedup cleanup so a group losing several members in
	// one pass yields at most one rename.
	cleaned map[cleanupKey]bool
}

// cleanupKey identifies one dedup group within a parent.
type cleanupKey struct {
	parent scene.Ref
	base   string
	ext    string
}

// Reconcile computes the edit set that turns the live tree into the
// incoming snapshot. Neither tree is mutated; the caller applies the result
// with Apply or discards it. Reference-typed properties are translated to
// live identities in a second pass after the whole tree has been matched,
// since a target may itself be created by this pass.
func (d *Driver) Reconcile(ctx context.Context, incoming scene.Provider) (*EditSet, error) {
	if !d.mu.TryLock() {
		return nil, ErrReconcileInFlight
	}
	defer d.mu.Unlock()

	tStart := time.Now()
	matcher := NewMatcher(d.live, incoming)
	st := &reconcileState{
		newToOld: make(map[scene.Ref]scene.Ref),
		created:  make(map[scene.Ref]scene.Ref),
		cleaned:  make(map[cleanupKey]bool),
	}

	if err := d.reconcile(ctx, matcher, incoming, d.live.RootRef(), incoming.RootRef(), "", st); err != nil {
		return nil, err
	}
	d.translateReferences(incoming, st)

	creates, updates, deletes := st.edits.Counts()
	slog.Info("reconcile computed",
		"creates", creates,
		"updates", updates,
		"deletes", deletes,
		"renames", len(st.edits.Renames),
		"took", time.Since(tStart))
	return &st.edits, nil
}

func (d *Driver) reconcile(ctx context.Context, m *Matcher, incoming scene.Provider, oldRef, newRef scene.Ref, fsPath string, st *reconcileState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st.newToOld[newRef] = oldRef

	oldInst := d.live.Get(oldRef)
	newInst := incoming.Get(newRef)
	if oldInst == nil || newInst == nil {
		return fmt.Errorf("reconcile: missing instance at %q", fsPath)
	}

	props := DiffProperties(oldInst, newInst)
	tags := DiffTags(oldInst, newInst)
	attrs := DiffAttributes(oldInst, newInst)
	newName := ""
	if oldInst.Name != newInst.Name {
		// Only reference-pinned pairs can disagree on name.
		newName = newInst.Name
	}
	if len(props) > 0 || !tags.Empty() || len(attrs) > 0 || newName != "" {
		st.edits.Edits = append(st.edits.Edits, Edit{
			Kind:       EditUpdate,
			Target:     oldRef,
			NewName:    newName,
			Properties: props,
			Tags:       tags,
			Attributes: attrs,
		})
	}

	res := m.MatchChildren(oldRef, newRef)

	for _, pair := range res.Matched {
		childPath := path.Join(fsPath, fsname.NameFor(d.live, pair.Old))
		if d.cfg.Ignore.Match(childPath) {
			continue
		}
		if err := d.reconcile(ctx, m, incoming, pair.Old, pair.New, childPath, st); err != nil {
			return err
		}
	}

	for _, ref := range res.UnmatchedNew {
		childPath := path.Join(fsPath, fsname.NameFor(incoming, ref))
		if d.cfg.Ignore.Match(childPath) {
			continue
		}
		snapshot, mapping := scene.CloneFrom(incoming, ref)
		if snapshot == nil {
			continue
		}
		for src, clone := range mapping {
			st.created[src] = clone
		}
		st.snapshots = append(st.snapshots, snapshot)
		st.edits.Edits = append(st.edits.Edits, Edit{
			Kind:     EditCreate,
			Parent:   oldRef,
			Snapshot: snapshot,
		})
	}

	deleted := make(map[scene.Ref]bool, len(res.UnmatchedOld))
	for _, ref := range res.UnmatchedOld {
		deleted[ref] = true
	}
	for _, ref := range res.UnmatchedOld {
		childPath := path.Join(fsPath, fsname.NameFor(d.live, ref))
		if d.cfg.Ignore.Match(childPath) {
			continue
		}
		st.edits.Edits = append(st.edits.Edits, Edit{Kind: EditDelete, Target: ref})
		if rename, ok := d.dedupCleanup(oldRef, ref, deleted, fsPath, st); ok {
			st.edits.Renames = append(st.edits.Renames, rename)
		}
	}
	return nil
}

// dedupCleanup computes the single rename, if any, to keep the removed
// child's dedup group minimal. It runs against the parent's remaining
// children while the removals are still uncommitted, since the group can
// only be enumerated through the parent. Each group is cleaned once per
// pass no matter how many of its members this pass deletes; the bare-name
// flag covers every deleted member, not just the one in hand.
func (d *Driver) dedupCleanup(parent, removed scene.Ref, deleted map[scene.Ref]bool, parentPath string, st *reconcileState) (Rename, bool) {
	stem, ext := d.artifactStem(removed)
	base, _, _ := fsname.ParseDedupSuffix(stem)
	key := cleanupKey{parent: parent, base: base, ext: ext}
	if st.cleaned[key] {
		return Rename{}, false
	}
	st.cleaned[key] = true

	var remaining []string
	removedBase := false
	for _, sibling := range d.live.ChildrenOf(parent) {
		sibStem, sibExt := d.artifactStem(sibling)
		if sibExt != ext || fsname.StripDedupSuffix(sibStem) != base {
			continue
		}
		if deleted[sibling] {
			if sibStem == base {
				removedBase = true
			}
			continue
		}
		remaining = append(remaining, sibStem)
	}

	action := fsname.ComputeCleanupAction(base, ext, remaining, removedBase, parentPath)
	if action.Kind == fsname.CleanupNone {
		return Rename{}, false
	}
	return Rename{FromPath: action.FromPath, ToPath: action.ToPath}, true
}

func (d *Driver) artifactStem(ref scene.Ref) (stem, ext string) {
	inst := d.live.Get(ref)
	if inst == nil {
		return "", ""
	}
	name := fsname.NameFor(d.live, ref)
	ext = fsname.FormatFor(inst, len(d.live.ChildrenOf(ref)) > 0).Extension()
	if ext != "" {
		stem = strings.TrimSuffix(name, "."+ext)
	} else {
		stem = name
	}
	return stem, ext
}

// translateReferences is the deferred second pass. Reference values inside
// updates and create snapshots still hold incoming-tree identities; they
// are rewritten to live identities for matched targets, to clone identities
// for targets created by this pass, and to nil when the target is gone.
func (d *Driver) translateReferences(incoming scene.Provider, st *reconcileState) {
	translate := func(value scene.Value) scene.Value {
		ref, ok := value.(scene.Reference)
		if !ok || ref.Target.IsNone() {
			return value
		}
		if clone, ok := st.created[ref.Target]; ok {
			return scene.Reference{Target: clone}
		}
		if live, ok := st.newToOld[ref.Target]; ok {
			return scene.Reference{Target: live}
		}
		slog.Warn("reference target not reconciled, dropping to nil")
		return scene.Reference{Target: scene.RefNone}
	}

	for i := range st.edits.Edits {
		edit := &st.edits.Edits[i]
		if edit.Kind != EditUpdate {
			continue
		}
		for j := range edit.Properties {
			edit.Properties[j].New = translate(edit.Properties[j].New)
		}
		for j := range edit.Attributes {
			edit.Attributes[j].New = translate(edit.Attributes[j].New)
		}
	}

	for _, snapshot := range st.snapshots {
		nodes := append([]*scene.Instance{snapshot}, snapshot.DetachedDescendants()...)
		for _, node := range nodes {
			for name, value := range node.Properties {
				node.Properties[name] = translate(value)
			}
			for name, value := range node.Attributes {
				node.Attributes[name] = translate(value)
			}
		}
	}
}

// Apply mutates the live tree with a computed edit set. Edits are ordered
// so that abandoning mid-application never leaves a dangling reference:
// creates first, then updates, then deletes last; Destroy additionally
// nulls any reference into a destroyed subtree. Artifact renames are the
// caller's side channel and are only journaled here.
func (d *Driver) Apply(ctx context.Context, edits *EditSet) error {
	if !d.mu.TryLock() {
		return ErrReconcileInFlight
	}
	defer d.mu.Unlock()

	if d.lock != nil {
		locked, err := d.lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock workspace: %w", err)
		}
		if !locked {
			return ErrWorkspaceLocked
		}
		defer d.lock.Unlock()
	}

	tStart := time.Now()
	for _, kind := range []EditKind{EditCreate, EditUpdate, EditDelete} {
		for _, edit := range edits.Edits {
			if edit.Kind != kind {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := d.applyEdit(edit); err != nil {
				return err
			}
		}
	}

	creates, updates, deletes := edits.Counts()
	if d.cfg.Journal != nil {
		wp := &Waypoint{
			StartedAt:  tStart,
			FinishedAt: time.Now(),
			Creates:    creates,
			Updates:    updates,
			Deletes:    deletes,
			Renames:    len(edits.Renames),
			Summary:    WaypointSummary{Renames: edits.Renames},
		}
		if _, err := d.cfg.Journal.Record(ctx, wp); err != nil {
			slog.Error("record reconcile waypoint", "error", err)
		}
	}

	slog.Info("reconcile applied",
		"creates", creates,
		"updates", updates,
		"deletes", deletes,
		"renames", len(edits.Renames),
		"took", time.Since(tStart))
	return nil
}

func (d *Driver) applyEdit(edit Edit) error {
	switch edit.Kind {
	case EditCreate:
		if _, err := d.live.InsertSubtree(edit.Parent, edit.Snapshot); err != nil {
			return fmt.Errorf("apply create: %w", err)
		}
	case EditUpdate:
		inst := d.live.Get(edit.Target)
		if inst == nil {
			return fmt.Errorf("apply update: %w", scene.ErrNotFound)
		}
		if edit.NewName != "" {
			inst.Name = edit.NewName
		}
		for _, diff := range edit.Properties {
			inst.SetProperty(diff.Name, diff.New)
		}
		for _, tag := range edit.Tags.Added {
			inst.Tags.Add(tag)
		}
		for _, tag := range edit.Tags.Removed {
			inst.Tags.Remove(tag)
		}
		for _, diff := range edit.Attributes {
			inst.SetAttribute(diff.Name, diff.New)
		}
	case EditDelete:
		if err := d.live.Destroy(edit.Target); err != nil && !errors.Is(err, scene.ErrNotFound) {
			return fmt.Errorf("apply delete: %w", err)
		}
	}
	return nil
}
