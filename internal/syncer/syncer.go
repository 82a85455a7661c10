package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/kdbx"
	"github.com/jrabinow/kpsync/internal/logging"
)

// Reconciler propagates the most recently modified copy of a named entry
// across a set of replicas. It mutates store trees in memory only; saving
// is the caller's responsibility.
type Reconciler struct {
	log logging.Logger
}

func NewReconciler(log logging.Logger) *Reconciler {
	return &Reconciler{log: log.With("module", "syncer")}
}

// SyncEntry reconciles one entry path across the given replicas and
// returns the replicas whose in-memory state was mutated, in replica
// order. The canonical replica is never mutated. On AmbiguousEntry or
// EntryNotFound no replica is mutated at all.
func (r *Reconciler) SyncEntry(ctx context.Context, replicas []Store, entryPath string) ([]Store, error) {
	groupPath, title, err := SplitEntryPath(entryPath)
	if err != nil {
		return nil, err
	}

	matches := make([]*kdbx.Entry, len(replicas))
	for i, h := range replicas {
		// Scope is resolved by group leaf name, not full path: a
		// same-named group elsewhere in the tree can hijack the scope.
		// Known precision gap, kept as documented behavior.
		var scope *kdbx.Group
		if len(groupPath) > 0 {
			if gs := h.FindGroups(groupPath[len(groupPath)-1]); len(gs) > 0 {
				scope = gs[0]
			}
		}

		found := h.FindEntries(title, scope)
		if len(found) > 1 {
			return nil, fmt.Errorf("%w: %q in %s", common.ErrAmbiguousEntry, title, h.Filename())
		}
		if len(found) == 1 {
			matches[i] = found[0]
		}
	}

	// Latest modification wins; on a tie the earliest replica in
	// declaration order is kept (strict After while scanning in order).
	canonical := -1
	for i, e := range matches {
		if e == nil {
			continue
		}
		if canonical == -1 || e.Modified().After(matches[canonical].Modified()) {
			canonical = i
		}
	}
	if canonical == -1 {
		return nil, fmt.Errorf("%w: %q, check the entry title for typos", common.ErrEntryNotFound, title)
	}

	r.log.Debug(ctx, "canonical replica selected",
		"entry", entryPath,
		"file", replicas[canonical].Filename(),
		"modified", matches[canonical].Modified())

	var dirty []Store
	for i, h := range replicas {
		if i == canonical {
			continue
		}
		if _, changed := r.PersistEntry(ctx, h, matches[canonical]); changed {
			dirty = append(dirty, h)
		}
	}
	return dirty, nil
}

// PersistEntry merges the canonical entry into store, creating the group
// path and the entry as needed. It returns the destination entry and
// whether the store was mutated.
func (r *Reconciler) PersistEntry(ctx context.Context, store Store, canonical *kdbx.Entry) (*kdbx.Entry, bool) {
	group, dirty := r.EnsureGroup(ctx, store, canonical.Group().Path(),
		canonical.Group().Icon(), canonical.Group().Notes())

	existing := store.FindEntryByPath(canonical.Path())
	if existing == nil {
		r.log.Info(ctx, "adding entry",
			"entry", canonical.String(), "group", group.String(), "file", store.Filename())

		var expiry *time.Time
		if canonical.Expires() {
			expiry = canonical.ExpiryTime()
		}
		created := store.AddEntry(group,
			canonical.Title(),
			orEmpty(canonical.Username()),
			orEmpty(canonical.Password()),
			canonical.URL(),
			canonical.Notes(),
			expiry,
			canonical.Tags(),
			canonical.Icon())
		return created, true
	}

	dst := fieldsOf(existing)
	merged, changed := Merge(dst, fieldsOf(canonical))
	if changed {
		r.log.Info(ctx, "updating entry",
			"entry", canonical.String(), "group", group.String(), "file", store.Filename())

		existing.SetTitle(merged.Title)
		existing.SetUsername(merged.Username)
		existing.SetPassword(merged.Password)
		existing.SetURL(merged.URL)
		existing.SetNotes(merged.Notes)
		existing.SetTags(merged.Tags)
		existing.SetIcon(merged.Icon)
		existing.SetExpiryTime(merged.ExpiryTime)
		dirty = true
	}
	return existing, dirty
}

// EnsureGroup materializes a group path, creating missing ancestors.
// Repeated calls never create duplicate siblings. Icon and notes are
// applied only to a freshly created leaf; ancestors are created bare.
func (r *Reconciler) EnsureGroup(ctx context.Context, store Store, groupPath []string, icon []byte, notes string) (*kdbx.Group, bool) {
	if len(groupPath) == 0 {
		return store.Root(), false
	}
	if g := store.FindGroupByPath(groupPath); g != nil {
		return g, false
	}

	parent, _ := r.EnsureGroup(ctx, store, groupPath[:len(groupPath)-1], nil, "")

	r.log.Info(ctx, "adding group",
		"group", strings.Join(groupPath, "/"), "file", store.Filename())
	return store.AddGroup(parent, groupPath[len(groupPath)-1], icon, notes), true
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
