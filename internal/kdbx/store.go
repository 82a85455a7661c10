// Package kdbx implements the encrypted credential-store engine: an
// in-memory tree of groups and entries, opened from and saved to an
// AES-GCM-sealed file. The sync engine consumes it through a narrow
// interface; nothing here knows about replicas or reconciliation.
package kdbx

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jrabinow/kpsync/internal/common"
)

// Store is one opened credential file: a mutable tree of groups and
// entries plus the key material needed to save it back to disk.
type Store struct {
	filename string
	key      []byte
	salt     []byte
	root     *Group
}

// New returns an empty in-memory store associated with filename. The
// store has no key material until created or opened through the file
// layer, so Save will fail; tests exercise the tree without touching disk.
func New(filename string) *Store {
	return &Store{
		filename: filename,
		root:     &Group{id: uuid.NewString()},
	}
}

func (s *Store) Filename() string { return s.filename }
func (s *Store) Root() *Group     { return s.root }

// Key returns the derived master key the store was opened with. It is what
// the handle cache holds between runs.
func (s *Store) Key() []byte { return s.key }

// FindGroups returns all groups whose name matches, case-insensitively,
// anywhere in the tree. The root group has an empty name and never matches.
func (s *Store) FindGroups(name string) []*Group {
	var out []*Group
	var walk func(g *Group)
	walk = func(g *Group) {
		for _, sub := range g.groups {
			if strings.EqualFold(sub.name, name) {
				out = append(out, sub)
			}
			walk(sub)
		}
	}
	walk(s.root)
	return out
}

// FindGroupByPath resolves a full path from the root, matching each
// segment exactly. An empty path resolves to the root group.
func (s *Store) FindGroupByPath(path []string) *Group {
	g := s.root
	for _, seg := range path {
		if g = g.child(seg); g == nil {
			return nil
		}
	}
	return g
}

// FindEntries collects entries whose title matches case-insensitively,
// searching recursively under scope (the whole store when scope is nil).
// Entries reachable from a "Recycle Bin" group are excluded, including
// the case where scope itself sits inside the recycle bin.
func (s *Store) FindEntries(title string, scope *Group) []*Entry {
	if scope == nil {
		scope = s.root
	}

	var out []*Entry
	var walk func(g *Group)
	walk = func(g *Group) {
		for _, e := range g.entries {
			if strings.EqualFold(e.title, title) && !inRecycleBin(e.group) {
				out = append(out, e)
			}
		}
		for _, sub := range g.groups {
			if strings.EqualFold(sub.name, common.RecycleBinName) {
				continue
			}
			walk(sub)
		}
	}
	walk(scope)
	return out
}

// inRecycleBin reports whether g or any of its ancestors is the reserved
// recycle-bin group.
func inRecycleBin(g *Group) bool {
	for ; g != nil; g = g.parent {
		if strings.EqualFold(g.name, common.RecycleBinName) {
			return true
		}
	}
	return false
}

// FindEntryByPath resolves a full entry path (group path + title) exactly,
// returning nil when either the group or the entry is missing.
func (s *Store) FindEntryByPath(path []string) *Entry {
	if len(path) == 0 {
		return nil
	}
	g := s.FindGroupByPath(path[:len(path)-1])
	if g == nil {
		return nil
	}
	title := path[len(path)-1]
	for _, e := range g.entries {
		if e.title == title {
			return e
		}
	}
	return nil
}

// AddGroup creates a child group under parent with the given name.
// Sibling-name uniqueness is the caller's concern (the sync engine checks
// for an existing group before creating).
func (s *Store) AddGroup(parent *Group, name string, icon []byte, notes string) *Group {
	g := &Group{
		id:     uuid.NewString(),
		name:   name,
		notes:  notes,
		icon:   icon,
		parent: parent,
	}
	parent.groups = append(parent.groups, g)
	return g
}

// AddEntry creates an entry under group. Username and password are
// required concrete values; the remaining fields keep their optionality.
// The expires flag follows from whether an expiry time was supplied.
func (s *Store) AddEntry(group *Group, title, username, password string, url, notes *string, expiryTime *time.Time, tags []string, icon []byte) *Entry {
	e := &Entry{
		id:         uuid.NewString(),
		title:      title,
		username:   &username,
		password:   &password,
		url:        url,
		notes:      notes,
		tags:       tags,
		icon:       icon,
		expires:    expiryTime != nil,
		expiryTime: expiryTime,
		modified:   time.Now().UTC(),
		group:      group,
	}
	group.entries = append(group.entries, e)
	return e
}
