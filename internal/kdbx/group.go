package kdbx

import "strings"

// Group is a node in a store's tree. The root group has an empty name and
// no parent; every other group belongs to exactly one parent.
type Group struct {
	id      string
	name    string
	notes   string
	icon    []byte
	parent  *Group
	groups  []*Group
	entries []*Entry
}

func (g *Group) Name() string  { return g.name }
func (g *Group) Notes() string { return g.notes }
func (g *Group) Icon() []byte  { return g.icon }

func (g *Group) Parent() *Group    { return g.parent }
func (g *Group) Groups() []*Group  { return g.groups }
func (g *Group) Entries() []*Entry { return g.entries }

func (g *Group) IsRoot() bool { return g.parent == nil }

// Path returns the segment names from the root (exclusive) down to this
// group. The root group's path is empty.
func (g *Group) Path() []string {
	if g.parent == nil {
		return nil
	}
	return append(g.parent.Path(), g.name)
}

func (g *Group) String() string {
	if g.IsRoot() {
		return "Group: /"
	}
	return "Group: " + strings.Join(g.Path(), "/")
}

// child returns the direct subgroup with the exact given name, or nil.
func (g *Group) child(name string) *Group {
	for _, sub := range g.groups {
		if sub.name == name {
			return sub
		}
	}
	return nil
}
