// Package groups manages user-defined named sets of tracked product ids and
// their persistence.
package groups

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// DefaultGroup always exists and cannot be deleted.
	DefaultGroup = "My Favorites"

	// AllProducts is the pseudo-selection meaning "no concrete group".
	AllProducts = "all"
)

// Set is a membership set of product ids.
type Set map[string]struct{}

// Collection maps group names to membership sets. It is an immutable value:
// every operation returns a new Collection and leaves the receiver untouched,
// so observers see either the old or the new collection, never a partial one.
type Collection struct {
	groups map[string]Set
}

// New returns a collection holding only the empty default group.
func New() Collection {
	return Collection{groups: map[string]Set{DefaultGroup: {}}}
}

// Len returns the number of groups.
func (c Collection) Len() int {
	return len(c.groups)
}

// Has reports whether a concrete group with this name exists.
func (c Collection) Has(name string) bool {
	_, ok := c.groups[name]
	return ok
}

// IsConcrete reports whether name selects an existing group rather than the
// "all products" pseudo-selection.
func (c Collection) IsConcrete(name string) bool {
	return name != AllProducts && c.Has(name)
}

// Names returns the group names in German collation order.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	collate.New(language.German).SortStrings(names)
	return names
}

// Members returns the sorted ids of a group, nil for unknown groups.
func (c Collection) Members(name string) []string {
	set, ok := c.groups[name]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Size returns the number of members of a group.
func (c Collection) Size(name string) int {
	return len(c.groups[name])
}

// Contains reports whether id is a member of the named group. It is false for
// the "all" pseudo-selection and for unknown groups.
func (c Collection) Contains(id, name string) bool {
	if name == AllProducts {
		return false
	}
	set, ok := c.groups[name]
	if !ok {
		return false
	}
	_, ok = set[id]
	return ok
}

// AddGroup inserts an empty group. Blank, reserved and existing names are no-ops.
func (c Collection) AddGroup(name string) (Collection, bool) {
	name = strings.TrimSpace(name)
	if name == "" || name == AllProducts || c.Has(name) {
		return c, false
	}
	next := c.clone()
	next.groups[name] = Set{}
	return next, true
}

// DeleteGroup removes a group. Blank, unknown and default names are no-ops.
func (c Collection) DeleteGroup(name string) (Collection, bool) {
	if name == "" || name == DefaultGroup || !c.Has(name) {
		return c, false
	}
	next := c.clone()
	delete(next.groups, name)
	return next, true
}

// AddProduct adds id to the named group. Adding a present id is a no-op.
func (c Collection) AddProduct(id, name string) (Collection, bool) {
	if id == "" || !c.IsConcrete(name) || c.Contains(id, name) {
		return c, false
	}
	next := c.cloneWith(name)
	next.groups[name][id] = struct{}{}
	return next, true
}

// RemoveProduct removes id from the named group. Removing an absent id is a no-op.
func (c Collection) RemoveProduct(id, name string) (Collection, bool) {
	if !c.Contains(id, name) {
		return c, false
	}
	next := c.cloneWith(name)
	delete(next.groups[name], id)
	return next, true
}

// Equal reports whether both collections hold the same names and memberships.
func (c Collection) Equal(other Collection) bool {
	if len(c.groups) != len(other.groups) {
		return false
	}
	for name, set := range c.groups {
		otherSet, ok := other.groups[name]
		if !ok || len(set) != len(otherSet) {
			return false
		}
		for id := range set {
			if _, ok := otherSet[id]; !ok {
				return false
			}
		}
	}
	return true
}

// clone copies the name map; sets are shared until modified.
func (c Collection) clone() Collection {
	groups := make(map[string]Set, len(c.groups)+1)
	for name, set := range c.groups {
		groups[name] = set
	}
	return Collection{groups: groups}
}

// cloneWith clones the collection and deep-copies the named set.
func (c Collection) cloneWith(name string) Collection {
	next := c.clone()
	set := make(Set, len(c.groups[name])+1)
	for id := range c.groups[name] {
		set[id] = struct{}{}
	}
	next.groups[name] = set
	return next
}
