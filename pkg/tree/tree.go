// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package tree is the registry of families and people discovered by a crawl.
//
// A Tree is the single authority on whether a node has been seen.
// Insertion is an atomic test-and-set: for any id, exactly one caller of
// AddFamilyIfAbsent or AddPersonIfAbsent gets true, no matter how many call concurrently.
//
// Concurrency: all methods are safe for concurrent use.
// Entries are never removed. Snapshot methods ([Tree.Families], [Tree.Persons])
// are intended for a quiesced tree after a crawl has returned.
package tree

import (
	"cmp"
	"slices"
	"sync"

	"github.com/pedigree/pedigree/pkg/pedigree"
)

// Tree holds families and people by id.
type Tree struct {
	m        sync.RWMutex
	families map[pedigree.FamilyID]*pedigree.Family
	persons  map[pedigree.PersonID]*pedigree.Person
}

// New empty tree.
func New() *Tree {
	return &Tree{
		families: map[pedigree.FamilyID]*pedigree.Family{},
		persons:  map[pedigree.PersonID]*pedigree.Person{},
	}
}

func (t *Tree) HasFamily(id pedigree.FamilyID) bool {
	t.m.RLock()
	defer t.m.RUnlock()
	_, ok := t.families[id]
	return ok
}

func (t *Tree) HasPerson(id pedigree.PersonID) bool {
	t.m.RLock()
	defer t.m.RUnlock()
	_, ok := t.persons[id]
	return ok
}

// AddFamilyIfAbsent stores f unless a family with the same id is present.
// Returns true if this call stored f.
func (t *Tree) AddFamilyIfAbsent(f *pedigree.Family) bool {
	t.m.Lock()
	defer t.m.Unlock()
	if _, ok := t.families[f.ID]; ok {
		return false
	}
	t.families[f.ID] = f
	return true
}

// AddPersonIfAbsent stores p unless a person with the same id is present.
// Returns true if this call stored p.
func (t *Tree) AddPersonIfAbsent(p *pedigree.Person) bool {
	t.m.Lock()
	defer t.m.Unlock()
	if _, ok := t.persons[p.ID]; ok {
		return false
	}
	t.persons[p.ID] = p
	return true
}

// Family returns the family with id, or nil.
func (t *Tree) Family(id pedigree.FamilyID) *pedigree.Family {
	t.m.RLock()
	defer t.m.RUnlock()
	return t.families[id]
}

// Person returns the person with id, or nil.
func (t *Tree) Person(id pedigree.PersonID) *pedigree.Person {
	t.m.RLock()
	defer t.m.RUnlock()
	return t.persons[id]
}

// Len returns the number of families and people.
func (t *Tree) Len() (families, persons int) {
	t.m.RLock()
	defer t.m.RUnlock()
	return len(t.families), len(t.persons)
}

// Families returns all families sorted by id.
func (t *Tree) Families() []*pedigree.Family {
	t.m.RLock()
	defer t.m.RUnlock()
	list := make([]*pedigree.Family, 0, len(t.families))
	for _, f := range t.families {
		list = append(list, f)
	}
	slices.SortFunc(list, func(a, b *pedigree.Family) int { return cmp.Compare(a.ID, b.ID) })
	return list
}

// Persons returns all people sorted by id.
func (t *Tree) Persons() []*pedigree.Person {
	t.m.RLock()
	defer t.m.RUnlock()
	list := make([]*pedigree.Person, 0, len(t.persons))
	for _, p := range t.persons {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b *pedigree.Person) int { return cmp.Compare(a.ID, b.ID) })
	return list
}

// FamilyIDs returns sorted family ids.
func (t *Tree) FamilyIDs() []pedigree.FamilyID {
	var ids []pedigree.FamilyID
	for _, f := range t.Families() {
		ids = append(ids, f.ID)
	}
	return ids
}

// PersonIDs returns sorted person ids.
func (t *Tree) PersonIDs() []pedigree.PersonID {
	var ids []pedigree.PersonID
	for _, p := range t.Persons() {
		ids = append(ids, p.ID)
	}
	return ids
}
