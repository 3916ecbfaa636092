// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package pedigree defines the records and interfaces shared by the pedigree crawler.
//
// A [Family] links to up to two spouses and any number of children.
// A [Person] links back to the family they were born into, their parent family.
// Following parent families from a root family is an ascent towards older generations.
package pedigree

import (
	"context"
	"fmt"
)

// FamilyID identifies a family.
type FamilyID string

// PersonID identifies a person.
type PersonID string

// Family record, immutable once fetched.
type Family struct {
	ID FamilyID `json:"id"`
	// Husband is empty if the family has no husband.
	Husband PersonID `json:"husband_id,omitempty"`
	// Wife is empty if the family has no wife.
	Wife PersonID `json:"wife_id,omitempty"`
	// Children in the order received, duplicates are possible.
	Children []PersonID `json:"children,omitempty"`
}

// Spouses returns the non-empty husband and wife ids.
func (f *Family) Spouses() []PersonID {
	spouses := make([]PersonID, 0, 2)
	for _, id := range []PersonID{f.Husband, f.Wife} {
		if id != "" {
			spouses = append(spouses, id)
		}
	}
	return spouses
}

// Members returns spouses followed by children.
func (f *Family) Members() []PersonID { return append(f.Spouses(), f.Children...) }

// IsLeaf is true if the family has no husband, wife or children.
func (f *Family) IsLeaf() bool { return f.Husband == "" && f.Wife == "" && len(f.Children) == 0 }

func (f *Family) String() string { return fmt.Sprintf("family(%v)", f.ID) }

// Person record, immutable once fetched.
type Person struct {
	ID   PersonID `json:"id"`
	Name string   `json:"name,omitempty"`
	// Birth is an optional free-form birth date.
	Birth string `json:"birth,omitempty"`
	// ParentFamily is the family in which this person is a child, empty if unknown.
	ParentFamily FamilyID `json:"parent_id,omitempty"`
	// Family is the family in which this person is a spouse, empty if none.
	Family FamilyID `json:"family_id,omitempty"`
}

func (p *Person) String() string { return fmt.Sprintf("person(%v)", p.ID) }

// Source is a remote data source of families and people.
//
// Methods return an error satisfying [IsNotFound] if the id does not exist,
// and a [*TransportError] if the source could not be reached.
// Implementations must be safe for concurrent use.
type Source interface {
	Family(ctx context.Context, id FamilyID) (*Family, error)
	Person(ctx context.Context, id PersonID) (*Person, error)
}
