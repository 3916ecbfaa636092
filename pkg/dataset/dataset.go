// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package dataset is an in-memory pedigree that implements [pedigree.Source].
//
// A dataset can be loaded from a YAML or JSON file, or generated.
// It is the backing store for the pedigree data server, and a convenient source for tests.
package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/unique"
	"sigs.k8s.io/yaml"
)

var _ pedigree.Source = &Dataset{}

// Dataset is an immutable collection of families and persons with a root family.
// Safe for concurrent use once built.
type Dataset struct {
	Root     pedigree.FamilyID  `json:"root"`
	Families []*pedigree.Family `json:"families"`
	Persons  []*pedigree.Person `json:"persons"`

	families map[pedigree.FamilyID]*pedigree.Family
	persons  map[pedigree.PersonID]*pedigree.Person
}

// New indexes a dataset. Returns an error if an id is duplicated or the root is not a family.
func New(root pedigree.FamilyID, families []*pedigree.Family, persons []*pedigree.Person) (*Dataset, error) {
	d := &Dataset{Root: root, Families: families, Persons: persons}
	return d, d.index()
}

func (d *Dataset) index() error {
	d.families = make(map[pedigree.FamilyID]*pedigree.Family, len(d.Families))
	d.persons = make(map[pedigree.PersonID]*pedigree.Person, len(d.Persons))
	var errs unique.Errors
	for _, f := range d.Families {
		if _, ok := d.families[f.ID]; ok {
			errs.Add(fmt.Errorf("duplicate family id: %q", f.ID))
		}
		d.families[f.ID] = f
	}
	for _, p := range d.Persons {
		if _, ok := d.persons[p.ID]; ok {
			errs.Add(fmt.Errorf("duplicate person id: %q", p.ID))
		}
		d.persons[p.ID] = p
	}
	if _, ok := d.families[d.Root]; d.Root != "" && !ok {
		errs.Add(fmt.Errorf("root family not found: %q", d.Root))
	}
	return errs.Err()
}

// Decode a YAML or JSON dataset.
func Decode(b []byte) (*Dataset, error) {
	d := &Dataset{}
	if err := yaml.UnmarshalStrict(b, d); err != nil {
		return nil, err
	}
	return d, d.index()
}

// Load a YAML or JSON dataset file.
func Load(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return d, nil
}

// Family implements [pedigree.Source].
func (d *Dataset) Family(ctx context.Context, id pedigree.FamilyID) (*pedigree.Family, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f, ok := d.families[id]; ok {
		return f, nil
	}
	return nil, pedigree.FamilyNotFound(id)
}

// Person implements [pedigree.Source].
func (d *Dataset) Person(ctx context.Context, id pedigree.PersonID) (*pedigree.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p, ok := d.persons[id]; ok {
		return p, nil
	}
	return nil, pedigree.PersonNotFound(id)
}

// Len returns the number of families and persons.
func (d *Dataset) Len() (families, persons int) { return len(d.families), len(d.persons) }
