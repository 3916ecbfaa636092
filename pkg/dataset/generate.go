// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/pedigree/pedigree/pkg/pedigree"
)

const (
	rootYear       = 2000
	generationSpan = 25
	maxSiblings    = 3
)

var (
	maleNames   = []string{"Adam", "Brian", "Carlos", "David", "Ethan", "Frank", "George", "Henry", "Isaac", "James"}
	femaleNames = []string{"Alice", "Beatrice", "Clara", "Diana", "Emma", "Fiona", "Grace", "Hannah", "Irene", "Julia"}
	surnames    = []string{"Smith", "Jones", "Taylor", "Brown", "Wilson", "Evans", "Thomas", "Roberts", "Walker", "Wright"}
)

// Generate a complete ancestor tree of the given number of generations.
//
// Every family has a husband and a wife. Spouses in all but the oldest generation
// have parent families. Each family also has up to 3 extra children, the root family at least one.
// The result contains 2^generations - 1 families and depends only on generations and seed.
func Generate(generations int, seed uint64) *Dataset {
	g := &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	var root *pedigree.Family
	if generations > 0 {
		root = g.family(0, generations, nil)
	}
	d := &Dataset{Families: g.families, Persons: g.persons}
	if root != nil {
		d.Root = root.ID
	}
	if err := d.index(); err != nil {
		panic(err) // Generated ids are unique.
	}
	return d
}

type generator struct {
	rng      *rand.Rand
	families []*pedigree.Family
	persons  []*pedigree.Person
}

// family creates a family in generation gen, with child as one of its children if not nil,
// and recursively creates older generations.
func (g *generator) family(gen, generations int, child *pedigree.Person) *pedigree.Family {
	f := &pedigree.Family{ID: pedigree.FamilyID(fmt.Sprintf("F%d", len(g.families)+1))}
	g.families = append(g.families, f)
	surname := pick(g.rng, surnames)
	born := rootYear - gen*generationSpan
	h := g.person(pick(g.rng, maleNames), surname, born-g.rng.IntN(5))
	w := g.person(pick(g.rng, femaleNames), pick(g.rng, surnames), born-g.rng.IntN(5))
	h.Family, w.Family = f.ID, f.ID
	f.Husband, f.Wife = h.ID, w.ID

	if child != nil {
		child.ParentFamily = f.ID
		f.Children = append(f.Children, child.ID)
	}
	n := g.rng.IntN(maxSiblings + 1)
	if child == nil {
		n = max(n, 1)
	}
	for range n {
		names := maleNames
		if g.rng.IntN(2) == 0 {
			names = femaleNames
		}
		c := g.person(pick(g.rng, names), surname, born+generationSpan-g.rng.IntN(10))
		c.ParentFamily = f.ID
		f.Children = append(f.Children, c.ID)
	}
	if gen+1 < generations {
		g.family(gen+1, generations, h)
		g.family(gen+1, generations, w)
	}
	return f
}

func (g *generator) person(name, surname string, born int) *pedigree.Person {
	p := &pedigree.Person{
		ID:    pedigree.PersonID(fmt.Sprintf("P%d", len(g.persons)+1)),
		Name:  name + " " + surname,
		Birth: fmt.Sprint(born),
	}
	g.persons = append(g.persons, p)
	return p
}

func pick(rng *rand.Rand, s []string) string { return s[rng.IntN(len(s))] }
