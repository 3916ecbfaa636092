// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package text

import (
	"io"
	"testing"
	"time"

	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/tree"
	"github.com/stretchr/testify/assert"
)

func TestTree(t *testing.T) {
	tr := tree.New()
	tr.AddFamilyIfAbsent(&pedigree.Family{ID: "F0", Husband: "P1", Wife: "P2", Children: []pedigree.PersonID{"P3", "P4"}})
	tr.AddFamilyIfAbsent(&pedigree.Family{ID: "F1", Children: []pedigree.PersonID{"P1"}})
	tr.AddPersonIfAbsent(&pedigree.Person{ID: "P1", Name: "John Doe"})
	got := WriteString(func(w io.Writer) { Tree(w, tr) })
	want := `FAMILY  HUSBAND   WIFE  CHILDREN
F0      John Doe  P2    2
F1      -         -     1
`
	assert.Equal(t, want, got)
}

func TestStats(t *testing.T) {
	s := crawl.Stats{
		Strategy:      crawl.DepthFirstStrategy,
		Families:      2,
		Persons:       4,
		FamilyFetches: 2,
		PersonFetches: 4,
		MaxInFlight:   3,
		Elapsed:       time.Second,
	}
	got := WriteString(func(w io.Writer) { Stats(w, s) })
	want := `strategy:       depth-first
families:       2
persons:        4
fetches:        6
not found:      0
abandoned:      0
max in flight:  3
elapsed:        1s
`
	assert.Equal(t, want, got)
}
