// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package tree

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/stretchr/testify/assert"
)

func TestTree_AddIfAbsent(t *testing.T) {
	tr := New()
	assert.False(t, tr.HasFamily("F0"))
	assert.True(t, tr.AddFamilyIfAbsent(&pedigree.Family{ID: "F0", Husband: "P1"}))
	assert.False(t, tr.AddFamilyIfAbsent(&pedigree.Family{ID: "F0", Wife: "P2"}))
	assert.True(t, tr.HasFamily("F0"))
	assert.Equal(t, pedigree.PersonID("P1"), tr.Family("F0").Husband, "first insert wins")

	assert.True(t, tr.AddPersonIfAbsent(&pedigree.Person{ID: "P1"}))
	assert.False(t, tr.AddPersonIfAbsent(&pedigree.Person{ID: "P1"}))
	assert.True(t, tr.HasPerson("P1"))
	assert.False(t, tr.HasPerson("P2"))
	assert.Nil(t, tr.Person("P2"))

	f, p := tr.Len()
	assert.Equal(t, 1, f)
	assert.Equal(t, 1, p)
}

func TestTree_ConcurrentAddExactlyOneWinner(t *testing.T) {
	const callers = 200
	const ids = 10
	tr := New()
	var familyWins, personWins [ids]atomic.Int32
	var start, done sync.WaitGroup
	start.Add(1)
	for i := range callers {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait() // Release all callers together to maximise contention.
			n := i % ids
			if tr.AddFamilyIfAbsent(&pedigree.Family{ID: pedigree.FamilyID(fmt.Sprint("F", n))}) {
				familyWins[n].Add(1)
			}
			if tr.AddPersonIfAbsent(&pedigree.Person{ID: pedigree.PersonID(fmt.Sprint("P", n))}) {
				personWins[n].Add(1)
			}
		}()
	}
	start.Done()
	done.Wait()
	for n := range ids {
		assert.Equal(t, int32(1), familyWins[n].Load(), "F%v", n)
		assert.Equal(t, int32(1), personWins[n].Load(), "P%v", n)
	}
	f, p := tr.Len()
	assert.Equal(t, ids, f)
	assert.Equal(t, ids, p)
}

func TestTree_Sorted(t *testing.T) {
	tr := New()
	for _, id := range []string{"F2", "F0", "F1"} {
		tr.AddFamilyIfAbsent(&pedigree.Family{ID: pedigree.FamilyID(id)})
	}
	for _, id := range []string{"P3", "P1"} {
		tr.AddPersonIfAbsent(&pedigree.Person{ID: pedigree.PersonID(id)})
	}
	assert.Equal(t, []pedigree.FamilyID{"F0", "F1", "F2"}, tr.FamilyIDs())
	assert.Equal(t, []pedigree.PersonID{"P1", "P3"}, tr.PersonIDs())
	assert.Empty(t, New().FamilyIDs())
}
