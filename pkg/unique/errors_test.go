// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package unique

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	var errs Errors
	assert.Nil(t, errs.Err())
	assert.True(t, errs.Add(errors.New("one")))
	assert.EqualError(t, errs.Err(), "one")
	assert.True(t, errs.Add(errors.New("two")))
	assert.False(t, errs.Add(errors.New("one")))
	assert.False(t, errs.Add(nil))
	assert.EqualError(t, errs.Err(), "one\ntwo")
	assert.Equal(t, 3, errs.Count())
}

func TestSet(t *testing.T) {
	s := NewSet("b", "a", "b")
	assert.True(t, s.Has("a"))
	assert.Equal(t, []string{"a", "b"}, s.Sorted())
	s.Remove("a")
	assert.False(t, s.Has("a"))
}
