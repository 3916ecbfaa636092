// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package unique

import (
	"errors"
)

// Errors collects errors with unique messages, discards duplicates.
// A Zero Errors can be used immediately. Not safe for concurrent use.
type Errors struct {
	err   error
	seen  Set[string]
	count int
}

// Err returns a composite error created using [errors.Join] or nil.
func (e *Errors) Err() error { return e.err }

// Add an error if it has not already been added.
// Returns true if the error is unique.
func (e *Errors) Add(err error) bool {
	if err != nil {
		e.count++
		if e.seen == nil {
			e.seen = Set[string]{}
		}
		s := err.Error()
		if !e.seen.Has(s) {
			e.seen.Add(s)
			e.err = errors.Join(e.err, err)
			return true
		}
	}
	return false
}

// Count is the number of non-nil errors added, including duplicates.
func (e *Errors) Count() int { return e.count }
