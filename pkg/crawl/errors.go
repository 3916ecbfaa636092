// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package crawl

import (
	"errors"
	"sync"

	"github.com/go-logr/logr"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/unique"
)

// Errors is a goroutine-safe collection of unique errors from abandoned branches.
type Errors struct {
	m    sync.Mutex
	errs unique.Errors
	log  logr.Logger
}

func NewErrors(log logr.Logger) *Errors {
	return &Errors{log: log}
}

// Log the first instance of err, don't log duplicates.
// Returns true if err was logged.
func (e *Errors) Log(err error, msg string, kv ...any) bool {
	e.m.Lock()
	defer e.m.Unlock()
	if e.errs.Add(err) {
		e.log.Error(err, msg, kv...)
		return true
	}
	return false
}

// Count of errors added including duplicates.
func (e *Errors) Count() int {
	e.m.Lock()
	defer e.m.Unlock()
	return e.errs.Count()
}

// Err returns a *PartialError if any errors were logged, nil otherwise.
func (e *Errors) Err() error {
	e.m.Lock()
	defer e.m.Unlock()
	if err := e.errs.Err(); err != nil {
		return &PartialError{Abandoned: e.errs.Count(), Err: err}
	}
	return nil
}

// PartialError indicates some branches of a crawl were abandoned.
// The tree holds everything reachable without going through an abandoned branch.
type PartialError struct {
	Abandoned int // Number of abandoned branches.
	Err       error
}

func (e *PartialError) Error() string {
	return errors.Join(errors.New("crawl may be incomplete, branches were abandoned:"), e.Err).Error()
}

func (e *PartialError) Unwrap() error { return e.Err }

var _ error = &PartialError{}

func IsPartialError(err error) bool { return pedigree.IsErrorType[*PartialError](err) }
