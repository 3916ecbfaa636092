// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// package must panics on errors, for commands that recover at the top level.
package must

import "fmt"

// Must panics with err if it is not nil.
// If msg is provided the panic value is fmt.Errorf(msg+": %w", err).
func Must(err error, msg ...string) {
	if err == nil {
		return
	}
	if len(msg) > 0 {
		err = fmt.Errorf("%v: %w", msg[0], err)
	}
	panic(err)
}

// Must1 calls Must(err), then returns v.
func Must1[T any](v T, err error) T { Must(err); return v }
