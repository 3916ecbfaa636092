// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Package enumflag is a flag value that allows one of a list of strings.
// Implements standard flag.Value and cobra pflag.Value
package enumflag

import (
	"fmt"
	"slices"
	"strings"
)

type Value struct {
	Value   string
	Allowed []string
}

// New returns a Value with a default value, which need not be allowed.
// The empty string means unset.
func New(value string, allowed []string) *Value {
	allowed = slices.Clone(allowed)
	slices.Sort(allowed)
	return &Value{Allowed: allowed, Value: value}
}

func (v *Value) String() string { return v.Value }

func (v *Value) Set(x string) error {
	if !slices.Contains(v.Allowed, x) {
		return fmt.Errorf("expected one of: %v", strings.Join(v.Allowed, ", "))
	}
	v.Value = x
	return nil
}

// Type is "string" so the value can be read with pflag.FlagSet.GetString.
func (v *Value) Type() string { return "string" }

// DocString returns msg followed by the allowed values, for flag usage.
func (v *Value) DocString(msg string) string {
	w := &strings.Builder{}
	if msg != "" {
		fmt.Fprintf(w, "%v: ", msg)
	}
	fmt.Fprintf(w, "one of %v", strings.Join(v.Allowed, ", "))
	return w.String()
}
