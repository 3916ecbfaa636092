// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package graph

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/encoding"
)

// Attributes for nodes and edges rendered by Graphviz.
type Attrs map[string]string

var (
	_ encoding.Attributer = Attrs{}
	_ encoding.Attributer = &Node{}
	_ encoding.Attributer = Edge{}
)

// Attributes in key order, so output is stable.
func (a Attrs) Attributes() (enc []encoding.Attribute) {
	for _, k := range slices.Sorted(maps.Keys(a)) {
		enc = append(enc, encoding.Attribute{Key: k, Value: a[k]})
	}
	return enc
}
