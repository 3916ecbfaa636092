// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// package text is used to print crawl results as aligned text for the command line.
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/tree"
)

func WriteString(print func(io.Writer)) string {
	w := &strings.Builder{}
	print(w)
	return w.String()
}

// Stats prints one line per statistic.
func Stats(w io.Writer, s crawl.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()
	row := func(name string, v any) { fmt.Fprintf(tw, "%v:\t%v\n", name, v) }
	row("strategy", s.Strategy)
	row("families", s.Families)
	row("persons", s.Persons)
	row("fetches", s.FamilyFetches+s.PersonFetches)
	row("not found", s.NotFound)
	row("abandoned", s.Abandoned)
	row("max in flight", s.MaxInFlight)
	if s.Workers > 0 {
		row("workers", s.Workers)
		row("max queue", s.MaxQueue)
	}
	row("elapsed", s.Elapsed)
}

// Tree prints one line per family with the names of husband and wife and the number of children.
func Tree(w io.Writer, t *tree.Tree) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()
	fmt.Fprintln(tw, "FAMILY\tHUSBAND\tWIFE\tCHILDREN")
	for _, f := range t.Families() {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", f.ID, name(t, f.Husband), name(t, f.Wife), len(f.Children))
	}
}

// name of a person, or the ID if the person has no name or was not found.
func name(t *tree.Tree, id pedigree.PersonID) string {
	if id == "" {
		return "-"
	}
	if p := t.Person(id); p != nil && p.Name != "" {
		return p.Name
	}
	return string(id)
}
