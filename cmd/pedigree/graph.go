// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"os"

	"github.com/pedigree/pedigree/internal/pkg/enumflag"
	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/pkg/graph"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [ROOT_FAMILY_ID]",
	Short: "Crawl the ancestry of a family and print it as a graph.",
	Long: `Crawl the ancestry of a family and print it as a graph.
Each family is a node with an edge to the families its husband and wife were born into.
The dot format can be rendered by Graphviz, the summary format describes the shape of the graph.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := runCrawl(cmd, args)
		if err != nil {
			log.Error(err, "Graph may be incomplete")
		}
		g := graph.New(res.Tree, res.Root)
		switch graphFormat.Value {
		case "dot":
			must.Must1(os.Stdout.Write(must.Must1(g.MarshalDOT())))
		case "summary":
			newPrinter(os.Stdout).Print(graphSummary{
				Root:        res.Root,
				Families:    len(g.FamilyNodes()),
				Generations: g.Generations(),
				Cycles:      g.Cycles(),
				Unreachable: g.Unreachable(),
			})
		}
		must.Must(err)
	},
}

// graphSummary is printed by the graph command.
type graphSummary struct {
	Root        pedigree.FamilyID     `json:"root"`
	Families    int                   `json:"families"`
	Generations int                   `json:"generations"`
	Cycles      [][]pedigree.FamilyID `json:"cycles,omitempty"`
	Unreachable []pedigree.FamilyID   `json:"unreachable,omitempty"`
}

var graphFormat = enumflag.New("dot", []string{"dot", "summary"})

func init() {
	graphCmd.Flags().VarP(graphFormat, "format", "f", graphFormat.DocString("Graph format"))
	addSourceFlags(graphCmd)
	addCrawlFlags(graphCmd)
	rootCmd.AddCommand(graphCmd)
}
