// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"fmt"
	"os"

	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/internal/pkg/text"
	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [ROOT_FAMILY_ID]",
	Short: "Crawl the ancestry of a family and print statistics.",
	Long: `Crawl the ancestry of a family and print statistics.
With --tree, also print all families and persons found.
The text output format prints a table of families instead.
The root may be omitted for a dataset that names its root.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := runCrawl(cmd, args)
		if outputFlag.Value == "text" {
			text.Stats(os.Stdout, res.Stats)
			if *treeFlag {
				fmt.Println()
				text.Tree(os.Stdout, res.Tree)
			}
		} else {
			out := crawlOutput{Root: res.Root, Stats: res.Stats}
			if *treeFlag {
				out.Families, out.Persons = res.Tree.Families(), res.Tree.Persons()
			}
			newPrinter(os.Stdout).Print(out)
		}
		must.Must(err)
	},
}

// crawlOutput is printed by the crawl command.
type crawlOutput struct {
	Root     pedigree.FamilyID  `json:"root"`
	Stats    crawl.Stats        `json:"stats"`
	Families []*pedigree.Family `json:"families,omitempty"`
	Persons  []*pedigree.Person `json:"persons,omitempty"`
}

var treeFlag *bool

func init() {
	treeFlag = crawlCmd.Flags().BoolP("tree", "t", false, "Print families and persons found")
	addSourceFlags(crawlCmd)
	addCrawlFlags(crawlCmd)
	rootCmd.AddCommand(crawlCmd)
}
