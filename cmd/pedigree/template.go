// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/graph"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template [ROOT_FAMILY_ID] [--file FILE|--template STRING]",
	Short: `Crawl the ancestry of a family and apply a Go template to the result.`,
	Long: `Crawl the ancestry of a family and apply a Go template to the result.
Reads the template from stdin if neither --file nor --template is provided.
The template can use the sprig functions, see https://masterminds.github.io/sprig/

Template data fields:
  .Root         root family ID
  .Stats        crawl statistics
  .Families     families found, ordered by ID
  .Persons      persons found, ordered by ID
  .Generations  number of generations from the root
  .Error        crawl error or empty`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t := newTemplate(*templateString, *templateFile)
		res, err := runCrawl(cmd, args)
		data := templateData{
			Root:        res.Root,
			Stats:       res.Stats,
			Families:    res.Tree.Families(),
			Persons:     res.Tree.Persons(),
			Generations: graph.New(res.Tree, res.Root).Generations(),
		}
		if err != nil {
			data.Error = err.Error()
		}
		must.Must(t.Execute(os.Stdout, data))
	},
}

// templateData is the data for a template.
type templateData struct {
	Root        pedigree.FamilyID
	Stats       crawl.Stats
	Families    []*pedigree.Family
	Persons     []*pedigree.Person
	Generations int
	Error       string
}

// newTemplate parses text, or the contents of file if text is empty.
// File "" or "-" is stdin.
func newTemplate(text, file string) *template.Template {
	if text == "" {
		switch file {
		case "", "-":
			text = string(must.Must1(io.ReadAll(os.Stdin)))
		default:
			text = string(must.Must1(os.ReadFile(file)))
		}
	}
	return template.Must(template.New("pedigree").Funcs(sprig.TxtFuncMap()).Parse(text))
}

var templateFile, templateString *string

func init() {
	templateFile = templateCmd.Flags().StringP("file", "f", "", "read template from file")
	templateString = templateCmd.Flags().StringP("template", "t", "", "use template string")
	addSourceFlags(templateCmd)
	addCrawlFlags(templateCmd)
	rootCmd.AddCommand(templateCmd)
}
