// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pedigree/pedigree/internal/pkg/test"
	"github.com/pedigree/pedigree/pkg/build"
	"github.com/pedigree/pedigree/pkg/config"
	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/dataset"
	"github.com/pedigree/pedigree/pkg/pedigree"
	"github.com/pedigree/pedigree/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run the command line with args, returns exit code, stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (exitCode int, stdout, stderr string) {
	t.Helper()
	reset(rootCmd)
	out, errOut := test.FakeMainStdin(stdin, append([]string{"pedigree"}, args...), func() { exitCode = Execute() })
	return exitCode, string(out), string(errOut)
}

// reset restores default flag values and clears the context saved by a previous run.
// Commands are global, their state would leak between tests.
func reset(cmd *cobra.Command) {
	resetFlag := func(f *pflag.Flag) { _ = f.Value.Set(f.DefValue); f.Changed = false }
	cmd.Flags().VisitAll(resetFlag)
	cmd.PersistentFlags().VisitAll(resetFlag)
	cmd.SetContext(context.Background())
	for _, c := range cmd.Commands() {
		reset(c)
	}
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	code, stdout, stderr := run(t, "", args...)
	require.Equal(t, 0, code, stderr)
	return stdout
}

func crawlJSON(t *testing.T, args ...string) crawlOutput {
	t.Helper()
	var out crawlOutput
	stdout := runOK(t, append([]string{"crawl", "-o", "json"}, args...)...)
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
	return out
}

func ids[T interface{ *pedigree.Family | *pedigree.Person }](v []T) []string {
	var s []string
	for _, x := range v {
		switch x := any(x).(type) {
		case *pedigree.Family:
			s = append(s, string(x.ID))
		case *pedigree.Person:
			s = append(s, string(x.ID))
		}
	}
	return s
}

func TestCrawl_Dataset(t *testing.T) {
	out := crawlJSON(t, "-d", "testdata/small.yaml")
	assert.Equal(t, pedigree.FamilyID("F0"), out.Root)
	assert.Equal(t, crawl.BreadthFirstStrategy, out.Stats.Strategy)
	assert.Equal(t, 2, out.Stats.Families)
	assert.Equal(t, 4, out.Stats.Persons)
	assert.Empty(t, out.Families, "no --tree")
}

func TestCrawl_Config(t *testing.T) {
	out := crawlJSON(t, "-c", "testdata/pedigree.yaml", "--tree")
	assert.Equal(t, crawl.DepthFirstStrategy, out.Stats.Strategy)
	assert.LessOrEqual(t, out.Stats.MaxInFlight, 2)
	assert.Equal(t, []string{"F0", "F1"}, ids(out.Families))
	assert.Equal(t, []string{"P1", "P2", "P3", "P4"}, ids(out.Persons))
}

func TestCrawl_FlagOverridesConfig(t *testing.T) {
	out := crawlJSON(t, "-c", "testdata/pedigree.yaml", "-s", "breadth-first", "-w", "3")
	assert.Equal(t, crawl.BreadthFirstStrategy, out.Stats.Strategy)
	assert.Equal(t, 3, out.Stats.Workers)
}

func TestCrawl_Generate(t *testing.T) {
	for _, s := range crawl.Strategies() {
		t.Run(s, func(t *testing.T) {
			out := crawlJSON(t, "--generate", "4", "-s", s, "-r", "3")
			assert.Equal(t, pedigree.FamilyID("F1"), out.Root)
			assert.Equal(t, 15, out.Stats.Families)
			assert.LessOrEqual(t, out.Stats.MaxInFlight, 3)
		})
	}
}

func TestCrawl_Server(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	d := dataset.Generate(4, 1)
	_, err := rest.New(d, rest.Options{}, router)
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	defer srv.Close()

	out := crawlJSON(t, "-u", srv.URL, string(d.Root), "-w", "4")
	families, persons := d.Len()
	assert.Equal(t, families, out.Stats.Families)
	assert.Equal(t, persons, out.Stats.Persons)
	assert.Zero(t, out.Stats.Abandoned)
}

func TestCrawl_Errors(t *testing.T) {
	for _, x := range []struct {
		args []string
		want string
	}{
		{args: []string{"crawl", "F1"}, want: "no pedigree source"},
		{args: []string{"crawl", "-u", "http://localhost:1"}, want: "missing root family ID"},
		{args: []string{"crawl", "-u", "ftp://localhost"}, want: "expected http or https"},
		{args: []string{"crawl", "--generate", "2", "-s", "sideways"}, want: "expected one of"},
		{args: []string{"crawl", "--generate", "2", "--rate-limit=-1"}, want: "rate limit must be at least 1"},
		{args: []string{"crawl", "-c", "testdata/missing.yaml"}, want: "missing.yaml"},
	} {
		t.Run(strings.Join(x.args, " "), func(t *testing.T) {
			code, _, stderr := run(t, "", x.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, x.want)
		})
	}
}

func TestGraph_DOT(t *testing.T) {
	stdout := runOK(t, "graph", "-d", "testdata/small.yaml")
	assert.True(t, strings.HasPrefix(stdout, "strict digraph pedigree {"), stdout)
	assert.Contains(t, stdout, "F0 -> F1 [label=P1];")
}

func TestGraph_Summary(t *testing.T) {
	stdout := runOK(t, "graph", "-d", "testdata/small.yaml", "-f", "summary", "-o", "json")
	assert.JSONEq(t, `{"root":"F0","families":2,"generations":2}`, stdout)
}

func TestTemplate(t *testing.T) {
	const tmpl = `{{.Root}} {{len .Families}} {{range .Persons}}{{.Name | default "?"}},{{end}}`
	stdout := runOK(t, "template", "-d", "testdata/small.yaml", "-t", tmpl)
	assert.Equal(t, "F0 2 John Doe,Jane Roe,?,?,", stdout)
}

func TestTemplate_Stdin(t *testing.T) {
	code, stdout, stderr := run(t, `{{.Generations}} {{.Stats.Families}}`, "template", "-d", "testdata/small.yaml")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "2 2", stdout)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, build.Version+"\n", runOK(t, "version"))
}

func TestServerDataset(t *testing.T) {
	c := &config.Config{Server: config.Server{Generations: 3}}
	c.Fill(&config.Defaults)
	families, _ := serverDataset(c).Len()
	assert.Equal(t, 7, families)

	c.Server.Dataset = "testdata/small.yaml"
	d := serverDataset(c)
	assert.Equal(t, pedigree.FamilyID("F0"), d.Root)
}

func TestCrawl_Text(t *testing.T) {
	stdout := runOK(t, "crawl", "-d", "testdata/small.yaml", "-o", "text", "--tree", "-s", "depth-first")
	assert.Contains(t, stdout, "strategy:       depth-first\n")
	assert.Contains(t, stdout, "families:       2\n")
	assert.Contains(t, stdout, "F0      John Doe  Jane Roe  2\n")
}
