// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// package mcp Provides an MCP server and argument structures for MCP client calls.
package mcp

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/pkg/build"
	"github.com/pedigree/pedigree/pkg/crawl"
	"github.com/pedigree/pedigree/pkg/graph"
	"github.com/pedigree/pedigree/pkg/pedigree"
)

var log = logging.Log()

const StreamablePath = "/mcp"

const (
	CrawlPedigree = "crawl_pedigree"
	GetFamily     = "get_family"
)

// CrawlParams are the arguments for [CrawlPedigree].
type CrawlParams struct {
	Root      pedigree.FamilyID `json:"root" jsonschema:"ID of the family to start crawling from"`
	Strategy  string            `json:"strategy,omitempty" jsonschema:"Traversal strategy: depth-first or breadth-first"`
	Workers   int               `json:"workers,omitempty" jsonschema:"Number of breadth-first workers"`
	RateLimit int               `json:"rateLimit,omitempty" jsonschema:"Maximum number of concurrent fetches"`
	// IDs includes the family and person IDs found in the result.
	IDs bool `json:"ids,omitempty" jsonschema:"Include the IDs of all families and persons found"`
}

// CrawlResult is the structured result of [CrawlPedigree].
type CrawlResult struct {
	Root        pedigree.FamilyID   `json:"root"`
	Generations int                 `json:"generations"`
	Families    []pedigree.FamilyID `json:"families,omitempty"`
	Persons     []pedigree.PersonID `json:"persons,omitempty"`
	Stats       crawl.Stats         `json:"stats"`
	// Incomplete is set if some branches could not be fetched.
	Incomplete string `json:"incomplete,omitempty"`
}

// FamilyParams are the arguments for [GetFamily].
type FamilyParams struct {
	ID pedigree.FamilyID `json:"id" jsonschema:"ID of the family"`
}

// FamilyResult is a family with its members resolved.
type FamilyResult struct {
	Family   pedigree.Family    `json:"family"`
	Husband  *pedigree.Person   `json:"husband,omitempty"`
	Wife     *pedigree.Person   `json:"wife,omitempty"`
	Children []*pedigree.Person `json:"children,omitempty"`
}

type Server struct {
	*mcp.Server
	Source pedigree.Source
	// Options are the defaults for crawls, overridden by [CrawlParams].
	Options crawl.Options
}

func NewServer(src pedigree.Source, opts crawl.Options) *Server {
	s := &Server{
		Server:  mcp.NewServer(&mcp.Implementation{Name: "pedigree", Title: "Pedigree MCP Server", Version: build.Version}, nil),
		Source:  src,
		Options: opts,
	}
	s.addTools()
	return s
}

func (s *Server) addTools() {
	mcp.AddTool(s.Server, &mcp.Tool{
		Name: CrawlPedigree,
		Description: `
Crawls the ancestry of a family and returns statistics about the families and persons found.
A family has a husband, a wife and children. The ancestry includes the families that
the husband and wife were born into, and their ancestry in turn.`,
	}, s.crawl)

	mcp.AddTool(s.Server, &mcp.Tool{
		Name: GetFamily,
		Description: `
Returns a single family with its husband, wife and children.
The parent_id of the husband or wife is the family they were born into.`,
	}, s.family)
}

func (s *Server) crawl(ctx context.Context, _ *mcp.CallToolRequest, p CrawlParams) (*mcp.CallToolResult, CrawlResult, error) {
	opts := s.Options
	if p.Workers != 0 {
		opts.Workers = p.Workers
	}
	if p.RateLimit != 0 {
		opts.RateLimit = p.RateLimit
	}
	strategy := crawl.Strategy(p.Strategy)
	if strategy == "" {
		strategy = crawl.BreadthFirstStrategy
	}
	c, err := crawl.New(strategy, s.Source, opts)
	if err != nil {
		return nil, CrawlResult{}, err
	}
	log.V(2).Info("MCP crawl", "root", p.Root, "strategy", strategy)
	res, err := c.Crawl(ctx, p.Root)
	if err != nil && !crawl.IsPartialError(err) {
		return nil, CrawlResult{}, err
	}
	out := CrawlResult{
		Root:        res.Root,
		Generations: graph.New(res.Tree, res.Root).Generations(),
		Stats:       res.Stats,
	}
	if err != nil {
		out.Incomplete = err.Error()
	}
	if p.IDs {
		out.Families, out.Persons = res.Tree.FamilyIDs(), res.Tree.PersonIDs()
	}
	return nil, out, nil
}

func (s *Server) family(ctx context.Context, _ *mcp.CallToolRequest, p FamilyParams) (*mcp.CallToolResult, FamilyResult, error) {
	f, err := s.Source.Family(ctx, p.ID)
	if err != nil {
		return nil, FamilyResult{}, err
	}
	var errs []error
	get := func(id pedigree.PersonID) *pedigree.Person {
		if id == "" {
			return nil
		}
		p, err := s.Source.Person(ctx, id)
		switch {
		case pedigree.IsNotFound(err):
			return &pedigree.Person{ID: id}
		case err != nil:
			errs = append(errs, err)
		}
		return p
	}
	out := FamilyResult{Family: *f, Husband: get(f.Husband), Wife: get(f.Wife)}
	for _, id := range f.Children {
		if c := get(id); c != nil {
			out.Children = append(out.Children, c)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, FamilyResult{}, err
	}
	return nil, out, nil
}

// ServeStdio runs an MCP server, it returns when the client disconnects or the context is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler  a handler for the Streaming MCP protocol.
func (s *Server) HTTPHandler() http.Handler {
	// Use the same server for all requests. Server and Source are concurrent-safe.
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.Server }, nil)
}
