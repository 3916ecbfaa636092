// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/pkg/build"
	"github.com/pedigree/pedigree/pkg/config"
	"github.com/pedigree/pedigree/pkg/dataset"
	"github.com/pedigree/pedigree/pkg/mcp"
	"github.com/pedigree/pedigree/pkg/metric"
	"github.com/pedigree/pedigree/pkg/rest"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Start a pedigree data server.",
	Long: `Start a pedigree data server for a dataset file, or for a generated dataset if there is no file.

Endpoints:
  GET /family/ID   a family
  GET /person/ID   a person
  GET /tree        the root family and size of the dataset
  GET /healthz     health check
  GET /metrics     prometheus metrics
  /debug/pprof     profiling
  /mcp             MCP streaming server, if --mcp is set`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := newConfig(cmd)
		f := cmd.Flags()
		override(cmd, "dataset", &c.Server.Dataset, f.GetString)
		override(cmd, "generations", &c.Server.Generations, f.GetInt)
		override(cmd, "latency", &c.Server.Latency.Duration, f.GetDuration)
		d := serverDataset(c)

		gin.DefaultWriter = logging.LogWriter()
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
		router := gin.New()
		router.Use(gin.Recovery())
		must.Must1(rest.New(d, rest.Options{Latency: c.Server.Latency.Duration, Metrics: metric.New()}, router))
		rest.WebProfile(router)
		if *mcpFlag {
			router.Any(mcp.StreamablePath, gin.WrapH(mcp.NewServer(d, crawlOptions(c)).HTTPHandler()))
		}

		s := &http.Server{Addr: *listenFlag, Handler: router}
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			log.Info("listening for http", "addr", s.Addr, "version", build.Version, "root", d.Root)
			if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down", "addr", s.Addr)
			return s.Shutdown(context.Background())
		})
		must.Must(g.Wait())
	},
}

// serverDataset loads the server dataset, or generates one.
func serverDataset(c *config.Config) *dataset.Dataset {
	if c.Server.Dataset != "" {
		log.V(1).Info("Serving dataset", "file", c.Server.Dataset)
		return must.Must1(dataset.Load(c.Server.Dataset))
	}
	log.V(1).Info("Serving generated dataset", "generations", c.Server.Generations, "seed", c.Server.Seed)
	return dataset.Generate(c.Server.Generations, c.Server.Seed)
}

var (
	listenFlag *string
	mcpFlag    *bool
)

func init() {
	f := serveCmd.Flags()
	listenFlag = f.StringP("http", "l", ":8080", "host:port address for the http listener")
	mcpFlag = f.Bool("mcp", false, "Serve the MCP streaming protocol on "+mcp.StreamablePath)
	f.StringP("dataset", "d", "", "Dataset file (YAML or JSON) to serve")
	f.Int("generations", config.Defaults.Server.Generations, "Generations to generate if there is no dataset")
	f.Uint64("seed", config.Defaults.Server.Seed, "Random seed for generating a dataset")
	f.Duration("latency", 0, "Latency added to each family or person request")
	rootCmd.AddCommand(serveCmd)
}
