// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// Command pedigree crawls the ancestry of a family from a pedigree data source.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pedigree/pedigree/internal/pkg/enumflag"
	"github.com/pedigree/pedigree/internal/pkg/logging"
	"github.com/pedigree/pedigree/internal/pkg/must"
	"github.com/pedigree/pedigree/pkg/build"
	"github.com/pedigree/pedigree/pkg/config"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pedigree",
		Short: "Concurrent pedigree crawler",
		Long: `Crawl the ancestry of a family from a pedigree data server or dataset.

A family has a husband, a wife and children. The ancestry of a family includes the
families its husband and wife were born into, and their ancestry in turn.`,
		Version: build.Version,
	}
	log = logging.Log()

	// Global Flags
	outputFlag  = enumflag.New("yaml", []string{"json", "json-pretty", "yaml", "text"})
	verboseFlag *int
	configFlag  *string
	panicOnErr  *bool
)

func init() {
	panicOnErr = rootCmd.PersistentFlags().Bool("panic", false, "panic on error instead of exit code 1")
	rootCmd.PersistentFlags().VarP(outputFlag, "output", "o", outputFlag.DocString("Output format"))
	verboseFlag = rootCmd.PersistentFlags().IntP("verbose", "v", 0, "Verbosity for logging")
	configFlag = rootCmd.PersistentFlags().StringP("config", "c", os.Getenv(config.ConfigEnv), "Configuration file or URL")
	cobra.OnInitialize(func() { logging.Init(*verboseFlag) }) // After flags are parsed
}

// Execute the root command and return the process exit code.
func Execute() (exitCode int) {
	// Code in this package panics with an error to exit.
	defer func() {
		if r := recover(); r != nil {
			if *panicOnErr {
				panic(r)
			}
			fmt.Fprintln(os.Stderr, r)
			exitCode = 1
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	must.Must(rootCmd.ExecuteContext(ctx))
	return 0
}

func main() { os.Exit(Execute()) }
