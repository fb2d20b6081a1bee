package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/annealing-core/internal/runner"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/config"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses flags, executes one run and writes its JSON result to stdout.
// Logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("anneal", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath string
	var logLevel string
	var seed uint64
	var recordStates bool

	fs.StringVar(&configPath, "config", "config/sequential.yaml", "path to the run YAML file")
	fs.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	fs.Uint64Var(&seed, "seed", 0, "seed override; when omitted the run file's seed is used")
	fs.BoolVar(&recordStates, "states", false, "include the state of every stage in lazy results")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadRun(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "anneal: %v\n", err)
		return 1
	}
	if logLevel != "" {
		if _, err := logger.ParseLevel(logLevel); err != nil {
			fmt.Fprintf(stderr, "anneal: %v\n", err)
			return 2
		}
		cfg.LogLevel = logLevel
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Seed = &seed
		}
	})

	logger.SetDefault(logger.NewWithFormat(cfg.LogFormat, cfg.LogLevel, stderr))

	r, err := runner.New(cfg)
	if err != nil {
		logger.Error("failed to prepare run", "config", configPath, "error", err)
		return 1
	}
	result, runErr := r.WithStates(recordStates).Run(ctx)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("failed to write result", "error", err)
		return 1
	}
	if runErr != nil {
		return 1
	}
	return 0
}
