package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/enetx/fsmlab/internal/config"
	"github.com/enetx/fsmlab/internal/logging"
	"github.com/enetx/fsmlab/metrics"
	"github.com/enetx/fsmlab/neuron"
	"github.com/enetx/fsmlab/washer"
)

// newRootCmd builds the command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fsmlab",
		Short: "Guarded state machine demonstrations",
		Long: `fsmlab drives a washing machine and a neuron through scripted scenarios.
Every handler is polled until its condition holds; calls made in the wrong state are refused.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Uint64("seed", 0, "Seed for neuron damage draws (0 = random)")
	root.PersistentFlags().Duration("pace", 0, "Delay between two polls")
	root.PersistentFlags().Bool("metrics", false, "Print transition and handler counters after the run")

	root.AddCommand(
		machineCmd(washer.Name, "Run washing machine scenarios"),
		machineCmd(neuron.Name, "Run neuron scenarios"),
		listCmd(),
	)

	return root
}

// Execute builds the command tree and runs it until completion or an interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// app holds everything a command needs once flags and configuration are resolved.
type app struct {
	cfg       config.Config
	log       *slog.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
}

func setup(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("pace") {
		cfg.Pace, _ = cmd.Flags().GetDuration("pace")
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics, _ = cmd.Flags().GetBool("metrics")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       logging.New(level, cmd.ErrOrStderr()).With("run", uuid.NewString()),
		registry:  registry,
		collector: collector,
	}, nil
}
