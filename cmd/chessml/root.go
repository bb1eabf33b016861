package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/stats"
	statslogger "github.com/discochess/movequality/internal/stats/logger"
	promstats "github.com/discochess/movequality/internal/stats/prometheus"
	"github.com/discochess/movequality/internal/train"
)

var (
	// Global flags.
	configPath  string
	verbose     bool
	logLevel    string
	metricsFile string
)

// Set up before every command runs.
var (
	cfg       config.Config
	logger    *zap.Logger     = zap.NewNop()
	collector stats.Collector = stats.NewNoop()
	metrics   *promstats.Collector
)

var rootCmd = &cobra.Command{
	Use:   "chessml",
	Short: "Train chess move models and score positions",
	Long: `chessml trains small models on chess game logs and scores positions
with the trained move-quality network.

Examples:
  # Train the move-quality network and save the artifact
  chessml train-quality --games data/games_checkmate.json

  # Score a position
  chessml predict "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

  # Keep only the games that ended in checkmate
  chessml export-checkmate --games data/games.json`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Development = true
		if !cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = "debug"
		}
	}

	l, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	logger = l

	metrics = nil
	switch {
	case metricsFile != "":
		metrics = promstats.New(prometheus.NewRegistry())
		collector = metrics
	case verbose:
		collector = statslogger.New(logger)
	default:
		collector = stats.NewNoop()
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	defer logger.Sync() //nolint:errcheck
	if lc, ok := collector.(*statslogger.Collector); ok {
		lc.Flush()
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Debug("metrics written", zap.String("path", metricsFile))
	}
	return nil
}

// newLogger builds a JSON production logger, or a console development
// logger at debug level when verbose.
func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if c.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		lvl, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: log level: %v", config.ErrInvalid, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func env() train.Env {
	return train.Env{Logger: logger, Stats: collector}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}
