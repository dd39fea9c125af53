package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl"
	"github.com/kailas-cloud/esdsl/internal/config"
	logpkg "github.com/kailas-cloud/esdsl/internal/logger"
	"github.com/kailas-cloud/esdsl/internal/version"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "esdsl",
		Short:        "Build, inspect and send Elasticsearch requests",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"config file (default: config/$ENV.yaml when present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"log level override: debug, info, warn, error")

	root.AddCommand(
		newRenderCmd(flags),
		newSendCmd(flags),
		newStubCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads --config, else config/$ENV.yaml, else built-in defaults.
func (f *rootFlags) loadConfig() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	cfg, err := config.Load(config.GetEnv())
	if errors.Is(err, fs.ErrNotExist) {
		return config.Parse(nil)
	}
	return cfg, err
}

func (f *rootFlags) logger(env string, cfg config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	return logpkg.NewLogger(env, level)
}

// clientOptions maps configuration onto client options.
func clientOptions(cfg config.Config, logger *zap.Logger) []esdsl.Option {
	c := cfg.Cluster
	opts := []esdsl.Option{
		esdsl.WithAddresses(c.Addresses...),
		esdsl.WithRetries(c.MaxRetries, c.RetryOnStatus...),
		esdsl.WithRequestTimeout(c.RequestTimeoutSec),
		esdsl.WithLogger(logger),
	}
	switch {
	case c.APIKey != "":
		opts = append(opts, esdsl.WithAPIKey(c.APIKey))
	case c.Username != "":
		opts = append(opts, esdsl.WithBasicAuth(c.Username, c.Password))
	}
	if c.CompressRequestBody {
		opts = append(opts, esdsl.WithCompression())
	}
	for k, v := range cfg.Defaults.Headers {
		opts = append(opts, esdsl.WithDefaultHeader(k, v))
	}
	for k, v := range cfg.Defaults.Params {
		opts = append(opts, esdsl.WithDefaultParam(k, v))
	}
	if e := cfg.Embedding; e.APIKey != "" {
		opts = append(opts, esdsl.WithOpenAI(e.APIKey, e.BaseURL, e.Model, e.Dimensions))
		if e.QueryInstruction != "" {
			opts = append(opts, esdsl.WithQueryInstruction(e.QueryInstruction))
		}
	}
	return opts
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
