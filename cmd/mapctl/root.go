package main

import (
	"fieldmap-service/internal/app"
	"fieldmap-service/internal/config"
	"fieldmap-service/internal/platform/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by subcommands once the root pre-run has wired
// the map service.
type cli struct {
	configPath string
	app        *app.App
	logger     *zap.Logger
	closed     bool
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "mapctl",
		Short: "Cluster field-ops map data from the command line",
		Long: `mapctl fetches orders and route tasks from the field-ops backend, clusters
them the same way the map service does and prints or exports the markers.

Configuration is read from the same YAML file and environment variables as
the server (BACKEND_URL, CLUSTER_TOLERANCE, SNAPSHOT_DRIVER, ...).`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file (default $CONFIG_PATH or config.yaml)")

	root.AddCommand(newClusterCmd(c))
	root.AddCommand(newExportCmd(c))

	return root, c
}

// execute runs the command tree and releases whatever setup opened, whether
// or not the command succeeded.
func execute(root *cobra.Command, c *cli) error {
	err := root.Execute()
	if terr := c.teardown(); err == nil {
		err = terr
	}
	return err
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" {
		return nil
	}

	if err := config.LoadEnv(); err != nil {
		return err
	}

	path := c.configPath
	if path == "" {
		path = config.Get("CONFIG_PATH", "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// The CLI stays quiet unless LOG_LEVEL asks for more.
	level := cfg.Logging.Level
	if config.Get("LOG_LEVEL", "") == "" {
		level = "warn"
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	c.logger = logger

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.app = a

	return nil
}

func (c *cli) teardown() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.app == nil || c.closed {
		return nil
	}
	c.closed = true
	return c.app.Close()
}
