package cmd

import (
	"fmt"

	"github.com/harrison/runcollect/internal/collector"
	"github.com/harrison/runcollect/internal/config"
	"github.com/harrison/runcollect/internal/logger"
	"github.com/spf13/cobra"
)

// addCollectFlags registers the flags shared by every command that walks a tree
func addCollectFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .runcollect/config.yaml)")
	cmd.Flags().StringArray("ignore", nil, "Skip directories containing a file whose name contains this text (repeatable)")
	cmd.Flags().Bool("ignore-ignore", false, "Collect directories even if they hold the ignore marker file")
	cmd.Flags().Bool("all", false, "Collect every directory with a config file, bypassing all skip rules")
	cmd.Flags().StringArray("exclude", nil, "Directory name never descended into (repeatable)")
	cmd.Flags().Int("max-depth", 0, "Maximum walk depth (0 = unlimited, 1 = root only)")
	cmd.Flags().Bool("skip-hidden", false, "Do not walk into directories whose name starts with a dot")
	cmd.Flags().String("log-level", "", "Log verbosity on stderr (trace, debug, info, warn, error)")
	cmd.Flags().String("log-dir", "", "Also write a run log into this directory")
}

// loadCollectConfig loads the config file and applies any flags the user set
func loadCollectConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	ignoreFlag, _ := cmd.Flags().GetStringArray("ignore")
	ignoreMarkerFlag, _ := cmd.Flags().GetBool("ignore-ignore")
	allFlag, _ := cmd.Flags().GetBool("all")
	excludeFlag, _ := cmd.Flags().GetStringArray("exclude")
	maxDepthFlag, _ := cmd.Flags().GetInt("max-depth")
	skipHiddenFlag, _ := cmd.Flags().GetBool("skip-hidden")
	logLevelFlag, _ := cmd.Flags().GetString("log-level")
	logDirFlag, _ := cmd.Flags().GetString("log-dir")

	// Build flag pointers for merge (only values the user set)
	var ignorePtr, excludePtr []string
	if cmd.Flags().Changed("ignore") {
		ignorePtr = append([]string{}, ignoreFlag...)
	}
	if cmd.Flags().Changed("exclude") {
		excludePtr = append([]string{}, excludeFlag...)
	}

	var ignoreMarkerPtr *bool
	if cmd.Flags().Changed("ignore-ignore") {
		ignoreMarkerPtr = &ignoreMarkerFlag
	}

	var allPtr *bool
	if cmd.Flags().Changed("all") {
		allPtr = &allFlag
	}

	var maxDepthPtr *int
	if cmd.Flags().Changed("max-depth") {
		maxDepthPtr = &maxDepthFlag
	}

	var skipHiddenPtr *bool
	if cmd.Flags().Changed("skip-hidden") {
		skipHiddenPtr = &skipHiddenFlag
	}

	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		logLevelPtr = &logLevelFlag
	}

	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDirPtr = &logDirFlag
	}

	cfg.MergeWithFlags(ignorePtr, ignoreMarkerPtr, allPtr, excludePtr, maxDepthPtr, skipHiddenPtr, logLevelPtr, logDirPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// collectSetup is the resolved state shared by commands that walk a tree
type collectSetup struct {
	cfg  *config.Config
	opts collector.Options
	log  logger.CollectLogger
	// close releases the run log, if any
	close func()
}

// prepareCollect resolves configuration and builds collector options that
// write "Total: <n>" to the command's stdout and diagnostics to its stderr
// and, with a log dir, to a run log.
func prepareCollect(cmd *cobra.Command) (*collectSetup, error) {
	cfg, err := loadCollectConfig(cmd)
	if err != nil {
		return nil, err
	}

	setup := &collectSetup{cfg: cfg, opts: cfg.ToOptions(), close: func() {}}
	setup.opts.Output = cmd.OutOrStdout()

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir == "" {
		setup.log = consoleLog
	} else {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to open run log: %w", err)
		}
		setup.log = logger.NewMultiLogger(consoleLog, fileLog)
		setup.close = func() { fileLog.Close() }
	}
	setup.opts.Logger = setup.log
	return setup, nil
}

// collectRuns loads the runs under root once
func collectRuns(cmd *cobra.Command, root string) (*collector.Collection, error) {
	setup, err := prepareCollect(cmd)
	if err != nil {
		return nil, err
	}
	defer setup.close()

	return collector.Load(root, setup.opts)
}
