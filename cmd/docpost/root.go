package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/docpost"
)

var (
	cfgFile string
	envFile string
	debug   bool

	appConfig docpost.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "docpost",
	Short: "Read structured-text posts and preview them",
	Long: `docpost reads posts written as a title, a field list of metadata and a
body (or markdown with YAML front matter), assembles them into posts and
stores them in SQLite for a local preview server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(readCmd, importCmd, serveCmd, versionCmd)
}

func initialize() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	l, err := docpost.NewLogger(debug)
	if err != nil {
		return err
	}
	logger = l

	cfg, err := docpost.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger.Debug("config loaded", zap.String("file", cfgFile), zap.String("content_dir", cfg.ContentDir))
	return nil
}
