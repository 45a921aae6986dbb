package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"forumdump/pkg/config"
	"forumdump/pkg/logger"
	"forumdump/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// globalFlags holds the persistent flags shared by every subcommand
type globalFlags struct {
	configFile string
	logLevel   string
	output     string
	delay      time.Duration
	retries    int
	userAgent  string
	noLogo     bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "forumdump",
		Short: "Archive a Discourse forum as JSON and download its images",
		Long: `forumdump mirrors the category tree of a Discourse forum to disk.

  json <baseURL>   crawl categories, subcategories and topics into <host>/
  pics <baseURL>   download the largest variant of every image in the archived posts

Every resource already on disk is skipped, so an interrupted run can simply be
started again.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				ui.PrintError("unknown subcommand", args[0])
			}
			return cmd.Usage()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file (default: ./forumdump.yaml or ~/.config/forumdump/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&flags.output, "output", "o", "", "directory the <host> archive is created in")
	pf.DurationVar(&flags.delay, "delay", 0, "delay between network requests (default 500ms)")
	pf.IntVar(&flags.retries, "retries", 0, "attempts per request on network, rate limit and server errors (default 1)")
	pf.StringVar(&flags.userAgent, "user-agent", "", "User-Agent header sent to the forum")
	pf.BoolVar(&flags.noLogo, "no-logo", false, "do not print the banner")

	rootCmd.SetVersionTemplate(`forumdump {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newJSONCmd(flags))
	rootCmd.AddCommand(newPicsCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		stop()
		os.Exit(1)
	}
}

// requireBaseURL accepts exactly one argument and prints usage otherwise
func requireBaseURL(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		_ = cmd.Usage()
		return fmt.Errorf("%s expects exactly one base URL, got %d arguments", cmd.Name(), len(args))
	}
	return nil
}

// flagMap collects the persistent flags the user actually set
func (f *globalFlags) flagMap(cmd *cobra.Command, extra map[string]interface{}) map[string]interface{} {
	set := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("user-agent") {
		set["user-agent"] = f.userAgent
	}
	if changed("output") {
		set["output"] = f.output
	}
	if changed("delay") {
		set["delay"] = f.delay
	}
	if changed("retries") {
		set["retries"] = f.retries
	}
	if changed("log-level") {
		set["log-level"] = f.logLevel
	}
	for k, v := range extra {
		set[k] = v
	}
	return set
}

// setup loads the configuration and initializes the global logger
func (f *globalFlags) setup(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(f.configFile, f.flagMap(cmd, extra))
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !f.noLogo && strings.ToLower(cfg.Logging.Format) != "json" {
		ui.PrintLogo()
	}

	return cfg, logger.GetLogger().WithField("version", version), nil
}
