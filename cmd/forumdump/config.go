package main

import (
	"fmt"
	"os"
	"path/filepath"

	"forumdump/pkg/config"
	"forumdump/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const exampleConfig = `# forumdump configuration file
#
# Environment variables prefixed with FORUMDUMP_ override these values,
# command line flags override both. A .env file in the working directory
# is loaded into the environment first.

forum:
  # User-Agent header sent with every request
  user_agent: "Googlebot (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
  # Accept header
  accept: "application/json"

rate_limit:
  # Delay between network requests; cached resources are never delayed
  request_delay: 500ms
  # Tries per request; network, rate limit and server errors are retried
  max_attempts: 1
  # First delay between tries, doubled on every retry
  retry_delay: 2s

output:
  # The archive is created in <base_directory>/<forum host>
  base_directory: "."
  # Download images again even if the file already exists
  overwrite_images: false

download:
  # HTTP client timeout per request
  timeout: 30s

logging:
  # debug, info, warn, error
  level: "info"
  # text or json
  format: "text"
  # Optional log file, in addition to stdout
  file: ""
`

func newConfigCmd(flags *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage forumdump configuration files.

Configuration is loaded from, in order of priority:
  - Command line flags
  - Environment variables (FORUMDUMP_*, including a .env file)
  - Configuration file
  - Default values`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create an example configuration file with all available options.

The file is created as 'forumdump.yaml' in the current directory unless a
different path is given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(flags.configFile)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configFile, flags.flagMap(cmd, nil))
			if err != nil {
				return err
			}
			return runConfigShow(cfg, flags.configFile)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Output and log directories can be created`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(flags.configFile)
		},
	})

	return configCmd
}

func runConfigInit(configPath string) error {
	if configPath == "" {
		configPath = "forumdump.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Edit the configuration file")
	fmt.Fprintln(ui.Output, "2. Run 'forumdump config validate' to check it")
	fmt.Fprintln(ui.Output, "3. Start archiving with 'forumdump json <baseURL>'")
	return nil
}

func runConfigShow(cfg *config.Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))

	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	if configPath == "" {
		configPath = "(none found)"
	}
	fmt.Fprintln(ui.Output, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output, "1. Command line flags")
	fmt.Fprintln(ui.Output, "2. Environment variables (FORUMDUMP_*)")
	fmt.Fprintf(ui.Output, "3. Configuration file: %s\n", configPath)
	fmt.Fprintln(ui.Output, "4. Default values")
	return nil
}

func runConfigValidate(configPath string) error {
	if configPath == "" {
		configPath = config.FindConfigFile()
		if configPath == "" {
			return fmt.Errorf("no configuration file found; specify one with --config")
		}
	}

	ui.PrintInfo("Validating configuration", configPath)

	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return err
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(ui.Output, "  - %s\n", p)
		}
		return fmt.Errorf("configuration is invalid")
	}

	if cfg.RateLimit.RequestDelay == 0 {
		ui.PrintWarning("request_delay is 0: requests will not be paced")
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintln(ui.Output, "\nConfiguration summary:")
	fmt.Fprintf(ui.Output, "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(ui.Output, "  Request delay: %s\n", cfg.RateLimit.RequestDelay)
	fmt.Fprintf(ui.Output, "  Max attempts: %d\n", cfg.RateLimit.MaxAttempts)
	fmt.Fprintf(ui.Output, "  Download timeout: %s\n", cfg.Download.Timeout)
	fmt.Fprintf(ui.Output, "  Overwrite images: %t\n", cfg.Output.OverwriteImages)
	fmt.Fprintf(ui.Output, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
