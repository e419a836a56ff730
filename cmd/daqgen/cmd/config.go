package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dune-daq/daqgen/configs"
	"github.com/dune-daq/daqgen/internal/config"
	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the daqgen configuration.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/daqgen/config.yaml)
  3. Project config (.daqgen.yaml in the working directory or a parent)
  4. Environment variables (DAQGEN_*)`,
		Example: `  # Create user config from template
  daqgen config init

  # Write the defaults to .daqgen.yaml in this directory
  daqgen config init --project

  # Show effective configuration
  daqgen config show

  # Print user config file path
  daqgen config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the user configuration file",
		Long: `Create ~/.config/daqgen/config.yaml (or $XDG_CONFIG_HOME/daqgen/config.yaml)
from the commented template. With --force an existing file is backed up
first and then replaced.

With --project the built-in defaults are written to .daqgen.yaml in the
working directory instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return runConfigInitProject(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Back up and replace an existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Write "+config.ProjectConfigName+" in the working directory")
	return cmd
}

func runConfigInitProject(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	cwd, err := os.Getwd()
	if err != nil {
		return daqerrors.InternalError("get working directory", err)
	}
	path := filepath.Join(cwd, config.ProjectConfigName)

	if _, err := os.Stat(path); err == nil && !force {
		out.Warning("Project configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Status("💡", "Use --force to overwrite it")
		return nil
	}
	if err := config.NewConfig().WriteYAML(path); err != nil {
		return daqerrors.ConfigError("write project config", err)
	}

	out.Success("Created project configuration")
	out.Statusf("📁", "Location: %s", path)
	return nil
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	path := config.GetUserConfigPath()

	var backup string
	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to replace it (a backup is kept)")
			return nil
		}
		var err error
		backup, err = config.BackupUserConfig()
		if err != nil {
			return daqerrors.ConfigError("back up user config", err)
		}
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
		return daqerrors.ConfigError("create config directory", err)
	}
	if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return daqerrors.ConfigError("write user config", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", path)
	if backup != "" {
		out.Statusf("💾", "Backup: %s", backup)
	}
	out.Status("💡", "Run 'daqgen config show' to verify")
	return nil
}

func newConfigShowCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show configuration",
		Example: `  daqgen config show
  daqgen config show --json
  daqgen config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			var cfg *config.Config
			switch source {
			case "merged":
				cfg = a.cfg
			case "defaults":
				cfg = config.NewConfig()
			case "user":
				c, err := config.LoadUserConfig()
				if err != nil {
					return daqerrors.ConfigError("load user config", err)
				}
				if c == nil {
					out.Warning("No user configuration file found")
					out.Statusf("📁", "Expected at: %s", config.GetUserConfigPath())
					return nil
				}
				cfg = c
			case "project":
				c, path, err := loadProjectConfig()
				if err != nil {
					return err
				}
				if c == nil {
					out.Warning("No project configuration file found")
					out.Statusf("📁", "Expected at: %s", path)
					return nil
				}
				cfg = c
			default:
				return daqerrors.ValidationError(fmt.Sprintf("unknown config source %q", source), nil).
					WithSuggestion("use merged, user, project or defaults")
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return daqerrors.InternalError("marshal config", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", source, data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")
	return cmd
}

// loadProjectConfig reads the project file alone. A nil config means
// there is none; the path is where it was expected.
func loadProjectConfig() (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", daqerrors.InternalError("get working directory", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return nil, "", daqerrors.ConfigError("locate project config", err)
	}
	path := filepath.Join(root, config.ProjectConfigName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, path, nil
	}
	if err != nil {
		return nil, path, daqerrors.ConfigError("read project config", err)
	}
	cfg := &config.Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, daqerrors.ConfigError("parse project config", err)
	}
	return cfg, path, nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}
