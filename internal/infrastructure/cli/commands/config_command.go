package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/companion-go/internal/app"
	configapp "github.com/doeshing/companion-go/internal/application/config"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/companion-go/internal/infrastructure/config"
)

// NewConfigCommand groups the configuration subcommands. Without a subcommand it
// prints the effective configuration.
func NewConfigCommand(container *app.Container) *cobra.Command {
	var asJSON bool

	show := func(cmd *cobra.Command, args []string) error {
		cfg, err := container.ConfigProvider.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), cfg)
		}
		return writeYAML(cmd.OutOrStdout(), cfg)
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit companion configuration",
		RunE:  show,
	}
	configCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show effective configuration (file plus environment overrides)",
			RunE:  show,
		},
		newConfigGetCommand(container, &asJSON),
		newConfigSetCommand(container),
		newConfigValidateCommand(container),
		newConfigResetCommand(container),
		newConfigDiffCommand(container),
		newConfigPathCommand(container),
	)
	return configCmd
}

func newConfigGetCommand(container *app.Container, asJSON *bool) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print one configuration value, e.g. update.timezone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				key = args[0]
			}
			if key == "" {
				return errors.New(ErrKeyRequired)
			}
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			tree, err := helpers.NewConfigTree(cfg)
			if err != nil {
				return err
			}
			value, err := tree.Get(key)
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), value)
			}
			return writeYAML(cmd.OutOrStdout(), value)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key path (e.g., update.timezone)")
	return cmd
}

func newConfigSetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value (value accepts YAML syntax)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			// Environment overrides are applied by Load only, so they never get persisted here.
			cfg, err := loader.LoadFile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			tree, err := helpers.NewConfigTree(cfg)
			if err != nil {
				return err
			}
			key := args[0]
			if err := tree.Set(key, helpers.ParseValue(strings.Join(args[1:], " "))); err != nil {
				return err
			}
			updated, err := tree.Config()
			if err != nil {
				return err
			}
			if err := helpers.SaveValidated(loader, updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)
			return nil
		},
	}
}

func newConfigValidateCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err == nil {
				err = configapp.Validate(cfg)
			}
			if err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
			return nil
		},
	}
}

func newConfigResetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Back up the current file and restore defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			if backup, err := loader.Backup(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Previous configuration saved to %s\n", backup)
			}
			defaults, err := loader.Reset()
			if err != nil {
				return fmt.Errorf("failed to reset configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset at %s\n", loader.Path())
			return writeYAML(cmd.OutOrStdout(), defaults)
		},
	}
}

func newConfigDiffCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show differences from the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load current configuration: %w", err)
			}
			diff := configDiff(configinfra.Defaults(), current)
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoDifferencesFromDefault)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

// configDiff treats a missing denied_builds list the same as an empty one.
func configDiff(defaults, current domain.Config) string {
	return cmp.Diff(defaults, current, cmpopts.EquateEmpty())
}

func newConfigPathCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
			return nil
		},
	}
}

func writeYAML(out io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return enc.Close()
}
