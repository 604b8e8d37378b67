package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnconnor-sec/xspin-go/internal/config"
	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/output"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the xspin configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(),
		newConfigExampleCommand(),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := configPathArg(args)
			if err != nil {
				return err
			}
			return runConfigInit(cmd.OutOrStdout(), configPath, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func runConfigInit(w io.Writer, configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New(errors.ValidationFailed, "Configuration file already exists").
			WithDetails(fmt.Sprintf("Path: %s", configPath)).
			WithSuggestion("Use --force to overwrite it")
	}

	if err := config.Save(config.DefaultConfig(), configPath); err != nil {
		return err
	}

	output.NewFormatter(w).Success("Configuration written to: %s", configPath)
	return nil
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a configuration file for errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := configPathArg(args)
			if err != nil {
				return err
			}
			return runConfigValidate(cmd.OutOrStdout(), configPath)
		},
	}
}

func runConfigValidate(w io.Writer, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(w)
	formatter.Success("Configuration is valid: %s", cfg.ConfigPath)
	formatter.Info("delay %s, %d frames, %s scheduler", cfg.Spinner.Delay, len(cfg.Spinner.Frames), cfg.Kind())
	return nil
}

func newConfigExampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an annotated example configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.Example)
		},
	}
}

// configPathArg returns the explicit path argument or the default location.
func configPathArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	configPath, _, err := config.FindConfigPath()
	return configPath, err
}
