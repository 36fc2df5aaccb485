package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/resolvetree/internal/config"
	"github.com/roach88/resolvetree/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	LogLevel   string
	ConfigPath string

	// Config is the loaded configuration with flags applied. It is set by
	// the root command before any subcommand runs.
	Config config.Config

	// Logger writes through the process zerolog logger.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the resolvetree CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "resolvetree",
		Short: "Compile GraphQL read requests into query IR",
		Long: `resolvetree compiles GraphQL read requests against a graph schema into a
typed, builder-neutral query IR: reads, relationship traversals, connections,
edges and leaf fields, with where filters and sort orders decoded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "configuration file (YAML)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewNamesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// setup loads the configuration, applies flags over it and installs the
// process logger. Flags given explicitly win over the file.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading config", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("format") || opts.ConfigPath == "" {
		cfg.Format = opts.Format
	}
	if flags.Changed("log-level") || opts.ConfigPath == "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	opts.Format = cfg.Format

	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	zl, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring logger", err)
	}
	logging.SetGlobalLogger(zl)
	opts.Logger = logging.Slog(&logging.Logger)
	opts.Config = cfg
	return nil
}

// logger returns the configured logger, or a discarding one when the root
// command did not run (subcommands built standalone in tests).
func (opts *RootOptions) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logging.Slog(&logging.Logger)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
