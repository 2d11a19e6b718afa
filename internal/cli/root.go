package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/mcgclock/pkg/logger"
	"github.com/turtacn/mcgclock/pkg/protocol"
)

type options struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *protocol.Config
}

// NewRootCmd builds the mcgctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "mcgctl",
		Short:         "mcgctl: MCG clock mode transition tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (default: reference table)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: json or text")

	rootCmd.AddCommand(
		newTransitionCmd(opts),
		newSweepCmd(opts),
		newTableCmd(opts),
		newValidateCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

func (o *options) load(cmd *cobra.Command) error {
	cfg := protocol.Default()
	if o.cfgFile != "" {
		loaded, err := protocol.Load(o.cfgFile)
		if err != nil {
			return wrapExit(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Observability.LogLevel = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Observability.LogFormat = o.logFormat
	}
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	o.cfg = cfg
	return nil
}

// Execute runs the root command and exits with the mapped exit code on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(GetExitCode(err))
	}
}

// Personal.AI order the ending
