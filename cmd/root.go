package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domscope/internal/observability"
	"github.com/xkilldash9x/domscope/pkg/config"
)

// NewRootCommand builds a fresh root command with all subcommands attached.
// A fresh instance per invocation keeps flag state from leaking between runs.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:     "domscope",
		Short:   "domscope queries and waits on live web pages.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "domscope"})
				return fmt.Errorf("loading config: %w", err)
			}
			loaded.Apply()
			observability.InitializeLogger(loaded.Logger)
			cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./domscope.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newProbeCommand(func() *config.Config { return cfg }))
	return rootCmd
}

// Execute runs the root command under ctx and logs failures.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}
