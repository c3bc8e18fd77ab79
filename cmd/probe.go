package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domscope"
	"github.com/xkilldash9x/domscope/internal/observability"
	"github.com/xkilldash9x/domscope/pkg/be"
	"github.com/xkilldash9x/domscope/pkg/browser"
	"github.com/xkilldash9x/domscope/pkg/config"
	"github.com/xkilldash9x/domscope/pkg/have"
	"github.com/xkilldash9x/domscope/pkg/wait"
)

// newProbeCommand builds the probe subcommand: open a page, wait for a
// selector to satisfy a condition, exit nonzero when it never does. Useful
// as a smoke check in deploy pipelines.
func newProbeCommand(cfg func() *config.Config) *cobra.Command {
	var (
		selector string
		visible  bool
		text     string
		timeout  time.Duration
	)

	probeCmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Open a page and wait for a selector to satisfy a condition.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			logger := observability.GetLogger()

			session, err := browser.NewSession(cmd.Context(), cfg().Browser, logger)
			if err != nil {
				return fmt.Errorf("starting browser: %w", err)
			}
			page := domscope.New(session, domscope.WithLogger(logger))
			defer func() {
				if cerr := page.Close(); cerr != nil {
					logger.Warn("closing browser session", zap.Error(cerr))
				}
			}()

			if err := page.Open(cmd.Context(), url); err != nil {
				return err
			}

			el := page.S(selector)
			cond := be.InDOM
			if visible {
				cond = be.Visible
			}
			if text != "" {
				cond = cond.And(have.Text(text))
			}

			if err := el.Should(cmd.Context(), cond, timeout); err != nil {
				var timedOut *wait.TimeoutError
				if errors.As(err, &timedOut) {
					logger.Error("probe failed",
						zap.String("url", url),
						zap.String("selector", selector),
						zap.Duration("timeout", timedOut.Timeout),
						zap.Error(err))
				}
				return err
			}

			logger.Info("probe ok", zap.String("url", url), zap.String("selector", selector))
			return nil
		},
	}

	probeCmd.Flags().StringVarP(&selector, "selector", "s", "body", "CSS selector to probe")
	probeCmd.Flags().BoolVar(&visible, "visible", false, "require the element to be visible, not just present")
	probeCmd.Flags().StringVar(&text, "text", "", "require the element's text to contain this substring")
	probeCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "wait timeout (default from config)")
	return probeCmd
}
