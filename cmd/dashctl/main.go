// Command dashctl renders the lead dashboard once from a CRM backend and
// prints its headline numbers, without running the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ismail26477/crm-main/pkg/logger"
)

type globalOptions struct {
	baseURL  string
	logLevel string
	window   int
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "dashctl",
		Short: "One-shot lead dashboard renders and summaries",
		Long: `dashctl fetches leads, follow-ups and analytics from a CRM backend,
aggregates them like the dashboard server does, and either writes the charts
as PNG files or prints the numbers as tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.SetLevelString(g.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "http://localhost:5000", "CRM backend base URL")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&g.window, "window", 30, "headline window in days (1..365)")

	root.AddCommand(renderCmd(g))
	root.AddCommand(summaryCmd(g))
	return root
}

func main() {
	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
