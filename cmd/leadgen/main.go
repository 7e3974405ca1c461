// Command leadgen serves a synthetic CRM lead book over the collaborator
// endpoints so the dashboard can run without a real backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Ismail26477/crm-main/internal/demodata"
	"github.com/Ismail26477/crm-main/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type options struct {
	addr     string
	leads    int
	seedDays int
	seed     uint64
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "leadgen",
		Short: "Serve a synthetic CRM lead book",
		Long: `leadgen generates a deterministic set of leads and serves them on the
same endpoints the dashboard reads: leads, upcoming follow-ups, analytics,
lead scores, team performance and real-time metrics.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":5000", "listen address")
	cmd.Flags().IntVar(&opts.leads, "leads", demodata.DefaultLeads, "number of leads to generate")
	cmd.Flags().IntVar(&opts.seedDays, "seed-days", demodata.DefaultSeedDays, "spread createdAt over this many past days")
	cmd.Flags().Uint64Var(&opts.seed, "seed", demodata.DefaultSeed, "random seed; the same seed serves the same book")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	log := logger.Get().Named("leadgen")

	leads, err := demodata.Generate(ctx, demodata.Config{
		Leads:    opts.leads,
		SeedDays: opts.seedDays,
		Seed:     opts.seed,
	})
	if err != nil {
		return fmt.Errorf("generate leads: %w", err)
	}

	r := chi.NewRouter()
	demodata.NewServer(demodata.NewBook(leads, nil)).Register(ctx, r)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving demo CRM", logger.String("addr", opts.addr), logger.Int("leads", len(leads)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(shutdownCtx, "demo CRM stopped")
	return nil
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
