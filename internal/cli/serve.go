package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/coffee-indicators/internal/scheduler"
	"github.com/rohmanhakim/coffee-indicators/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the indicators over HTTP and keep the cache warm.",
	Long: `Start the HTTP API and a scheduler. The refresh job drives the same
retrieval path as a request, so a fresh cache makes each run a single read.
Backends that keep expired rows get a periodic cleanup job.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		return runServe(ctx, a)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen-addr", "", "HTTP listen address (e.g., :8080)")
}

// runServe blocks until ctx is cancelled or the server fails, then shuts both parts down.
func runServe(ctx context.Context, a *app) error {
	sched := scheduler.New(ctx, a.log, a.cfg.Location(), 2*a.cfg.Timeout())
	refresh := scheduler.NewRefreshJob(a.indicators, a.log)
	if err := sched.AddJob(a.cfg.RefreshSchedule(), refresh); err != nil {
		return err
	}
	if a.expirer != nil {
		if err := sched.AddJob(a.cfg.CleanupSchedule(), scheduler.NewCleanupJob(a.expirer, a.log)); err != nil {
			return err
		}
	}

	srv := server.New(server.Config{
		Addr:           a.cfg.ListenAddr(),
		Log:            a.log,
		Indicators:     a.indicators,
		Price:          a.price,
		AllowedOrigins: a.cfg.AllowedOrigins(),
		RequestTimeout: 2 * a.cfg.Timeout(),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		// warm the cache before the first tick; a failure is logged and left to the schedule
		_ = sched.RunNow(refresh)
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
