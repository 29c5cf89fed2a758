package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/erraggy/yw7tools/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] <file.yw7>",
		Short: "Re-import a yw7 project whenever it changes",
		Long: `Watch a yWriter 7 project and import it again each time it is saved.
With --snapshot the host snapshot is rewritten after every successful import.
With --metrics-addr conversion metrics are served in the Prometheus format
at /metrics. Stop with Ctrl-C.`,
		Example: `  yw7tools watch novel.yw7 --snapshot novel.yaml
  yw7tools watch novel.yw7 --metrics-addr localhost:9090`,
		Args: cobra.ExactArgs(1),
		RunE: a.runWatch,
	}
	addConversionFlags(cmd)
	f := cmd.Flags()
	f.String("snapshot", "", "snapshot file rewritten after each import")
	f.Duration("debounce", watch.DefaultDebounce, "quiet period before a change is processed")
	f.String("metrics-addr", "", "address serving Prometheus metrics at /metrics")
	f.Bool("sequential-ids", false, "allocate readable host IDs (ch1, sc1, ...) instead of UUIDs")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshot, _ := cmd.Flags().GetString("snapshot")
	if snapshot != "" {
		if _, err := memhost.FormatForPath(snapshot); err != nil {
			return err
		}
	}
	return a.watch(ctx, args[0], snapshot)
}

// watch imports path once, then again on every change until ctx is done.
func (a *app) watch(ctx context.Context, path, snapshot string) error {
	a.metrics = converter.NewMetrics(nil)
	log := a.log.With(zap.String("path", path))

	if addr := a.cfg.Watch.MetricsAddr; addr != "" {
		srv := a.serveMetrics(addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	w, err := watch.NewWatcher(path, a.cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	defer w.Stop()

	a.reimport(log, path, snapshot)
	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case c, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if c.Kind == watch.ChangeRemoved {
				log.Warn("project file removed")
				continue
			}
			a.reimport(log, path, snapshot)
		case err, ok := <-w.Errors:
			if ok {
				log.Warn("watch error", zap.Error(err))
			}
		}
	}
}

// reimport runs one import and logs its outcome. Failures are logged, not
// returned, so the watch goes on.
func (a *app) reimport(log *zap.Logger, path, snapshot string) {
	h := memhost.New()
	result, err := a.importInto(path, h)
	if err != nil {
		log.Error("import failed", zap.Error(err))
		return
	}
	log.Info("project imported",
		zap.String("title", result.Project.Title),
		zap.Int("entities", h.Len()),
		zap.Int("warnings", result.WarningCount),
		zap.Int("critical", result.CriticalCount),
	)
	for _, issue := range result.Issues {
		log.Debug("conversion issue", zap.Stringer("issue", issue))
	}
	if snapshot == "" {
		return
	}
	if err := h.Save(snapshot); err != nil {
		log.Error("saving snapshot failed", zap.String("snapshot", snapshot), zap.Error(err))
		return
	}
	log.Info("snapshot written", zap.String("snapshot", snapshot))
}

func (a *app) serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.log.Info("serving metrics", zap.String("addr", addr))
	return srv
}
