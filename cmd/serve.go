package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"folio/pkg/config"
	"folio/pkg/handlers"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const reloadDebounce = 300 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	Long: `Serves the home page, section pages, content lists and detail pages. With
--watch the site configuration and data directory are watched and content is
reloaded on change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Bool("watch", false, "reload on configuration and data changes")
	serveCmd.Flags().Bool("cache-content", true, "cache loaded content between requests")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if !appConfig.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	h, err := setup()
	if err != nil {
		return err
	}
	engine, err := handlers.NewEngine(h, appConfig.SessionSecret)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appConfig.Watch {
		w, err := watch(ctx, h)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	srv := &http.Server{Addr: appConfig.Addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("serving", zap.String("addr", appConfig.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	zap.L().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// watch reloads the site configuration and drops cached content after changes
// settle.
func watch(ctx context.Context, h *handlers.Handler) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range watchDirs() {
		if err := watcher.Add(dir); err != nil {
			zap.L().Warn("failed to watch", zap.String("path", dir), zap.Error(err))
		}
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if event.Has(fsnotify.Create) && isDir(event.Name) {
					if err := watcher.Add(event.Name); err != nil {
						zap.L().Warn("failed to watch", zap.String("path", event.Name), zap.Error(err))
					}
				}
				zap.L().Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() { reload(h) })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zap.L().Warn("watcher error", zap.Error(err))
			}
		}
	}()
	return watcher, nil
}

func reload(h *handlers.Handler) {
	site, err := config.LoadSite(appConfig.SiteConfig)
	if err != nil {
		zap.L().Error("keeping previous site configuration", zap.Error(err))
		h.Store().InvalidateCache()
		return
	}
	h.Store().SetSite(site)
	h.Reload()
	zap.L().Info("site reloaded")
}

// watchDirs is the config file's directory and every directory under the data root.
func watchDirs() []string {
	dirs := []string{filepath.Dir(appConfig.SiteConfig)}
	_ = filepath.WalkDir(appConfig.DataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() != "." && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
