package cmd

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/go-drift/signage/cmd/signage/internal/config"
	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/descriptor"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

const reloadDebounce = 100 * time.Millisecond

var (
	serveListen string
	serveReload time.Duration
	serveWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [layout]",
	Short: "Mount a layout and serve the live display over HTTP",
	Long: `Serve mounts a layout, starts its refresh schedulers and serves the
current document over HTTP. Every request sees the tree as it is at that
moment.

With --watch (the default) the layout file is reloaded when it changes.
A layout that fails to parse is reported and the running display is
kept. Assets under display.static_dir are served at display.static_root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (default server.listen or :8080)")
	serveCmd.Flags().DurationVar(&serveReload, "reload", -1, "browser refresh interval, 0 disables (default server.reload)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "reload the layout when the file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Layout = args[0]
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}
	if serveReload >= 0 {
		cfg.Reload = serveReload
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := &liveDisplay{ctx: ctx, cfg: cfg, registry: newRegistry(cfg)}
	if err := d.reload(); err != nil {
		return err
	}
	defer d.teardown()

	if serveWatch {
		watcher, err := watchLayout(cfg.Layout, func() {
			defer errors.Recover("signage.reload")
			if err := d.reload(); err != nil {
				errors.Report(&errors.SignageError{
					Op:        "signage.serve",
					Kind:      errors.KindParsing,
					Err:       err,
					Timestamp: time.Now(),
				})
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "reloaded %s\n", cfg.Layout)
		})
		if err != nil {
			return fmt.Errorf("failed to watch layout: %w", err)
		}
		defer watcher.Close()
	}

	mux := http.NewServeMux()
	mux.Handle("/", d)
	if cfg.StaticDir != "" {
		prefix := strings.TrimSuffix(cfg.StaticRoot, "/") + "/"
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.StaticDir))))
	}

	srv := &http.Server{Addr: cfg.Listen, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.ErrOrStderr(), "serving %s on %s\n", cfg.Layout, cfg.Listen)

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// liveDisplay owns the mounted tree of a served layout.
type liveDisplay struct {
	ctx      context.Context
	cfg      *config.Resolved
	registry *descriptor.Registry

	mu     sync.Mutex
	anchor *core.Anchor
	doc    *html.Node
}

// reload deserializes the layout and replaces the mounted tree. The current
// tree stays mounted when the layout cannot be loaded.
func (d *liveDisplay) reload() error {
	w, err := loadLayout(d.registry, d.cfg.Layout)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.anchor != nil {
		d.anchor.Teardown()
		d.anchor = nil
	}
	doc, root := document(d.cfg, d.cfg.Reload)
	anchor, err := core.Mount(w, root, core.WithParentContext(d.ctx))
	if err != nil {
		return err
	}
	d.anchor, d.doc = anchor, doc
	return nil
}

func (d *liveDisplay) teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.anchor != nil {
		d.anchor.Teardown()
		d.anchor = nil
	}
}

func (d *liveDisplay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	d.mu.Lock()
	anchor, doc := d.anchor, d.doc
	d.mu.Unlock()
	if anchor == nil {
		http.Error(w, "no layout mounted", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	var err error
	anchor.Update(func(*html.Node) {
		err = dom.Render(&buf, doc)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

// watchLayout calls onChange after the layout file is written or replaced.
// Bursts of events within reloadDebounce produce one call.
func watchLayout(layout string, onChange func()) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(layout)); err != nil {
		watcher.Close()
		return nil, err
	}
	name := filepath.Clean(layout)

	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				errors.Report(&errors.SignageError{
					Op:        "signage.serve",
					Kind:      errors.KindInit,
					Err:       err,
					Timestamp: time.Now(),
				})
			}
		}
	}()
	return watcher, nil
}
