package cli

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/errors"
)

const defaultServeAddr = ":8735"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	dir  string
	addr string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview generated figures in the browser",
		Long: `Serve the figures directory over HTTP. The index page groups outputs
by run directory with the newest run first; individual files are
available under /files/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", defaultFiguresDir, "directory to serve")
	cmd.Flags().StringVar(&opts.addr, "addr", defaultServeAddr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	if !dirExists(opts.dir) {
		return errors.New(errors.ErrCodeFileNotFound,
			"figures directory %s does not exist (run figgen plot first)", opts.dir)
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServeHandler(opts.dir, c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printInfo("Serving %s on %s", opts.dir, StyleLink.Render(displayURL(opts.addr)))
	printDetail("press Ctrl-C to stop")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Error("shutdown failed", "err", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// displayURL turns a listen address into something clickable.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// newServeHandler builds the preview router: an index page at / and the
// raw files under /files/.
func newServeHandler(dir string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		groups, err := listFigures(dir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, indexData{Dir: dir, Groups: groups}); err != nil {
			logger.Error("render index", "err", err)
		}
	})
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(dir))))

	return r
}

// requestLogger logs one line per request through the charm logger.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

// figureFile is one entry on the index page. Path is relative to the
// served directory, slash-separated.
type figureFile struct {
	Path string
	Name string
	Size string
}

// figureGroup collects the files of one directory.
type figureGroup struct {
	Dir   string
	Files []figureFile
}

type indexData struct {
	Dir    string
	Groups []figureGroup
}

// listFigures walks dir and groups figure outputs by directory, newest
// run first. Only rendered formats and metadata files are listed.
func listFigures(dir string) ([]figureGroup, error) {
	byDir := make(map[string][]figureFile)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".svg", ".png", ".pdf", ".json":
		default:
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		key := path.Dir(rel)
		byDir[key] = append(byDir[key], figureFile{
			Path: rel,
			Name: path.Base(rel),
			Size: formatSize(info.Size()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	groups := make([]figureGroup, 0, len(byDir))
	for d, files := range byDir {
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
		groups = append(groups, figureGroup{Dir: d, Files: files})
	}
	// Run directories carry a sortable timestamp, so descending order
	// puts the newest run on top.
	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir > groups[j].Dir })

	return groups, nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>figgen</title>
<style>
body { font-family: ui-monospace, monospace; margin: 2rem auto; max-width: 48rem; color: #222; }
h1 { font-size: 1.2rem; }
h2 { font-size: 0.95rem; margin-top: 1.5rem; color: #555; }
ul { list-style: none; padding-left: 0; }
li { padding: 0.15rem 0; }
a { color: #0969da; text-decoration: none; }
a:hover { text-decoration: underline; }
.size { color: #999; font-size: 0.85rem; margin-left: 0.5rem; }
.empty { color: #999; }
</style>
</head>
<body>
<h1>figgen · {{.Dir}}</h1>
{{if not .Groups}}<p class="empty">No figures yet. Run <code>figgen plot</code> or <code>figgen run</code> first.</p>{{end}}
{{range .Groups}}<h2>{{.Dir}}</h2>
<ul>
{{range .Files}}<li><a href="/files/{{.Path}}">{{.Name}}</a><span class="size">{{.Size}}</span></li>
{{end}}</ul>
{{end}}</body>
</html>
`))
