// Package dashboard serves the Techtrail web view: an HTML page over a
// JSON API, with a server-sent event stream that pushes collection
// changes so the page never needs a full reload after a mutation.
package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techtrail/techtrail/internal/news"
	"github.com/techtrail/techtrail/internal/notify"
	"github.com/techtrail/techtrail/internal/store"
	"github.com/techtrail/techtrail/internal/tech"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Deps are the collaborators the dashboard serves.
type Deps struct {
	Collection *tech.Collection
	KV         *store.Store
	News       *news.Fetcher
	Notifier   *notify.Notifier
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Deps Deps
	Port int
	Out  io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Deps.Collection == nil {
		return fmt.Errorf("dashboard: collection is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	router, err := NewRouter(opts.Deps)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// NewRouter builds the Gin router with all routes registered. Exposed so
// tests can drive it through httptest.
func NewRouter(deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, deps)
	return router, nil
}
