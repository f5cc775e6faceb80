package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/buildinfo"
	perrors "github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/observability"
	"github.com/matzehuels/perfroute/pkg/pipeline"
	"github.com/matzehuels/perfroute/pkg/project"
	"github.com/matzehuels/perfroute/pkg/store"
)

const (
	// maxProjectBytes caps request bodies.
	maxProjectBytes = 4 << 20

	shutdownTimeout = 5 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr  string
	store string
	cache cacheOpts
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve routing over HTTP",
		Long: `Serve routing as a JSON API.

Endpoints:
  POST   /v1/route         route a JSON project; ?passes=N&surface=top&refresh=true&save=true
  POST   /v1/nets          resolve a JSON project's nets
  GET    /v1/layouts       list stored layouts (with --store)
  GET    /v1/layouts/{id}  fetch a stored layout
  DELETE /v1/layouts/{id}  delete a stored layout
  GET    /healthz          liveness probe

Projects posted to the API must be self-contained: footprints, schematic or
nets inline, no library or netfile paths.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.store, "store", "", "store routed layouts (directory, file:, mongodb://, memory:)")
	cmd.Flags().BoolVar(&opts.cache.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.cache.redisURL, "redis", "", "Redis cache URL (default $"+redisEnv+")")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var st store.Store
	if opts.store != "" {
		if st, err = store.Open(ctx, opts.store); err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newAPI(runner, st, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	printSuccess("Listening on %s", StyleLink.Render("http://"+opts.addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// API
// =============================================================================

// api serves the HTTP endpoints. The store is optional.
type api struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

func newAPI(runner *pipeline.Runner, st store.Store, logger *log.Logger) *api {
	return &api{runner: runner, store: st, logger: logger}
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.observe)

	r.Get("/healthz", a.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/route", a.route)
		r.Post("/nets", a.nets)
		r.Get("/layouts", a.listLayouts)
		r.Get("/layouts/{id}", a.getLayout)
		r.Delete("/layouts/{id}", a.deleteLayout)
	})
	return r
}

// observe attaches a request logger and reports requests to the HTTP hooks.
func (a *api) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		ctx := withLogger(r.Context(), a.logger.With("request_id", middleware.GetReqID(r.Context())))
		r = r.WithContext(ctx)

		hooks.OnRequest(ctx, r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, time.Since(start))
		loggerFromContext(ctx).Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))
	})
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

// routeResponse is the body of a successful POST /v1/route.
type routeResponse struct {
	ID        string          `json:"id,omitempty"`
	Layout    *project.Layout `json:"layout"`
	Warnings  []string        `json:"warnings,omitempty"`
	InputHash string          `json:"input_hash"`
	Cached    bool            `json:"cached"`
}

func (a *api) route(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := readProject(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{Routing: p.Routing, Logger: loggerFromContext(ctx)}
	if s := q.Get("passes"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			a.fail(w, r, perrors.New(perrors.ErrCodeInvalidOptions, "passes must be a positive integer, got %q", s))
			return
		}
		opts.Routing.MaxPasses = n
		opts.Override = true
	}
	if s := q.Get("surface"); s != "" {
		opts.Routing.PrimarySurface = autoroute.Surface(s)
		opts.Override = true
	}
	if opts.Override {
		check := opts.Routing
		check.SetDefaults()
		if err := check.Validate(); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	opts.Refresh = q.Get("refresh") == "true"

	result, err := a.runner.Execute(ctx, p, opts)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	resp := routeResponse{
		Layout:    result.Layout,
		Warnings:  result.Warnings,
		InputHash: result.InputHash,
		Cached:    result.CacheInfo.RouteHit,
	}
	if q.Get("save") == "true" {
		if a.store == nil {
			a.fail(w, r, perrors.New(perrors.ErrCodeUnsupported, "server has no store"))
			return
		}
		doc := store.NewDocument(result.Layout)
		if err := a.store.Save(ctx, doc); err != nil {
			a.fail(w, r, perrors.Wrap(perrors.ErrCodeStore, err, "save layout"))
			return
		}
		resp.ID = doc.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// netsResponse is the body of a successful POST /v1/nets.
type netsResponse struct {
	Nets     netlist.Netlist `json:"nets"`
	Warnings []string        `json:"warnings,omitempty"`
}

func (a *api) nets(w http.ResponseWriter, r *http.Request) {
	p, err := readProject(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	nets, warnings, err := a.runner.ResolveNets(r.Context(), p, pipeline.Options{Logger: loggerFromContext(r.Context())})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, netsResponse{Nets: nets, Warnings: warnings})
}

func (a *api) listLayouts(w http.ResponseWriter, r *http.Request) {
	if !a.hasStore(w, r) {
		return
	}
	summaries, err := a.store.List(r.Context())
	if err != nil {
		a.fail(w, r, perrors.Wrap(perrors.ErrCodeStore, err, "list layouts"))
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (a *api) getLayout(w http.ResponseWriter, r *http.Request) {
	if !a.hasStore(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := a.store.Load(r.Context(), id)
	if err != nil {
		a.fail(w, r, storeError(err, id))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (a *api) deleteLayout(w http.ResponseWriter, r *http.Request) {
	if !a.hasStore(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.store.Delete(r.Context(), id); err != nil {
		a.fail(w, r, storeError(err, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) hasStore(w http.ResponseWriter, r *http.Request) bool {
	if a.store == nil {
		a.fail(w, r, perrors.New(perrors.ErrCodeUnsupported, "server has no store"))
		return false
	}
	return true
}

func storeError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return perrors.Wrap(perrors.ErrCodeNotFound, err, "layout %s", id)
	}
	return perrors.Wrap(perrors.ErrCodeStore, err, "layout %s", id)
}

// readProject decodes a self-contained JSON project from the request body.
func readProject(w http.ResponseWriter, r *http.Request) (*project.Project, error) {
	body := http.MaxBytesReader(w, r.Body, maxProjectBytes)
	p, err := project.Decode(body, project.FormatJSON)
	if err != nil {
		return nil, err
	}
	if p.Library != "" || p.Netfile != "" {
		return nil, perrors.New(perrors.ErrCodeInvalidProject, "library and netfile paths are not accepted over HTTP; inline them")
	}
	return p, nil
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := perrors.HTTPStatus(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: perrors.UserMessage(err), Code: string(perrors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
