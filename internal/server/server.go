// Package server exposes the mosaic pipeline over HTTP.
//
// Routes:
//
//	GET  /                                 upload form
//	POST /render?format=svg                render an uploaded values file
//	GET  /blocks/{height}/values           download {height}_tx_values.txt
//	GET  /blocks/{height}/render.{format}  render a block
//	GET  /healthz                          liveness probe
//
// Render options are taken from query parameters (width, height, padding,
// style, color, title, link, strict) over the configured defaults. Every
// render response carries an X-Render-ID header that also appears in the
// server log. Requests are served concurrently; each one lays out its own
// block.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/blockmondrian/pkg/config"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	bmio "github.com/matzehuels/blockmondrian/pkg/io"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
)

// RenderIDHeader names the response header carrying the render ID.
const RenderIDHeader = "X-Render-ID"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves mosaics rendered by a shared [pipeline.Runner].
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	limits   config.ServerConfig
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. cfg supplies render defaults and request limits.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		defaults: cfg.PipelineOptions(),
		limits:   cfg.Server,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRenderUpload)
	r.Route("/blocks/{height}", func(r chi.Router) {
		r.Get("/values", s.handleBlockValues)
		r.Get("/render.{format}", s.handleBlockRender)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

// handleRenderUpload renders values sent as the raw body or as the "file"
// field of a multipart form.
func (s *Server) handleRenderUpload(w http.ResponseWriter, r *http.Request) {
	id := newRenderID(w)
	r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxBodyBytes)

	opts, err := s.options(r, r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	body, err := uploadBody(r)
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	defer body.Close()

	if opts.Strict {
		opts.Values, err = bmio.ReadValuesStrict(body)
	} else {
		opts.Values, err = bmio.ReadValues(body)
	}
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	if opts.Values == nil {
		opts.Values = []float64{}
	}

	s.render(w, r, id, opts)
}

func (s *Server) handleBlockRender(w http.ResponseWriter, r *http.Request) {
	id := newRenderID(w)

	height, err := bmerrors.ValidateHeight(chi.URLParam(r, "height"))
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	opts, err := s.options(r, chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	opts.BlockHeight = &height
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("Block %d", height)
	}

	s.render(w, r, id, opts)
}

func (s *Server) handleBlockValues(w http.ResponseWriter, r *http.Request) {
	height, err := bmerrors.ValidateHeight(chi.URLParam(r, "height"))
	if err != nil {
		s.writeError(w, "", err)
		return
	}

	ctx, cancel := s.withRenderLimit(r.Context())
	defer cancel()

	values, err := s.runner.LoadValues(ctx, pipeline.Options{
		BlockHeight: &height,
		Refresh:     queryBool(r, "refresh"),
	})
	if err != nil {
		s.writeError(w, "", err)
		return
	}

	var buf bytes.Buffer
	if err := bmio.WriteValues(&buf, values); err != nil {
		s.writeError(w, "", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": bmio.ValuesFilename(height),
	}))
	_, _ = w.Write(buf.Bytes())
}

// render runs the pipeline for a single format and writes the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, id string, opts pipeline.Options) {
	ctx, cancel := s.withRenderLimit(r.Context())
	defer cancel()

	logger := s.logger.With("render_id", id)
	opts.Logger = logger

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	format := opts.Formats[0]
	logger.Info("rendered",
		"source", result.Source,
		"format", format,
		"placed", result.Stats.Placed,
		"skipped", result.Stats.Skipped,
		"cached", result.CacheInfo.RenderHit)

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Placed", strconv.Itoa(result.Stats.Placed))
	w.Header().Set("X-Skipped", strconv.Itoa(result.Stats.Skipped))
	_, _ = w.Write(result.Artifacts[format])
}

// =============================================================================
// Request Parsing
// =============================================================================

// options builds render options from the defaults and query parameters.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Thresholds = append([]float64(nil), s.defaults.Thresholds...)

	if format == "" {
		format = pipeline.FormatSVG
	}
	format = strings.ToLower(format)
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	q := r.URL.Query()
	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, bmerrors.New(bmerrors.ErrCodeInvalidDimensions, "invalid %s: %q", name, v)
			}
			*dst = f
		}
	}
	if v := q.Get("padding"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, bmerrors.New(bmerrors.ErrCodeInvalidInput, "invalid padding: %q", v)
		}
		opts.Padding = pipeline.Float(f)
	}
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("color"); v != "" {
		opts.Color = v
	}
	if err := bmerrors.ValidateDimensionLimit(opts.Width, opts.Height, s.limits.MaxDimension); err != nil {
		return opts, err
	}
	opts.Title = q.Get("title")
	opts.Link = q.Get("link")
	opts.Strict = queryBool(r, "strict")
	opts.Refresh = queryBool(r, "refresh")
	return opts, nil
}

// uploadBody returns the multipart "file" field or, for any other content
// type, the request body.
func uploadBody(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, bmerrors.Wrap(bmerrors.ErrCodeInvalidInput, err, "multipart upload needs a file field")
	}
	return file, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func (s *Server) withRenderLimit(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.limits.RenderLimit <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.limits.RenderLimit)
}

// newRenderID assigns a render ID and sets the response header.
func newRenderID(w http.ResponseWriter) string {
	id := uuid.NewString()
	w.Header().Set(RenderIDHeader, id)
	return id
}

// =============================================================================
// Errors & Logging
// =============================================================================

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	RenderID string `json:"render_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, id string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "render_id", id, "status", status, "error", err)
	}

	w.Header().Del("Content-Disposition")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:    bmerrors.UserMessage(err),
		Code:     string(bmerrors.GetCode(err)),
		RenderID: id,
	})
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case bmerrors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch bmerrors.GetCode(err) {
	case bmerrors.ErrCodeNotFound, bmerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case bmerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case bmerrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case bmerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
