package web

import (
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/csvscope/internal/charts"
	"github.com/KaramelBytes/csvscope/internal/dataset"
	"github.com/KaramelBytes/csvscope/internal/logging"
	"github.com/KaramelBytes/csvscope/internal/metrics"
)

//go:embed templates/page.html
var templateFS embed.FS

// Config holds the server settings.
type Config struct {
	PreviewRows    int
	MaxBytes       int64
	MaxRows        int
	Chart          charts.Options
	MetricsEnabled bool
	// ReadTimeout and WriteTimeout bound each request; zero uses 30s and 120s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the dashboard. It keeps no dataset state between requests.
type Server struct {
	cfg     Config
	log     *logrus.Logger
	metrics *metrics.Metrics
	fetcher dataset.Fetcher
	tmpl    *template.Template
	mux     *http.ServeMux
}

// New builds a Server. fetcher serves URL sources; m may be nil.
func New(cfg Config, fetcher dataset.Fetcher, log *logrus.Logger, m *metrics.Metrics) (*Server, error) {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	if log == nil {
		log = logging.Discard()
	}
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"lower": strings.ToLower,
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{cfg: cfg, log: log, metrics: m, fetcher: fetcher, tmpl: tmpl, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	if cfg.MetricsEnabled && m != nil {
		s.mux.Handle("/metrics", m.Handler())
	}
	return s, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type ctxKey struct{}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ServeHTTP assigns a request id, dispatches and logs one entry per request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))

	elapsed := time.Since(start)
	s.metrics.Observe(routeLabel(r.URL.Path), elapsed)
	s.log.WithFields(logrus.Fields{
		"request_id": id,
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     rec.status,
		"duration":   elapsed.String(),
	}).Info("request")
}

func routeLabel(path string) string {
	switch path {
	case "/", "/healthz", "/metrics":
		return path
	}
	return "other"
}

// page is the template model.
type page struct {
	Form      Form
	UploadB64 string
	Result    *Result
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.writePage(w, http.StatusOK, &page{Result: &Result{}})
	case http.MethodPost:
		f, err := s.parseForm(w, r)
		if err != nil {
			res := &Result{Status: &Status{Level: LevelError, Message: "Error reading file: " + err.Error()}}
			s.metrics.Load("upload", metrics.OutcomeError)
			s.writePage(w, http.StatusOK, &page{Form: f, Result: res})
			return
		}
		p := &pipeline{
			opt: dataset.Options{
				MaxBytes: s.cfg.MaxBytes,
				MaxRows:  s.cfg.MaxRows,
				Fetcher:  s.fetcher,
			},
			chartOpt: s.cfg.Chart,
			preview:  s.cfg.PreviewRows,
			log:      s.log.WithField("request_id", RequestID(r.Context())),
			metrics:  s.metrics,
		}
		res := p.run(r.Context(), f)
		pg := &page{Form: f, Result: res}
		if f.Upload != nil {
			pg.UploadB64 = base64.StdEncoding.EncodeToString(f.Upload)
		}
		s.writePage(w, http.StatusOK, pg)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// parseForm reads the widget values. A newly uploaded file replaces the echoed
// one; action=clear drops the upload.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (Form, error) {
	var f Form
	if s.cfg.MaxBytes > 0 {
		// base64 echo inflates by 4/3, plus room for the other fields
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBytes*2+(1<<20))
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return f, err
	}
	f.URL = strings.TrimSpace(r.FormValue("url"))
	f.Filter = strings.TrimSpace(r.FormValue("filter"))
	f.ShowRaw = r.FormValue("show_raw") != ""
	f.HistX = r.FormValue("hist_x")
	f.ScatterX = r.FormValue("scatter_x")
	f.ScatterY = r.FormValue("scatter_y")
	f.BoxX = r.FormValue("box_x")
	f.BoxY = r.FormValue("box_y")
	if r.FormValue("action") == "clear" {
		return f, nil
	}

	if file, hdr, err := r.FormFile("file"); err == nil {
		defer file.Close()
		var rd io.Reader = file
		if s.cfg.MaxBytes > 0 {
			rd = io.LimitReader(file, s.cfg.MaxBytes+1)
		}
		b, err := io.ReadAll(rd)
		if err != nil {
			return f, err
		}
		if s.cfg.MaxBytes > 0 && int64(len(b)) > s.cfg.MaxBytes {
			return f, dataset.ErrTooLarge
		}
		f.Upload = b
		f.UploadName = hdr.Filename
		return f, nil
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return f, err
	}

	if enc := r.FormValue("upload_b64"); enc != "" {
		b, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return f, fmt.Errorf("decode echoed upload: %w", err)
		}
		f.Upload = b
		f.UploadName = r.FormValue("upload_name")
	}
	return f, nil
}

func (s *Server) writePage(w http.ResponseWriter, status int, pg *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf strings.Builder
	if err := s.tmpl.Execute(&buf, pg); err != nil {
		s.log.WithError(err).Error("template execution failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	rt, wt := s.cfg.ReadTimeout, s.cfg.WriteTimeout
	if rt <= 0 {
		rt = 30 * time.Second
	}
	if wt <= 0 {
		wt = 120 * time.Second
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       rt,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      wt,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("dashboard listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("Shutdown complete")
	return nil
}

func dataURI(img *charts.Image) template.URL {
	return template.URL("data:" + img.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
}
