package server

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/frontnote/internal/livereload"
	"github.com/conneroisu/frontnote/internal/version"
)

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   version.Info `json:"version"`
	Out       string       `json:"out"`
	Clients   int          `json:"clients"`
	Builds    int          `json:"builds"`
	LastBuild *time.Time   `json:"last_build,omitempty"`
	LastError string       `json:"last_error,omitempty"`
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Get(),
		Out:       s.config.Out,
		Clients:   s.hub.Clients(),
		Builds:    s.builds,
	}
	if !s.lastBuild.IsZero() {
		last := s.lastBuild.UTC()
		health.LastBuild = &last
	}
	if s.lastError != nil {
		health.Status = "degraded"
		health.LastError = s.lastError.Error()
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}

// handleGuide serves files from the output directory. HTML pages get the
// live reload client injected.
func (s *PreviewServer) handleGuide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(r.URL.Path, "/") {
		name = path.Join(name, "index.html")
	}

	root := http.Dir(s.config.Out)
	f, info, err := open(root, name)
	if err != nil && os.IsNotExist(err) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		s.logger.Error(r.Context(), err, "Failed to open file", "path", name)
		return
	}
	defer f.Close()

	if info.IsDir() {
		http.Redirect(w, r, strings.TrimSuffix(r.URL.Path, "/")+"/", http.StatusMovedPermanently)
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	ext := strings.ToLower(path.Ext(name))
	if ext != ".html" && ext != ".htm" {
		http.ServeContent(w, r, name, info.ModTime(), f)
		return
	}

	page, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		s.logger.Error(r.Context(), err, "Failed to read page", "path", name)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, name, info.ModTime(), bytes.NewReader(livereload.Inject(page)))
}

func open(root http.FileSystem, name string) (http.File, os.FileInfo, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

var notFoundTemplate = template.Must(template.New("404").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Not found</title></head>
<body>
<h1>404</h1>
<p>{{ .Path }} is not part of the guide. <a href="/">Back to the overview</a>.</p>
</body>
</html>
`))

func notFoundPage(requested string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return notFoundTemplate.Execute(w, struct{ Path string }{requested})
	})
}

func (s *PreviewServer) notFound(w http.ResponseWriter, r *http.Request) {
	templ.Handler(notFoundPage(r.URL.Path), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *PreviewServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// The websocket upgrade needs the original writer to hijack.
		if r.URL.Path == livereload.Path {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug(r.Context(), "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
