package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eleventy-go/devserver/internal/config"
	"github.com/eleventy-go/devserver/internal/logger"
)

func writeOutput(t *testing.T, root, name, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
}

func newTestServer(t *testing.T, cfg *config.Server, middleware ...Handler) *Server {
	t.Helper()

	s, err := New(Options{
		Config:     cfg,
		Logger:     logger.Discard(),
		Middleware: middleware,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestPipeline_ServesHTMLWithInjectedScript(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "index.html", "<html><head><title>Hi</title></head><body></body></html>")

	s := newTestServer(t, &config.Server{Output: out})
	rr := get(t, s, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q, want HTML", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "/.11ty/reload-client.js") {
		t.Errorf("body should reference the reload client:\n%s", body)
	}
	if !strings.Contains(body, "</title><script") {
		t.Errorf("script should be injected after </title>:\n%s", body)
	}
}

func TestPipeline_NonHTMLUntouched(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "style.css", "body { color: red }")

	s := newTestServer(t, &config.Server{Output: out})
	rr := get(t, s, "/style.css")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "reload-client") {
		t.Error("CSS body must pass through untouched")
	}
}

func TestPipeline_InjectionDisabled(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "index.html", "<html><body></body></html>")

	enabled := false
	s := newTestServer(t, &config.Server{Output: out, Enabled: &enabled})
	rr := get(t, s, "/")

	if strings.Contains(rr.Body.String(), "reload-client") {
		t.Error("injection must be disabled when enabled=false")
	}
}

func TestPipeline_TrailingSlashRedirect(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "about/index.html", "<html></html>")

	s := newTestServer(t, &config.Server{Output: out})
	rr := get(t, s, "/about")

	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/about/" {
		t.Errorf("Location = %q, want /about/", loc)
	}
}

func TestPipeline_FallbackTerminates404(t *testing.T) {
	s := newTestServer(t, &config.Server{Output: t.TempDir()})
	rr := get(t, s, "/missing")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("fallback must terminate the response with a body")
	}
}

func TestPipeline_TraversalRejected(t *testing.T) {
	s := newTestServer(t, &config.Server{Output: t.TempDir()})
	rr := get(t, s, "/..%2f..%2fetc%2fpasswd")

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for traversal", rr.Code)
	}
}

func TestPipeline_ReservedAssets(t *testing.T) {
	s := newTestServer(t, &config.Server{Output: t.TempDir()})

	for _, path := range []string{"/.11ty/reload-client.js", "/.11ty/morphdom.js"} {
		rr := get(t, s, path)
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rr.Code)
			continue
		}
		if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "javascript") {
			t.Errorf("GET %s Content-Type = %q, want JavaScript", path, ct)
		}
		if rr.Body.Len() == 0 {
			t.Errorf("GET %s returned empty body", path)
		}
	}
}

func TestPipeline_ReservedAssetsUnderPrefix(t *testing.T) {
	s := newTestServer(t, &config.Server{Output: t.TempDir(), PathPrefix: "/docs/"})

	rr := get(t, s, "/docs/.11ty/reload-client.js")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestPipeline_MiddlewareRunsInOrderBeforeResolution(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "index.html", "<html></html>")

	var order []string
	first := HandlerFunc(func(w http.ResponseWriter, r *http.Request, next func()) {
		order = append(order, "first-before")
		next()
		order = append(order, "first-after")
	})
	second := HandlerFunc(func(w http.ResponseWriter, r *http.Request, next func()) {
		order = append(order, "second")
		next()
	})

	s := newTestServer(t, &config.Server{Output: out}, first, second)
	rr := get(t, s, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	want := []string{"first-before", "second", "first-after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestPipeline_MiddlewareCanTerminate(t *testing.T) {
	teapot := HandlerFunc(func(w http.ResponseWriter, r *http.Request, next func()) {
		w.WriteHeader(http.StatusTeapot)
	})

	s := newTestServer(t, &config.Server{Output: t.TempDir()}, teapot)
	rr := get(t, s, "/anything")

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418 from middleware", rr.Code)
	}
}

func TestPipeline_MiddlewareHTMLGetsInjected(t *testing.T) {
	page := HandlerFunc(func(w http.ResponseWriter, r *http.Request, next func()) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>custom</body></html>"))
	})

	s := newTestServer(t, &config.Server{Output: t.TempDir()}, page)
	rr := get(t, s, "/custom")

	if !strings.Contains(rr.Body.String(), "reload-client") {
		t.Error("middleware-served HTML should get the script injected at finalize")
	}
}

func TestPipeline_TracingMiddlewarePassesThrough(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "index.html", "<html></html>")

	s := newTestServer(t, &config.Server{Output: out}, Tracing())
	rr := get(t, s, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 through tracing middleware", rr.Code)
	}
}

func TestPipeline_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &config.Server{Output: t.TempDir()})
	rr := get(t, s, "/.11ty/metrics")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
