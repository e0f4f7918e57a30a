package server

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clientdist "github.com/eleventy-go/devserver/client/dist"
	"github.com/eleventy-go/devserver/internal/config"
	"github.com/eleventy-go/devserver/internal/inject"
	"github.com/eleventy-go/devserver/internal/logger"
	"github.com/eleventy-go/devserver/internal/resolve"
)

// Handler is one entry in the request middleware chain. A handler must
// either terminate the response itself or call next exactly once; the
// driver runs entries strictly sequentially, so next always completes
// before Handle returns to its caller.
type Handler interface {
	Handle(w http.ResponseWriter, r *http.Request, next func())
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, next func())

// Handle calls f.
func (f HandlerFunc) Handle(w http.ResponseWriter, r *http.Request, next func()) {
	f(w, r, next)
}

const jsContentType = "text/javascript; charset=utf-8"

// pipeline turns requests into exactly one terminal response action:
// a body write, redirect headers, or the not-found fallback.
type pipeline struct {
	cfg        *config.Server
	log        logger.Logger
	resolver   *resolve.Resolver
	reload     *ReloadChannel
	middleware []Handler
	router     chi.Router
	scriptTag  string

	// read-once asset cache keyed by file name
	assetMu sync.Mutex
	assets  map[string][]byte
}

func newPipeline(cfg *config.Server, log logger.Logger, resolver *resolve.Resolver, reload *ReloadChannel, middleware []Handler) *pipeline {
	p := &pipeline{
		cfg:        cfg,
		log:        log,
		resolver:   resolver,
		reload:     reload,
		middleware: middleware,
		scriptTag:  inject.ScriptTag(cfg.PathPrefix, cfg.InjectedFolderName),
		assets:     make(map[string][]byte),
	}
	p.router = p.buildRouter()
	return p
}

// buildRouter mounts the reserved injected-folder routes and the
// catch-all resolution handler.
func (p *pipeline) buildRouter() chi.Router {
	r := chi.NewRouter()

	folder := strings.TrimSuffix(p.cfg.PathPrefix, "/") + "/" + p.cfg.InjectedFolderName

	// Reserved well-known paths, served regardless of build output.
	r.Get(folder+"/reload-client.js", p.serveAsset("reload-client.js"))
	r.Get(folder+"/morphdom.js", p.serveAsset("morphdom.js"))
	r.Handle(folder+"/metrics", promhttp.Handler())

	// The reload channel attaches at the injected folder itself.
	if p.cfg.ReloadEnabled() {
		r.Get(folder+"/", p.reload.Handle)
		r.Get(folder, p.reload.Handle)
	}

	r.HandleFunc("/*", p.handle)
	return r
}

// serveAsset serves an embedded client asset with a JavaScript content
// type, memoized on first read.
func (p *pipeline) serveAsset(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := p.asset(name)
		if data == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", jsContentType)
		w.Write(data)
	}
}

func (p *pipeline) asset(name string) []byte {
	p.assetMu.Lock()
	defer p.assetMu.Unlock()

	if data, ok := p.assets[name]; ok {
		return data
	}

	var data []byte
	switch name {
	case "reload-client.js":
		data = clientdist.ReloadClientJS
	case "morphdom.js":
		data = clientdist.MorphdomJS
	}
	p.assets[name] = data
	return data
}

// handle drives the middleware chain, then built-in resolution, through
// the buffering decorator so HTML injection happens exactly once at
// finalize.
func (p *pipeline) handle(w http.ResponseWriter, r *http.Request) {
	buf := newResponseBuffer(w)

	var run func(i int)
	run = func(i int) {
		if i < len(p.middleware) {
			p.middleware[i].Handle(buf, r, func() { run(i + 1) })
			return
		}
		p.resolveAndServe(buf, r)
	}
	run(0)

	buf.finalize(p.cfg.ReloadEnabled(), p.scriptTag)
	getMetrics().observeRequest(buf.Status())
}

// resolveAndServe is the built-in terminal handler: resolve the URL, then
// emit the file, the redirect, or the fallback.
func (p *pipeline) resolveAndServe(w http.ResponseWriter, r *http.Request) {
	res, err := p.resolver.Resolve(r.URL.String())
	if err != nil {
		// Boundary violation: invalid input, not a missing file.
		p.log.Error(fmt.Sprintf("Invalid request path %q: %v", r.URL.Path, err))
		http.Error(w, "Invalid path", http.StatusForbidden)
		return
	}

	switch res.Kind {
	case resolve.Found:
		p.serveFile(w, r, res.FilePath)
	case resolve.Redirect:
		w.Header().Set("Location", res.TargetURL)
		w.WriteHeader(http.StatusMovedPermanently)
	default:
		p.fallback(w, r)
	}
}

func (p *pipeline) serveFile(w http.ResponseWriter, r *http.Request, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Error(fmt.Sprintf("HTTP 500: could not read %s: %v", prettyPath(path), err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// fallback always terminates the response. A 404 is expected traffic
// during active editing and logs at a lower severity than other errors,
// with the local path an operator would check.
func (p *pipeline) fallback(w http.ResponseWriter, r *http.Request) {
	local := filepath.Join(p.cfg.Output, filepath.FromSlash(strings.TrimPrefix(r.URL.Path, "/")))
	p.log.Message(logger.Msg(
		fmt.Sprintf("HTTP 404: %s not found in output directory (%s)", r.URL.Path, prettyPath(local)),
		logger.WithLevel(logger.LevelWarn),
	))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "<!doctype html><html><head><title>Not Found</title></head><body><h1>404</h1><p>Not found: <code>%s</code></p></body></html>", r.URL.Path)
}

// prettyPath strips the working directory from a path for log messages.
func prettyPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
