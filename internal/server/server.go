package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	stderrors "errors"

	"github.com/eleventy-go/devserver/internal/config"
	"github.com/eleventy-go/devserver/internal/errors"
	"github.com/eleventy-go/devserver/internal/logger"
	"github.com/eleventy-go/devserver/internal/resolve"
)

// State is the lifecycle state of a Server.
type State int

const (
	StateUnbound State = iota
	StateBinding
	StateListening
	StateErrorRetrying
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateErrorRetrying:
		return "error-retrying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Server. Config and Logger are required.
type Options struct {
	// Config is the finalized server configuration.
	Config *config.Server

	// Logger is the logging collaborator. Required.
	Logger logger.Logger

	// Middleware runs before built-in resolution, in order.
	Middleware []Handler

	// TransformURL rewrites template URLs for the path prefix on reload
	// events. Defaults to PrefixURL.
	TransformURL URLTransform
}

// Server owns the listening socket, the request pipeline, and the reload
// channel for one logical site.
type Server struct {
	cfg      *config.Server
	log      logger.Logger
	reload   *ReloadChannel
	pipeline *pipeline

	httpServer *http.Server
	listener   net.Listener

	// listen is swappable for tests exercising the retry loop.
	listen func(addr string) (net.Listener, error)

	mu    sync.Mutex
	state State
	port  int
}

// New constructs a Server. Missing required collaborators are
// construction-time errors, never deferred to first use.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New(errors.CodeMissingLogger)
	}
	if opts.Config == nil {
		opts.Config = &config.Server{}
	}
	cfg := opts.Config
	cfg.Finalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resolver, err := resolve.New(cfg.Output, cfg.PathPrefix)
	if err != nil {
		return nil, err
	}

	reload := NewReloadChannel(cfg.PathPrefix, opts.TransformURL)

	s := &Server{
		cfg:    cfg,
		log:    opts.Logger,
		reload: reload,
		listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
		state: StateUnbound,
	}
	s.pipeline = newPipeline(cfg, opts.Logger, resolver, reload, opts.Middleware)
	return s, nil
}

// Config returns the finalized configuration the server runs with.
func (s *Server) Config() *config.Server {
	return s.cfg
}

// Reload returns the server's reload channel, the entry point for the
// build pipeline's change events.
func (s *Server) Reload() *ReloadChannel {
	return s.reload
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Port returns the actually bound port, which may differ from the
// configured one after collision retries. Zero until listening.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Handler exposes the request pipeline, mainly for tests embedding the
// server behind httptest.
func (s *Server) Handler() http.Handler {
	return s.pipeline.router
}

// Listen binds the socket and starts serving in the background.
//
// A port already in use moves to the next port, up to the configured
// retry limit; exhausting the limit is fatal with an actionable message.
// Any other bind error is reported through the logger and returned
// without retrying.
func (s *Server) Listen() error {
	s.setState(StateBinding)

	port := s.cfg.Port
	for attempt := 0; ; attempt++ {
		ln, err := s.listen(fmt.Sprintf(":%d", port))
		if err == nil {
			s.mu.Lock()
			s.listener = ln
			s.port = ln.Addr().(*net.TCPAddr).Port
			s.state = StateListening
			s.mu.Unlock()
			break
		}

		if !isAddrInUse(err) {
			s.log.Error(fmt.Sprintf("Could not start server on port %d: %v", port, err))
			s.setState(StateUnbound)
			return errors.New(errors.CodeListenFailed).
				WithDetailf("listen on port %d: %v", port, err).
				Wrap(err)
		}

		if attempt >= s.cfg.PortRetryLimit {
			s.setState(StateUnbound)
			return errors.New(errors.CodePortExhausted).
				WithDetailf("ports %d through %d are all in use", s.cfg.Port, port).
				WithSuggestion(fmt.Sprintf("pass --port to choose a starting port other than %d", s.cfg.Port))
		}

		s.setState(StateErrorRetrying)
		s.log.Message(logger.Msg(
			fmt.Sprintf("Port %d in use, trying %d", port, port+1),
			logger.WithLevel(logger.LevelWarn),
		))
		getMetrics().portRetries.Inc()
		port++
		s.setState(StateBinding)
	}

	s.httpServer = &http.Server{Handler: s.pipeline.router}
	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.log.Error(fmt.Sprintf("Server error: %v", err))
		}
	}()

	s.logReady()
	return nil
}

// Close notifies subscribers, then tears down the socket. Clients get the
// disconnected status before their connection drops.
func (s *Server) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	s.reload.NotifyExit()
	s.reload.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// logReady emits the human-readable ready message: the localhost URL and,
// when configured, every local interface address, each with the path
// prefix.
func (s *Server) logReady() {
	urls := []string{fmt.Sprintf("http://localhost:%d%s", s.Port(), s.cfg.PathPrefix)}
	if s.cfg.ShowAllHosts {
		for _, host := range localHosts() {
			urls = append(urls, fmt.Sprintf("http://%s:%d%s", host, s.Port(), s.cfg.PathPrefix))
		}
	}
	for _, u := range urls {
		s.log.Message(logger.Msg("Server at "+u, logger.WithForce(), logger.WithColor("green")))
	}
}

// localHosts enumerates non-loopback IPv4 interface addresses.
func localHosts() []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var hosts []string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			hosts = append(hosts, ip4.String())
		}
	}
	return hosts
}

func isAddrInUse(err error) bool {
	return stderrors.Is(err, syscall.EADDRINUSE)
}
