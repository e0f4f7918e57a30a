package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/eleventy-go/devserver/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "devserver.json"

	// DefaultName is the registry key used when none is configured.
	DefaultName = "default"

	// DefaultPort is the port the server first tries to bind.
	DefaultPort = 8080

	// DefaultOutput is the directory containing generated site output.
	DefaultOutput = "_site"

	// DefaultInjectedFolder is the reserved URL namespace for the
	// reload-client assets, distinct from the real output tree.
	DefaultInjectedFolder = ".11ty"

	// DefaultPortRetryLimit is how many successive ports are tried when
	// the starting port is already in use.
	DefaultPortRetryLimit = 10
)

// Server is the development server configuration.
//
// Zero values mean "use the default"; Finalize fills them in. Enabled and
// Watch use pointers so that an explicit false survives the merge.
type Server struct {
	// Name is the unique registry key for this server.
	Name string `json:"name,omitempty"`

	// Port is the starting port; the server retries upward on collision.
	Port int `json:"port,omitempty"`

	// Output is the directory of generated files to serve.
	Output string `json:"output,omitempty"`

	// PathPrefix is the URL prefix all served URLs live under. "/" means
	// no prefix.
	PathPrefix string `json:"pathPrefix,omitempty"`

	// Enabled controls reload-script injection and the reload channel.
	Enabled *bool `json:"enabled,omitempty"`

	// ShowAllHosts enumerates every local interface address in the ready
	// message instead of just localhost.
	ShowAllHosts bool `json:"showAllHosts,omitempty"`

	// InjectedFolderName is the reserved URL namespace for reload assets.
	InjectedFolderName string `json:"injectedFolderName,omitempty"`

	// PortRetryLimit caps the port-collision retry loop.
	PortRetryLimit int `json:"portRetryLimit,omitempty"`

	// Watch enables the built-in output watcher in the CLI.
	Watch *bool `json:"watch,omitempty"`
}

// Load reads configuration from the given file path.
func Load(path string) (*Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Server
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetailf("parse %s: %v", path, err).
			Wrap(err)
	}
	return &cfg, nil
}

// LoadFromWorkingDir loads devserver.json from the current directory.
// A missing file is not an error; defaults apply.
func LoadFromWorkingDir() (*Server, error) {
	path := filepath.Join(".", ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Server{}, nil
	}
	return Load(path)
}

// Finalize applies defaults and normalizes the configuration. The result
// is the immutable view the server runs with.
func (c *Server) Finalize() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.InjectedFolderName == "" {
		c.InjectedFolderName = DefaultInjectedFolder
	}
	if c.PortRetryLimit == 0 {
		c.PortRetryLimit = DefaultPortRetryLimit
	}
	c.PathPrefix = NormalizePathPrefix(c.PathPrefix)
	if c.Enabled == nil {
		c.Enabled = boolPtr(true)
	}
	if c.Watch == nil {
		c.Watch = boolPtr(false)
	}
}

// ReloadEnabled reports whether script injection and the reload channel
// are active.
func (c *Server) ReloadEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// WatchEnabled reports whether the CLI should watch the output directory.
func (c *Server) WatchEnabled() bool {
	return c.Watch != nil && *c.Watch
}

// Validate checks invariants that Finalize cannot repair.
func (c *Server) Validate() error {
	if c.Output == "" {
		return errors.New(errors.CodeMissingOutputDir)
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("port %d out of range", c.Port)
	}
	if c.PortRetryLimit < 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("portRetryLimit %d is negative", c.PortRetryLimit)
	}
	return nil
}

// NormalizePathPrefix forces a leading and trailing slash so that "/"
// uniformly denotes "no prefix".
func NormalizePathPrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func boolPtr(b bool) *bool { return &b }
