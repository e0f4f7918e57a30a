package server

import "github.com/eleventy-go/devserver/internal/errors"

// Wire message type discriminators.
const (
	MessageTypeStatus = "eleventy.status"
	MessageTypeError  = "eleventy.error"
	MessageTypeReload = "eleventy.reload"
)

// Connection statuses carried by status messages.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// statusMessage tells a client about the connection state.
type statusMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// errorMessage pushes a serialized error to the client overlay.
type errorMessage struct {
	Type  string           `json:"type"`
	Error errors.WireError `json:"error"`
}

// reloadMessage tells clients that output files changed.
type reloadMessage struct {
	Type    string       `json:"type"`
	Subtype string       `json:"subtype,omitempty"`
	Files   []string     `json:"files"`
	Build   BuildSummary `json:"build"`
}

// TemplateEntry describes one generated template in a build.
type TemplateEntry struct {
	// InputPath is the source file the template was generated from.
	InputPath string `json:"inputPath"`

	// URL is the served URL of the generated page.
	URL string `json:"url"`

	// OutputPath is the generated file on disk.
	OutputPath string `json:"outputPath,omitempty"`
}

// BuildSummary is the build-pipeline output attached to reload events.
type BuildSummary struct {
	Templates []TemplateEntry `json:"templates"`
}

// ReloadEvent is the input to NotifyReload, produced by the external
// build pipeline.
type ReloadEvent struct {
	// Subtype hints at the kind of change ("css" skips the full refresh).
	Subtype string

	// Files is the set of changed source paths.
	Files []string

	// Build summarizes the templates the pipeline produced.
	Build BuildSummary
}

// URLTransform rewrites a template URL for serving under a path prefix.
type URLTransform func(pathPrefix, url string) string

// PrefixURL is the default URLTransform: it prepends the normalized path
// prefix, where "/" means no prefix.
func PrefixURL(pathPrefix, url string) string {
	if pathPrefix == "" || pathPrefix == "/" {
		return url
	}
	if len(url) > 0 && url[0] == '/' {
		url = url[1:]
	}
	return pathPrefix + url
}
