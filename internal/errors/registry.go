package errors

// Error codes used throughout the development server.
const (
	CodeMissingLogger    = "DS001"
	CodeMissingOutputDir = "DS002"
	CodeInvalidConfig    = "DS003"
	CodePathOutsideRoot  = "DS010"
	CodePortExhausted    = "DS020"
	CodeListenFailed     = "DS021"
	CodeWriteFailed      = "DS030"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (DS001-DS009)
	// ============================================

	CodeMissingLogger: {
		Category: CategoryConfig,
		Message:  "Missing logger collaborator",
		Detail:   "The server requires a logger at construction time. Pass one in Options.Logger.",
	},
	CodeMissingOutputDir: {
		Category: CategoryConfig,
		Message:  "Missing output directory",
		Detail:   "The server requires the directory containing the generated site output.",
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// Resolution Errors (DS010-DS019)
	// ============================================

	CodePathOutsideRoot: {
		Category: CategoryResolve,
		Message:  "Resolved path escapes the output directory",
		Detail:   "The request path canonicalizes to a location outside the configured output root. This indicates path traversal in the request or a caller bug, not a missing file.",
	},

	// ============================================
	// Bind Errors (DS020-DS029)
	// ============================================

	CodePortExhausted: {
		Category: CategoryBind,
		Message:  "No available port found",
		Detail:   "Every port in the retry window was already in use.",
	},
	CodeListenFailed: {
		Category: CategoryBind,
		Message:  "Failed to start listening",
	},

	// ============================================
	// Protocol Errors (DS030-DS039)
	// ============================================

	CodeWriteFailed: {
		Category: CategoryProtocol,
		Message:  "Failed to write reload message",
	},
}
