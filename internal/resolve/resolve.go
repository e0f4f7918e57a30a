// Package resolve maps request URLs to served-file decisions.
//
// Resolution is a pure function of the request path, the configured path
// prefix, and the filesystem under the output root. It implements the
// trailing-slash convention: directory-style resources canonically end in
// "/" (backed by index.html), flat-file-style resources never do (backed
// by a sibling .html file). Requests arriving in the non-canonical form
// are answered with a 301 to the canonical one.
package resolve

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/eleventy-go/devserver/internal/errors"
)

// Kind discriminates the resolution outcome.
type Kind int

const (
	// Found means a regular file backs the request.
	Found Kind = iota

	// Redirect means the request used the non-canonical slash form.
	Redirect

	// NotFound means nothing in the output tree matches.
	NotFound
)

// Result is the outcome of resolving one request URL.
// FilePath is set only for Found; TargetURL only for Redirect.
type Result struct {
	Kind       Kind
	StatusCode int
	FilePath   string
	TargetURL  string
}

// Resolver resolves request URLs against one output root.
type Resolver struct {
	root   string // absolute, cleaned output root
	prefix string // normalized path prefix, "/" means none
}

// New creates a Resolver for the given output root and normalized path
// prefix. The root is made absolute once here; containment is checked on
// every resolution because the resolver sees arbitrary caller URLs.
func New(outputRoot, pathPrefix string) (*Resolver, error) {
	if outputRoot == "" {
		return nil, errors.New(errors.CodeMissingOutputDir)
	}
	abs, err := filepath.Abs(outputRoot)
	if err != nil {
		return nil, err
	}
	if pathPrefix == "" {
		pathPrefix = "/"
	}
	return &Resolver{root: filepath.Clean(abs), prefix: pathPrefix}, nil
}

// Resolve maps a request URL (path plus optional query; no host needed)
// to a Result. The query is ignored entirely. A path that canonicalizes
// outside the output root is an error, not a 404: it indicates traversal
// in the request or a caller bug, and no filesystem access happens for it.
func (r *Resolver) Resolve(rawURL string) (Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, errors.New(errors.CodePathOutsideRoot).
			WithDetailf("unparseable request url %q", rawURL).
			Wrap(err)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}

	// Prefix mismatch is rejected, not redirected.
	rel, ok := r.stripPrefix(p)
	if !ok {
		return notFound(), nil
	}

	candidate, err := r.contain(p, rel)
	if err != nil {
		return Result{}, err
	}

	// Exact file match wins over any convention.
	if info, statErr := os.Stat(candidate); statErr == nil && info.Mode().IsRegular() {
		return found(candidate), nil
	}

	endsInSlash := strings.HasSuffix(p, "/")

	// Two conventional probes: the directory form <path>/index.html and
	// the flat form <path>.html (no separator before the suffix). The
	// flat form never applies to the root itself, whose .html sibling
	// would sit outside the output tree.
	indexPath := filepath.Join(candidate, "index.html")
	hasIndex := isRegular(indexPath)
	htmlPath := strings.TrimSuffix(candidate, string(filepath.Separator)) + ".html"
	hasHTML := rel != "" && rel != "/" && isRegular(htmlPath)

	// Each slash form owns its own canonical resource: a trailing slash
	// means the directory form, no slash means the flat form. Only when
	// the matching form is absent does the other produce a redirect to
	// its canonical URL.
	if endsInSlash {
		if hasIndex {
			return found(indexPath), nil
		}
		if hasHTML {
			return redirect(strings.TrimSuffix(p, "/")), nil
		}
	} else {
		if hasHTML {
			return found(htmlPath), nil
		}
		if hasIndex {
			return redirect(p + "/"), nil
		}
	}

	return notFound(), nil
}

// stripPrefix removes the configured prefix from the request path.
// Returns false when the path lives outside the prefix namespace.
func (r *Resolver) stripPrefix(p string) (string, bool) {
	if r.prefix == "/" {
		return strings.TrimPrefix(p, "/"), true
	}
	if !strings.HasPrefix(p, r.prefix) {
		return "", false
	}
	return strings.TrimPrefix(p, r.prefix), true
}

// contain joins the stripped path onto the output root and verifies the
// result is still lexically inside it. Runs before any filesystem access.
func (r *Resolver) contain(requestPath, rel string) (string, error) {
	// NUL can arrive via %00; backslash would bypass the lexical check on
	// Windows-style separators. Both are invalid input, not 404s.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", errors.New(errors.CodePathOutsideRoot).
			WithDetailf("request path %q contains forbidden bytes", requestPath)
	}

	candidate := filepath.Join(r.root, filepath.FromSlash(rel))
	if candidate != r.root && !strings.HasPrefix(candidate, r.root+string(filepath.Separator)) {
		return "", errors.New(errors.CodePathOutsideRoot).
			WithDetailf("request path %q resolves to %q, outside %q", requestPath, candidate, r.root)
	}
	return candidate, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func found(path string) Result {
	return Result{Kind: Found, StatusCode: 200, FilePath: path}
}

func redirect(target string) Result {
	return Result{Kind: Redirect, StatusCode: 301, TargetURL: target}
}

func notFound() Result {
	return Result{Kind: NotFound, StatusCode: 404}
}
