// Package inject inserts the reload-client script reference into served
// HTML.
//
// Documents under a live-reload workflow are frequently mid-edit and
// transiently invalid, so injection never requires well-formed HTML and
// never fails: it walks an ordered list of insertion points and falls back
// to appending when none of them exist.
package inject

import "strings"

// Markers probed in priority order. Matching is a case-sensitive literal
// substring search; the first hit wins.
const (
	markerTitle   = "</title>"
	markerHead    = "</head>"
	markerBody    = "</body>"
	markerHTML    = "</html>"
	markerDoctype = "<!doctype html>"
)

// Script inserts ref into the HTML document content:
// after </title>, else before </head>, else before </body>, else before
// </html>, else after a leading <!doctype html>, else appended to the end
// of the (possibly empty) content.
func Script(content, ref string) string {
	if idx := strings.Index(content, markerTitle); idx != -1 {
		after := idx + len(markerTitle)
		return content[:after] + ref + content[after:]
	}
	if idx := strings.Index(content, markerHead); idx != -1 {
		return content[:idx] + ref + content[idx:]
	}
	if idx := strings.Index(content, markerBody); idx != -1 {
		return content[:idx] + ref + content[idx:]
	}
	if idx := strings.Index(content, markerHTML); idx != -1 {
		return content[:idx] + ref + content[idx:]
	}
	if strings.HasPrefix(content, markerDoctype) {
		return markerDoctype + ref + content[len(markerDoctype):]
	}
	return content + ref
}

// ScriptTag builds the script element referencing the reload client under
// the injected folder namespace, honoring the configured path prefix.
func ScriptTag(pathPrefix, injectedFolder string) string {
	if pathPrefix == "" {
		pathPrefix = "/"
	}
	return `<script type="module" src="` + pathPrefix + injectedFolder + `/reload-client.js"></script>`
}
