package clientdist

import _ "embed"

// ReloadClientJS is the live-reload browser client.
//
// It is served by the dev server at "/<injectedFolder>/reload-client.js".
//go:embed reload-client.js
var ReloadClientJS []byte

// MorphdomJS is the DOM-diffing helper used by the reload client to apply
// HTML updates without a full page refresh.
//go:embed morphdom.js
var MorphdomJS []byte
