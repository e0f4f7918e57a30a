// Package server implements the development HTTP server and its
// live-reload channel.
//
// This package implements:
//   - Socket binding with sequential port retry on collision
//   - The request pipeline: middleware chain, URL resolution, static file
//     emission, reload-script injection
//   - WebSocket-based browser notification (status, error, reload events)
//   - A process-wide registry handing out one server per logical name
//
// # Architecture
//
// The server consists of several components:
//
//   - Server: owns the listening socket and its lifecycle state machine
//   - pipeline: drives middleware sequentially, then built-in resolution
//   - ReloadChannel: broadcasts wire messages to subscribed browsers
//   - Registry: keyed cache so multiple logical sites share one process
//
// # Reload Protocol
//
// Messages are single JSON text frames discriminated by "type":
//
//	{"type":"eleventy.status","status":"connected"}
//	{"type":"eleventy.error","error":{"name":"...","message":"..."}}
//	{"type":"eleventy.reload","subtype":"...","files":[...],"build":{...}}
//
// Broadcasts with no subscriber are dropped, not queued; a client that
// connects after a reload event misses it until the next one.
package server
