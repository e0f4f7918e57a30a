package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/eleventy-go/devserver/internal/errors"
)

// ReloadChannel manages WebSocket subscribers and broadcasts the reload
// protocol to them.
//
// Every connected browser tab is a subscriber and every broadcast reaches
// all of them; a subscriber whose write fails is dropped on the spot.
type ReloadChannel struct {
	pathPrefix string
	transform  URLTransform

	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewReloadChannel creates a reload channel. transform rewrites template
// URLs for the configured path prefix; nil means PrefixURL.
func NewReloadChannel(pathPrefix string, transform URLTransform) *ReloadChannel {
	if transform == nil {
		transform = PrefixURL
	}
	return &ReloadChannel{
		pathPrefix: pathPrefix,
		transform:  transform,
		clients:    make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // single trusted local consumer
			},
		},
	}
}

// Handle upgrades an inbound request and subscribes the connection. The
// connected status message is sent immediately, before any reload event
// can race it.
func (c *ReloadChannel) Handle(w http.ResponseWriter, req *http.Request) {
	conn, err := c.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	if err := c.send(conn, statusMessage{Type: MessageTypeStatus, Status: StatusConnected}); err != nil {
		conn.Close()
		return
	}

	c.mu.Lock()
	c.clients[conn] = true
	c.mu.Unlock()
	getMetrics().connectedClients.Inc()

	// Inbound frames are ignored; the protocol is push-only. Reading
	// until failure is how disconnects are noticed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	c.mu.Lock()
	delete(c.clients, conn)
	c.mu.Unlock()
	getMetrics().connectedClients.Dec()
	conn.Close()
}

// NotifyReload broadcasts a reload event. The build summary is filtered
// to templates whose input path is in the changed set, and each surviving
// URL is rewritten for the path prefix.
func (c *ReloadChannel) NotifyReload(event ReloadEvent) {
	changed := make(map[string]bool, len(event.Files))
	for _, f := range event.Files {
		changed[f] = true
	}

	templates := make([]TemplateEntry, 0, len(event.Build.Templates))
	for _, entry := range event.Build.Templates {
		if !changed[entry.InputPath] {
			continue
		}
		entry.URL = c.transform(c.pathPrefix, entry.URL)
		templates = append(templates, entry)
	}

	files := event.Files
	if files == nil {
		files = []string{}
	}

	getMetrics().observeBroadcast(MessageTypeReload)
	c.broadcast(reloadMessage{
		Type:    MessageTypeReload,
		Subtype: event.Subtype,
		Files:   files,
		Build:   BuildSummary{Templates: templates},
	})
}

// NotifyError pushes a serialized error to all subscribers.
func (c *ReloadChannel) NotifyError(err error) {
	getMetrics().observeBroadcast(MessageTypeError)
	c.broadcast(errorMessage{Type: MessageTypeError, Error: errors.Serialize(err)})
}

// NotifyExit tells subscribers the server is going away. The owner calls
// this before tearing down the socket.
func (c *ReloadChannel) NotifyExit() {
	getMetrics().observeBroadcast(MessageTypeStatus)
	c.broadcast(statusMessage{Type: MessageTypeStatus, Status: StatusDisconnected})
}

// ClientCount returns the number of subscribed clients.
func (c *ReloadChannel) ClientCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Close closes every subscriber connection.
func (c *ReloadChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for conn := range c.clients {
		conn.Close()
		delete(c.clients, conn)
	}
}

// broadcast sends one message to every subscriber. With no subscribers it
// is a silent no-op: messages are dropped, never queued.
func (c *ReloadChannel) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(c.clients))
	for conn := range c.clients {
		conns = append(conns, conn)
	}
	c.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.mu.Lock()
			delete(c.clients, conn)
			c.mu.Unlock()
			conn.Close()
		}
	}
}

func (c *ReloadChannel) send(conn *websocket.Conn, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
