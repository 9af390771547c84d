package relay

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/Pranoschal/BookVerse/internal/broadcast"
)

const (
	opSet    = "set"
	opDelete = "del"
)

// frame is one medium change on the wire.
type frame struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// Conn is a broadcast.Medium backed by the relay server. Local writes go to
// the hub; frames from other sessions surface as watcher changes. The relay
// never echoes a frame to its author, so a Conn only ever observes remote
// changes.
type Conn struct {
	ws     *websocket.Conn
	logger *log.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	watchers map[int]func(broadcast.Change)
	nextID   int
	closed   bool
}

// Dial connects to the relay endpoint (ws://host/ws) and starts reading
// remote changes.
func Dial(url string, logger *log.Logger) (*Conn, error) {
	if logger == nil {
		logger = log.Default()
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}

	c := &Conn{
		ws:       ws,
		logger:   logger,
		watchers: make(map[int]func(broadcast.Change)),
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) Set(key string, value []byte) error {
	return c.send(frame{Op: opSet, Key: key, Value: value})
}

func (c *Conn) Delete(key string) error {
	return c.send(frame{Op: opDelete, Key: key})
}

func (c *Conn) Watch(fn func(broadcast.Change)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.ws.Close()
}

func (c *Conn) send(f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal relay frame: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write relay frame: %w", err)
	}
	return nil
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.logger.Warn("relay connection lost", "err", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn("dropping malformed relay frame", "err", err)
			continue
		}

		ch := broadcast.Change{Key: f.Key, Value: f.Value, Removed: f.Op == opDelete}

		c.mu.Lock()
		fns := make([]func(broadcast.Change), 0, len(c.watchers))
		for _, fn := range c.watchers {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn(ch)
		}
	}
}
