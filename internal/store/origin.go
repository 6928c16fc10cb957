package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Origin is one backend shared by several Clients.
// A write through one Client is reported to every other connected Client.
// There is no locking across Clients: the last writer wins.
type Origin struct {
	backend Store

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewOrigin creates a new Origin over backend.
func NewOrigin(backend Store) *Origin {
	return &Origin{
		backend: backend,
		clients: make(map[string]*Client),
	}
}

// Connect attaches a new Client to the origin.
func (o *Origin) Connect() *Client {
	c := &Client{
		id:        uuid.NewString(),
		origin:    o,
		listeners: make(map[int]func(Change)),
	}
	o.mu.Lock()
	o.clients[c.id] = c
	o.mu.Unlock()
	return c
}

func (o *Origin) disconnect(id string) {
	o.mu.Lock()
	delete(o.clients, id)
	o.mu.Unlock()
}

func (o *Origin) broadcast(change Change) {
	o.mu.RLock()
	targets := make([]*Client, 0, len(o.clients))
	for id, c := range o.clients {
		if id == change.Source {
			continue
		}
		targets = append(targets, c)
	}
	o.mu.RUnlock()

	for _, c := range targets {
		c.notify(change)
	}
}

// Client is one context's view of an Origin. It implements Store.
type Client struct {
	id     string
	origin *Origin

	mu        sync.Mutex
	listeners map[int]func(Change)
	nextID    int
}

// ID identifies the client in Change.Source.
func (c *Client) ID() string {
	return c.id
}

// OnChange registers fn for writes made by other clients.
// The returned function unregisters it.
func (c *Client) OnChange(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) notify(change Change) {
	c.mu.Lock()
	fns := make([]func(Change), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Close detaches the client from its origin.
func (c *Client) Close() {
	c.origin.disconnect(c.id)
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.origin.backend.Get(ctx, key)
}

func (c *Client) Keys(ctx context.Context) ([]string, error) {
	return c.origin.backend.Keys(ctx)
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	if err := c.origin.backend.Set(ctx, key, value); err != nil {
		return err
	}
	c.origin.broadcast(Change{Key: key, Value: value, Source: c.id})
	return nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.origin.backend.Remove(ctx, key); err != nil {
		return err
	}
	c.origin.broadcast(Change{Key: key, Source: c.id})
	return nil
}

func (c *Client) Clear(ctx context.Context) error {
	if err := c.origin.backend.Clear(ctx); err != nil {
		return err
	}
	c.origin.broadcast(Change{Source: c.id})
	return nil
}
