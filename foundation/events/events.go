// Package events fans NewMemo notifications out to the websocket clients
// connected to the node.
package events

import (
	"fmt"
	"sync"
)

// DefaultBuffer is the number of messages a client can fall behind before
// messages for it are dropped.
const DefaultBuffer = 100

// client is a registered receiver and the messages it missed.
type client struct {
	ch      chan string
	dropped uint64
}

// Events maintains the set of registered clients keyed by a unique id.
type Events struct {
	buffer  int
	mu      sync.RWMutex
	clients map[string]*client
	dropped uint64
}

// New constructs an Events where every client gets the specified buffer.
func New(buffer int) *Events {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Events{
		buffer:  buffer,
		clients: make(map[string]*client),
	}
}

// Shutdown closes and removes every client channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, c := range evt.clients {
		delete(evt.clients, id)
		close(c.ch)
	}
}

// Acquire registers a client under the id and returns the channel its
// messages arrive on. Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if c, exists := evt.clients[id]; exists {
		return c.ch
	}

	c := client{ch: make(chan string, evt.buffer)}
	evt.clients[id] = &c

	return c.ch
}

// Release closes and removes the client registered under the id. It
// reports how many messages the client missed.
func (evt *Events) Release(id string) (dropped uint64, err error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	c, exists := evt.clients[id]
	if !exists {
		return 0, fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.clients, id)
	close(c.ch)

	return c.dropped, nil
}

// Count returns the number of connected clients.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.clients)
}

// Dropped returns the number of messages dropped across all clients since
// the Events was constructed.
func (evt *Events) Dropped() uint64 {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return evt.dropped
}

// Send delivers the message to every client without blocking. A client
// whose buffer is full misses the message. Send reports how many clients
// missed it.
func (evt *Events) Send(msg string) (dropped int) {

	// The write lock guards the drop counters.
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for _, c := range evt.clients {
		select {
		case c.ch <- msg:
		default:
			c.dropped++
			dropped++
		}
	}
	evt.dropped += uint64(dropped)

	return dropped
}
