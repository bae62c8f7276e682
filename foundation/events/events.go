// Package events fans node events out to websocket subscribers. An event is
// a trace line prefixed with the component that raised it, such as
// "state: ProcessChain: ...", and a subscriber can narrow the feed to the
// components it cares about.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// subscriber is one registered feed.
type subscriber struct {
	ch      chan string
	sources []string
	dropped int
}

// wants reports whether the event was raised by one of the subscriber's
// sources. No sources means every event.
func (s *subscriber) wants(event string) bool {
	if len(s.sources) == 0 {
		return true
	}

	for _, src := range s.sources {
		if Source(event) == src {
			return true
		}
	}

	return false
}

// Source returns the component that raised the event, the text before the
// first colon.
func Source(event string) string {
	src, _, found := strings.Cut(event, ":")
	if !found {
		return ""
	}

	return src
}

// =============================================================================

// Events maintains the set of subscribers keyed by a unique id.
type Events struct {
	m  map[string]*subscriber
	mu sync.RWMutex
}

// New constructs an empty event feed.
func New() *Events {
	return &Events{
		m: make(map[string]*subscriber),
	}
}

// Shutdown closes and removes every subscriber.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire registers a subscriber for the events raised by the listed
// sources, or for every event when none are listed. Acquiring an existing
// id returns its channel unchanged.
func (evt *Events) Acquire(id string, sources ...string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.m[id]; exists {
		return sub.ch
	}

	// Send drops events for a subscriber that is not ready, so the buffer
	// covers a slow websocket write.
	const messageBuffer = 100

	sub := subscriber{
		ch:      make(chan string, messageBuffer),
		sources: sources,
	}
	evt.m[id] = &sub

	return sub.ch
}

// Release closes and removes the subscriber and returns the number of
// events it missed.
func (evt *Events) Release(id string) (int, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return 0, fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)

	return sub.dropped, nil
}

// Send delivers the event to every interested subscriber without blocking.
// Events a subscriber has no room for are counted as dropped.
func (evt *Events) Send(event string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for _, sub := range evt.m {
		if !sub.wants(event) {
			continue
		}

		select {
		case sub.ch <- event:
		default:
			sub.dropped++
		}
	}
}

// Len returns the number of subscribers.
func (evt *Events) Len() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}
