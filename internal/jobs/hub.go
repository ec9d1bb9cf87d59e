// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import "sync"

// Listener receives the events of one job. It must not block.
type Listener func(Event)

// Hub fans job events out to registered listeners.
type Hub struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[string]map[uint64]Listener
}

// NewHub constructs an empty [Hub].
func NewHub() *Hub {
	return &Hub{listeners: map[string]map[uint64]Listener{}}
}

/*
Register subscribes fn to the events of jobID.

Returns:
  - func(): Removes this listener only. Safe to call more than once.
*/
func (hub *Hub) Register(jobID string, fn Listener) func() {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.next++
	id := hub.next

	if hub.listeners[jobID] == nil {
		hub.listeners[jobID] = map[uint64]Listener{}
	}
	hub.listeners[jobID][id] = fn

	return func() {
		hub.mu.Lock()
		defer hub.mu.Unlock()

		delete(hub.listeners[jobID], id)
		if len(hub.listeners[jobID]) == 0 {
			delete(hub.listeners, jobID)
		}
	}
}

// Unregister drops every listener of jobID.
func (hub *Hub) Unregister(jobID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	delete(hub.listeners, jobID)
}

// Publish delivers event to the listeners of event.Job.ID.
// Listeners run outside the lock and may unregister themselves.
func (hub *Hub) Publish(event Event) {
	hub.mu.RLock()
	targets := make([]Listener, 0, len(hub.listeners[event.Job.ID]))
	for _, fn := range hub.listeners[event.Job.ID] {
		targets = append(targets, fn)
	}
	hub.mu.RUnlock()

	for _, fn := range targets {
		fn(event)
	}
}

// Listeners returns the number of listeners registered for jobID.
func (hub *Hub) Listeners(jobID string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.listeners[jobID])
}
