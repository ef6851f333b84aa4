package api

import (
	"sync"
)

// EventType represents the type of event being broadcast.
type EventType string

const (
	// EventTypeState represents kernel state change events (PC, registers, cycles).
	EventTypeState EventType = "state"
	// EventTypeExecution represents execution milestones (breakpoint, halt, fault).
	EventTypeExecution EventType = "event"
)

// BroadcastEvent represents an event sent to WebSocket clients.
type BroadcastEvent struct {
	Type EventType              `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Subscription represents a client's subscription to events.
type Subscription struct {
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans out kernel events to every connected WebSocket client.
// There is one kernel per server, so unlike a multi-session broadcaster it
// filters only by event type, never by session.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}

				select {
				case sub.Channel <- event:
				default:
					// slow client, drop this event rather than block the fan-out
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe creates a new subscription. eventTypes filters by type; empty
// means all types.
func (b *Broadcaster) Subscribe(eventTypes []EventType) *Subscription {
	eventTypeMap := make(map[EventType]bool)
	for _, et := range eventTypes {
		eventTypeMap[et] = true
	}

	sub := &Subscription{
		EventTypes: eventTypeMap,
		Channel:    make(chan BroadcastEvent, 64),
	}

	b.register <- sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast sends an event to all matching subscriptions.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
		// broadcaster overwhelmed, drop rather than block the caller
	}
}

// BroadcastState sends a state change event.
func (b *Broadcaster) BroadcastState(data map[string]interface{}) {
	b.Broadcast(BroadcastEvent{Type: EventTypeState, Data: data})
}

// BroadcastExecutionEvent sends an execution milestone event.
func (b *Broadcaster) BroadcastExecutionEvent(eventName string, details map[string]interface{}) {
	data := make(map[string]interface{})
	data["event"] = eventName
	for k, v := range details {
		data[k] = v
	}

	b.Broadcast(BroadcastEvent{Type: EventTypeExecution, Data: data})
}

// Close shuts down the broadcaster and closes all subscriptions.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
