package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a telemetry event emitted during a generation run.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// RunID is the associated generation run ID, if applicable.
	RunID string `json:"run_id,omitempty"`

	// Path is the variant path the event relates to, if applicable.
	Path []string `json:"path,omitempty"`

	// Artifact is the artifact file path the event relates to, if applicable.
	Artifact string `json:"artifact,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventType constants for common event types.
const (
	EventTypeRunStarted      = "run.started"
	EventTypeRunCompleted    = "run.completed"
	EventTypeRunFailed       = "run.failed"
	EventTypeRunEmpty        = "run.empty"
	EventTypeLeafVisited     = "leaf.visited"
	EventTypeArtifactWritten = "artifact.written"
	EventTypeProviderInvoked = "provider.invoked"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventPublisher manages event publishing and subscriptions. Dispatch is
// synchronous: generation is single-threaded and events are low volume.
type EventPublisher struct {
	config      EventsConfig
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) *EventPublisher {
	return &EventPublisher{config: cfg}
}

// Subscribe registers a subscriber for all events.
func (ep *EventPublisher) Subscribe(sub EventSubscriber) {
	if ep == nil {
		return
	}
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.subscribers = append(ep.subscribers, sub)
}

// Publish assigns the event an ID and timestamp if missing and delivers it
// to all subscribers. A nil publisher or disabled configuration drops the
// event.
func (ep *EventPublisher) Publish(event Event) {
	if ep == nil || !ep.config.Enabled {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	ep.mu.RLock()
	subs := make([]EventSubscriber, len(ep.subscribers))
	copy(subs, ep.subscribers)
	ep.mu.RUnlock()

	for _, sub := range subs {
		sub(event)
	}
}
