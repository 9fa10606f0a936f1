// sim/eventstream.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/log"
)

// EventStream provides a basic pub/sub event interface that allows any part
// of the system to post an event to the stream and other parts to subscribe
// and receive messages from the stream. It is the backbone for
// communicating simulation activity to the scope, the session recorder, and
// the logs. The stream is single-threaded; the sim and its host call Post
// and Get from one goroutine.
type EventStream struct {
	mu            sync.Mutex
	events        []Event
	subscriptions map[*EventsSubscription]interface{}
	warnedLong    bool
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is offset in the EventStream stream array up to which the
	// subscriber has consumed events so far.
	offset      int
	source      string
	warnedNoGet bool
}

func (e *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", e.offset),
		slog.String("source", e.source))
}

func (e *EventsSubscription) PostEvent(event Event) {
	e.stream.Post(event)
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]interface{}),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream and returns an
// EventsSubscription that can then be used to consume events from it.
func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", fn, line)

	sub := &EventsSubscription{
		stream: e,
		offset: len(e.events),
		source: source,
	}

	e.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list
func (e *EventsSubscription) Unsubscribe() {
	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", e)
	}
	delete(e.stream.subscriptions, e)
	e.stream = nil
}

// Post adds an event to the event stream.
func (e *EventStream) Post(event Event) {
	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) == 0 {
		return
	}
	e.events = append(e.events, event)

	if len(e.events) > 1000 && !e.warnedLong {
		// It's likely that one of the subscribers is out to lunch if the
		// stream has grown this long.
		e.lg.Warn("Long EventStream", slog.Int("length", len(e.events)),
			slog.Int("subscribers", len(e.subscriptions)))
		e.warnedLong = true
	}
	for sub := range e.subscriptions {
		if len(e.events)-sub.offset > 1000 && !sub.warnedNoGet {
			e.lg.Warn("Subscriber is not consuming events",
				slog.Int("behind", len(e.events)-sub.offset),
				slog.Any("subscriber", sub))
			sub.warnedNoGet = true
		}
	}

	e.compact()
}

// Get returns all of the events from the stream since the last time Get was
// called for this subscription. Note that events posted before Subscribe
// was called are never reported.
func (e *EventsSubscription) Get() []Event {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", e)
		return nil
	}

	events := make([]Event, len(e.stream.events)-e.offset)
	copy(events, e.stream.events[e.offset:])
	e.offset = len(e.stream.events)
	e.warnedNoGet = false

	return events
}

func (e *EventStream) Destroy() {
	clear(e.subscriptions)
	e.events = nil
}

// compact reclaims storage for events that all subscribers have seen; it
// runs on every Post so that EventStream memory usage doesn't grow without
// bound.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		if sub.offset < minOffset {
			minOffset = sub.offset
		}
	}

	if minOffset > cap(e.events)/2 {
		n := len(e.events) - minOffset

		copy(e.events, e.events[minOffset:])
		e.events = e.events[:n]

		for sub := range e.subscriptions {
			sub.offset -= minOffset
		}

		e.warnedLong = false // reset this after a successful compact.
	}
}

// implements slog.LogValuer
func (e *EventStream) LogValue() slog.Value {
	items := []slog.Attr{slog.Int("len", len(e.events)), slog.Int("cap", cap(e.events)),
		slog.Int("subscribers", len(e.subscriptions))}
	if len(e.events) > 0 {
		items = append(items, slog.Any("last_element", e.events[len(e.events)-1]))
	}
	return slog.GroupValue(items...)
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	AircraftSpawnedEvent EventType = iota
	AircraftLandedEvent
	AircraftCrashedEvent
	ClearanceIssuedEvent
	RunwayChangeEvent
	WeatherUpdateEvent
	SeparationViolationEvent
	HandoffInitiatedEvent
	HandoffCompletedEvent
	ScenarioStartedEvent
	ScenarioEndedEvent
	StatusMessageEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"AircraftSpawned", "AircraftLanded", "AircraftCrashed",
		"ClearanceIssued", "RunwayChange", "WeatherUpdate", "SeparationViolation",
		"HandoffInitiated", "HandoffCompleted", "ScenarioStarted", "ScenarioEnded",
		"StatusMessage"}[t]
}

type Event struct {
	Type          EventType
	Callsign      av.Callsign
	OtherCallsign av.Callsign // the second aircraft of a separation violation
	FromSector    string
	ToSector      string
	Runway        string
	Message       string
	Points        float32
	Severity      Severity
	Time          time.Time // sim time, not wallclock
}

func (e *Event) String() string {
	switch e.Type {
	case SeparationViolationEvent:
		return fmt.Sprintf("%s: %s and %s (%s, %+.0f points)",
			e.Type, e.Callsign, e.OtherCallsign, e.Severity, e.Points)
	case HandoffInitiatedEvent, HandoffCompletedEvent:
		return fmt.Sprintf("%s: %s %s -> %s", e.Type, e.Callsign, e.FromSector, e.ToSector)
	default:
		return fmt.Sprintf("%s: callsign %q runway %q message %q",
			e.Type, e.Callsign, e.Runway, e.Message)
	}
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String()),
		slog.Time("time", e.Time)}
	if e.Callsign != "" {
		attrs = append(attrs, slog.String("callsign", string(e.Callsign)))
	}
	if e.OtherCallsign != "" {
		attrs = append(attrs, slog.String("other_callsign", string(e.OtherCallsign)))
	}
	if e.FromSector != "" {
		attrs = append(attrs, slog.String("from_sector", e.FromSector))
	}
	if e.ToSector != "" {
		attrs = append(attrs, slog.String("to_sector", e.ToSector))
	}
	if e.Runway != "" {
		attrs = append(attrs, slog.String("runway", e.Runway))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}
	if e.Points != 0 {
		attrs = append(attrs, slog.Float64("points", float64(e.Points)))
	}
	return slog.GroupValue(attrs...)
}
