// sim/sector.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"time"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

type HandoffStatus int

const (
	HandoffInitiated HandoffStatus = iota
	HandoffAccepted
	HandoffCompleted
	// HandoffRejected is reserved for controller-declined handoffs; nothing
	// transitions a handoff here today.
	HandoffRejected
)

func (s HandoffStatus) String() string {
	return []string{"initiated", "accepted", "completed", "rejected"}[s]
}

type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyUrgent
	UrgencyImmediate
)

func (u Urgency) String() string {
	return []string{"normal", "urgent", "immediate"}[u]
}

// HandoffState tracks one aircraft's transfer from its current sector to
// the next one.
type HandoffState struct {
	Callsign    av.Callsign   `json:"callsign"`
	FromSector  string        `json:"from_sector"`
	ToSector    string        `json:"to_sector"`
	Status      HandoffStatus `json:"status"`
	InitiatedAt time.Time     `json:"initiated_at"`
	CompletedAt time.Time     `json:"completed_at,omitempty"`
}

func (h HandoffState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", string(h.Callsign)),
		slog.String("from", h.FromSector),
		slog.String("to", h.ToSector),
		slog.String("status", h.Status.String()))
}

// HandoffRecommendation suggests where an aircraft should be handed off
// and how soon the controller needs to act on it.
type HandoffRecommendation struct {
	ToSector string
	Urgency  Urgency
	// Distance is from the aircraft to its assigned sector's boundary, NM.
	Distance float32
}

// Handoff recommendation thresholds, NM from the assigned sector boundary.
const (
	handoffSuggestDistance = 5
	handoffUrgentDistance  = 2
)

// SectorManager is the single owner of the sector registry, the
// aircraft-to-sector assignments, and the pending handoffs. It posts
// handoff events to the stream it was created with; a nil stream is fine
// for standalone use.
type SectorManager struct {
	sectors     map[string]*av.Sector
	assignments map[av.Callsign]string
	pending     map[av.Callsign]*HandoffState
	eventStream *EventStream
}

func NewSectorManager(es *EventStream) *SectorManager {
	return &SectorManager{
		sectors:     make(map[string]*av.Sector),
		assignments: make(map[av.Callsign]string),
		pending:     make(map[av.Callsign]*HandoffState),
		eventStream: es,
	}
}

func (sm *SectorManager) post(ev Event) {
	if sm.eventStream != nil {
		sm.eventStream.Post(ev)
	}
}

// AddSector registers a sector, replacing any previous definition with the
// same id.
func (sm *SectorManager) AddSector(s *av.Sector) {
	sm.sectors[s.ID] = s
}

func (sm *SectorManager) Sector(id string) (*av.Sector, bool) {
	s, ok := sm.sectors[id]
	return s, ok
}

// SectorIDs returns all registered sector ids, sorted.
func (sm *SectorManager) SectorIDs() []string {
	return util.SortedMapKeys(sm.sectors)
}

// AssignAircraft puts the aircraft under the given sector's control.
func (sm *SectorManager) AssignAircraft(cs av.Callsign, sectorID string) error {
	if _, ok := sm.sectors[sectorID]; !ok {
		return fmt.Errorf("%s: %w", sectorID, ErrUnknownSector)
	}
	sm.assignments[cs] = sectorID
	return nil
}

// AssignedSector returns the sector currently responsible for the aircraft.
func (sm *SectorManager) AssignedSector(cs av.Callsign) (string, error) {
	id, ok := sm.assignments[cs]
	if !ok {
		return "", fmt.Errorf("%v: %w", cs, ErrUnassignedAircraft)
	}
	return id, nil
}

// RemoveAircraft drops the aircraft's assignment and any pending handoff;
// it is called when an aircraft leaves the simulation.
func (sm *SectorManager) RemoveAircraft(cs av.Callsign) {
	delete(sm.assignments, cs)
	delete(sm.pending, cs)
}

// RecommendHandoff checks whether the aircraft is getting close to (or has
// already blown through) its assigned sector's boundary and if so suggests
// the sector to hand it to. The second return value is false when no
// handoff is called for.
func (sm *SectorManager) RecommendHandoff(cs av.Callsign, pos [2]float32, alt, heading float32) (HandoffRecommendation, bool) {
	assigned, ok := sm.assignments[cs]
	if !ok {
		return HandoffRecommendation{}, false
	}
	sector, ok := sm.sectors[assigned]
	if !ok {
		return HandoffRecommendation{}, false
	}

	d := sector.DistanceToBoundary(pos)

	if !sector.ContainsAircraft(pos, alt) {
		// The aircraft has already left its sector; whoever's airspace
		// it's in now should get it immediately.
		for _, id := range util.SortedMapKeys(sm.sectors) {
			if id == assigned {
				continue
			}
			if sm.sectors[id].ContainsAircraft(pos, alt) {
				return HandoffRecommendation{ToSector: id, Urgency: UrgencyImmediate, Distance: d}, true
			}
		}
		return HandoffRecommendation{}, false
	}

	if d > handoffSuggestDistance {
		return HandoffRecommendation{}, false
	}

	// Take the adjacent sector that lies most nearly ahead; anything more
	// than 90 degrees off the nose is behind the aircraft's track and not
	// a candidate. Ties go to the first one declared.
	best, bestOff := "", float32(0)
	for _, id := range sector.Adjacent {
		adj, ok := sm.sectors[id]
		if !ok {
			continue
		}
		off := math.Abs(math.NormalizeSignedHeading(math.VectorHeading(pos, adj.Center()) - heading))
		if off <= 90 && (best == "" || off < bestOff) {
			best, bestOff = id, off
		}
	}
	if best == "" {
		return HandoffRecommendation{}, false
	}

	urgency := UrgencyNormal
	if d < handoffUrgentDistance {
		urgency = UrgencyUrgent
	}
	return HandoffRecommendation{ToSector: best, Urgency: urgency, Distance: d}, true
}

// InitiateHandoff starts a handoff of the aircraft to the given sector.
func (sm *SectorManager) InitiateHandoff(cs av.Callsign, to string, now time.Time) (HandoffState, error) {
	from, ok := sm.assignments[cs]
	if !ok {
		return HandoffState{}, fmt.Errorf("%v: %w", cs, ErrUnassignedAircraft)
	}
	if _, ok := sm.sectors[to]; !ok {
		return HandoffState{}, fmt.Errorf("%s: %w", to, ErrUnknownSector)
	}
	if _, ok := sm.pending[cs]; ok {
		return HandoffState{}, fmt.Errorf("%v: %w", cs, ErrHandoffPending)
	}

	h := &HandoffState{
		Callsign:    cs,
		FromSector:  from,
		ToSector:    to,
		Status:      HandoffInitiated,
		InitiatedAt: now,
	}
	sm.pending[cs] = h

	sm.post(Event{Type: HandoffInitiatedEvent, Callsign: cs, FromSector: from,
		ToSector: to, Time: now})
	return *h, nil
}

// AcceptHandoff marks the pending handoff accepted; acceptance completes
// the transfer on the spot since there is no readback to wait out.
func (sm *SectorManager) AcceptHandoff(cs av.Callsign, now time.Time) (HandoffState, error) {
	h, ok := sm.pending[cs]
	if !ok {
		return HandoffState{}, fmt.Errorf("%v: %w", cs, ErrNoHandoffPending)
	}

	h.Status = HandoffAccepted
	sm.complete(h, now)
	return *h, nil
}

func (sm *SectorManager) complete(h *HandoffState, now time.Time) {
	h.Status = HandoffCompleted
	h.CompletedAt = now
	sm.assignments[h.Callsign] = h.ToSector
	delete(sm.pending, h.Callsign)

	sm.post(Event{Type: HandoffCompletedEvent, Callsign: h.Callsign,
		FromSector: h.FromSector, ToSector: h.ToSector, Time: now})
}

// PendingHandoff returns the aircraft's in-flight handoff, if any.
func (sm *SectorManager) PendingHandoff(cs av.Callsign) (HandoffState, bool) {
	h, ok := sm.pending[cs]
	if !ok {
		return HandoffState{}, false
	}
	return *h, true
}

// PendingHandoffs returns all in-flight handoffs, ordered by callsign.
func (sm *SectorManager) PendingHandoffs() []HandoffState {
	return util.MapSlice(util.SortedMapKeys(sm.pending),
		func(cs av.Callsign) HandoffState { return *sm.pending[cs] })
}
