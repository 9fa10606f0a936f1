// sim/session.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"fmt"
	"time"

	"github.com/brunoga/deep"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/rand"
	"github.com/scopesim/scopesim/util"
)

// AircraftSnapshot is one aircraft's state as captured in a checkpoint:
// the physical state plus whatever targets were assigned at the time.
type AircraftSnapshot struct {
	Callsign       av.Callsign
	Position       [2]float32
	Heading        float32
	IAS            float32
	Altitude       float32
	VerticalRate   float32
	TargetHeading  *float32
	TargetSpeed    *float32
	TargetAltitude *float32
	Landed         bool
}

// Checkpoint is a periodic capture of simulation state, enough to scrub a
// replay to this moment.
type Checkpoint struct {
	Time          time.Time
	Step          int
	Aircraft      []AircraftSnapshot
	WindSpeed     float32
	WindDirection float32
	ActiveRunway  string
	Score         float32
}

// SessionMetadata summarizes a recorded session.
type SessionMetadata struct {
	ID          uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	Checkpoints int
	Aircraft    int
	Landings    int
	Crashes     int
	Violations  int
	Score       float32
	Notes       string
}

// Session is the complete recorded artifact: metadata, the full event
// log, and the checkpoint series.
type Session struct {
	Metadata    SessionMetadata
	Events      []Event
	Checkpoints []Checkpoint
}

// EventsBetween returns the events with timestamps in [from, to].
func (s *Session) EventsBetween(from, to time.Time) []Event {
	return util.FilterSlice(s.Events, func(ev Event) bool {
		return !ev.Time.Before(from) && !ev.Time.After(to)
	})
}

// CheckpointAt returns the checkpoint nearest the given time.
func (s *Session) CheckpointAt(t time.Time) (Checkpoint, bool) {
	if len(s.Checkpoints) == 0 {
		return Checkpoint{}, false
	}
	best, bestDiff := 0, time.Duration(0)
	for i, cp := range s.Checkpoints {
		diff := cp.Time.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if i == 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return s.Checkpoints[best], true
}

func (s *Session) Summary() string {
	m := &s.Metadata
	return fmt.Sprintf("session %s: %v, %d checkpoints, %d events; "+
		"aircraft %d, landings %d, crashes %d, violations %d, score %.0f",
		m.ID, m.Duration.Round(time.Second), m.Checkpoints, len(s.Events),
		m.Aircraft, m.Landings, m.Crashes, m.Violations, m.Score)
}

// Recorder accumulates a Session as a simulation runs. Attach it to the
// sim's event stream and call ProcessEvents each tick (or just Record
// events by hand); add checkpoints at whatever cadence replay should
// support.
type Recorder struct {
	Session Session

	spawned map[av.Callsign]bool
	events  *EventsSubscription
}

// NewRecorder starts a recording. The session id comes from the supplied
// random source, so a seeded source gives reproducible ids.
func NewRecorder(rnd *rand.Rand, start time.Time) (*Recorder, error) {
	id, err := uuid.NewRandomFromReader(rnd)
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	return &Recorder{
		Session: Session{Metadata: SessionMetadata{ID: id, StartTime: start}},
		spawned: make(map[av.Callsign]bool),
	}, nil
}

func (r *Recorder) Attach(es *EventStream) {
	r.events = es.Subscribe()
}

func (r *Recorder) Detach() {
	if r.events != nil {
		r.events.Unsubscribe()
		r.events = nil
	}
}

// ProcessEvents drains the attached subscription into the session log.
func (r *Recorder) ProcessEvents() {
	if r.events == nil {
		return
	}
	for _, ev := range r.events.Get() {
		r.Record(ev)
	}
}

// Record appends one event and keeps the summary counters current.
func (r *Recorder) Record(ev Event) {
	r.Session.Events = append(r.Session.Events, ev)

	m := &r.Session.Metadata
	switch ev.Type {
	case AircraftSpawnedEvent:
		r.spawned[ev.Callsign] = true
		m.Aircraft = len(r.spawned)
	case AircraftLandedEvent:
		m.Landings++
	case AircraftCrashedEvent:
		m.Crashes++
	case SeparationViolationEvent:
		m.Violations++
	}
}

// AddCheckpoint appends a checkpoint to the session.
func (r *Recorder) AddCheckpoint(cp Checkpoint) {
	r.Session.Checkpoints = append(r.Session.Checkpoints, cp)
	r.Session.Metadata.Checkpoints = len(r.Session.Checkpoints)
}

// Finish stamps the end of the recording and the final session score.
func (r *Recorder) Finish(now time.Time, score float32) *Session {
	m := &r.Session.Metadata
	m.EndTime = now
	m.Duration = now.Sub(m.StartTime)
	m.Score = score
	return &r.Session
}

// Checkpoint captures the sim's replayable state: every aircraft's
// physical state and assigned targets, the surface wind, the active
// runway, and the running score. The returned value shares nothing with
// live sim state.
func (s *Sim) Checkpoint() Checkpoint {
	w := s.surfaceWind()
	cp := Checkpoint{
		Time:          s.SimTime,
		Step:          s.Steps,
		WindSpeed:     w.Speed,
		WindDirection: w.Direction,
		ActiveRunway:  s.Runways.ActiveRunway,
		Score:         s.Scoring.Session.Total,
	}
	for _, cs := range util.SortedMapKeys(s.Aircraft) {
		ac := s.Aircraft[cs]
		fs := &ac.Nav.FlightState
		cp.Aircraft = append(cp.Aircraft, AircraftSnapshot{
			Callsign:       cs,
			Position:       fs.Position,
			Heading:        fs.Heading,
			IAS:            fs.IAS,
			Altitude:       fs.Altitude,
			VerticalRate:   fs.VerticalRate,
			TargetHeading:  ac.Nav.Heading.Assigned,
			TargetSpeed:    ac.Nav.Speed.Assigned,
			TargetAltitude: ac.Nav.Altitude.Assigned,
			Landed:         fs.Landed,
		})
	}
	return deep.MustCopy(cp)
}

// sessionFile is the wire layout: checkpoints ride as delta-encoded
// msgpack blobs so consecutive near-identical checkpoints compress down
// to runs of zeros.
type sessionFile struct {
	Metadata    SessionMetadata
	Events      []Event
	Checkpoints [][]byte
}

// EncodeSession serializes a session to its binary form: msgpack inside
// zstd, with the checkpoint series delta-encoded first.
func EncodeSession(sess *Session) ([]byte, error) {
	blobs := make([][]byte, len(sess.Checkpoints))
	for i := range sess.Checkpoints {
		b, err := msgpack.Marshal(&sess.Checkpoints[i])
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", i, err)
		}
		blobs[i] = b
	}

	file := sessionFile{
		Metadata:    sess.Metadata,
		Events:      sess.Events,
		Checkpoints: util.DeltaEncodeBytesSlice(blobs),
	}

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(file); err != nil {
		zw.Close()
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zstd writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSession reverses EncodeSession.
func DecodeSession(b []byte) (*Session, error) {
	zr, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var file sessionFile
	if err := msgpack.NewDecoder(zr).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	blobs := util.DeltaDecodeBytesSlice(file.Checkpoints)
	cps := make([]Checkpoint, len(blobs))
	for i, blob := range blobs {
		if err := msgpack.Unmarshal(blob, &cps[i]); err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", i, err)
		}
	}

	return &Session{Metadata: file.Metadata, Events: file.Events, Checkpoints: cps}, nil
}
