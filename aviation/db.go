// aviation/db.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/scopesim/scopesim/util"
)

var (
	ErrUnknownFix        = errors.New("unknown fix")
	ErrUnknownAirport    = errors.New("unknown airport")
	ErrUnknownRunway     = errors.New("unknown runway")
	ErrUnknownProcedure  = errors.New("unknown procedure")
	ErrUnknownTransition = errors.New("unknown transition")
)

// Database is the navigation registry for one scenario: fixes, airports,
// runways, and procedures, all keyed by uppercased identifier. Lookups are
// case-insensitive. Runway ids are scenario-unique, which holds for the
// single-airport scenarios we load.
type Database struct {
	Fixes      map[string]Fix
	Airports   map[string]Airport
	Runways    map[string]Runway
	Procedures map[string]Procedure

	// Procedure resolution is pure, so resolved routes are memoized.
	resolved *lru.Cache[procKey, *Route]
}

type procKey struct {
	name, transition string
}

const resolveCacheSize = 64

func NewDatabase() *Database {
	cache, _ := lru.New[procKey, *Route](resolveCacheSize)
	return &Database{
		Fixes:      make(map[string]Fix),
		Airports:   make(map[string]Airport),
		Runways:    make(map[string]Runway),
		Procedures: make(map[string]Procedure),
		resolved:   cache,
	}
}

func (db *Database) AddFix(f Fix) {
	f.ID = strings.ToUpper(f.ID)
	db.Fixes[f.ID] = f
}

func (db *Database) AddAirport(ap Airport) {
	ap.ID = strings.ToUpper(ap.ID)
	db.Airports[ap.ID] = ap

	// The airport is a fix, too, so direct-to guidance can target it.
	db.AddFix(Fix{ID: ap.ID, Type: FixAirport, Position: ap.Position})
}

func (db *Database) AddRunway(r Runway) {
	r.ID = strings.ToUpper(r.ID)
	r.AirportID = strings.ToUpper(r.AirportID)
	db.Runways[r.ID] = r
}

func (db *Database) AddProcedure(p Procedure) {
	p.Name = strings.ToUpper(p.Name)
	tr := make(map[string][]Fix, len(p.Transitions))
	for name, fixes := range p.Transitions {
		tr[strings.ToUpper(name)] = fixes
	}
	p.Transitions = tr
	db.Procedures[p.Name] = p
}

func (db *Database) LookupFix(id string) (Fix, error) {
	if f, ok := db.Fixes[strings.ToUpper(id)]; ok {
		return f, nil
	}
	return Fix{}, fmt.Errorf("%q: %w", id, ErrUnknownFix)
}

func (db *Database) LookupAirport(id string) (Airport, error) {
	if ap, ok := db.Airports[strings.ToUpper(id)]; ok {
		return ap, nil
	}
	return Airport{}, fmt.Errorf("%q: %w", id, ErrUnknownAirport)
}

func (db *Database) LookupRunway(id string) (Runway, error) {
	if r, ok := db.Runways[strings.ToUpper(id)]; ok {
		return r, nil
	}
	return Runway{}, fmt.Errorf("%q: %w", id, ErrUnknownRunway)
}

func (db *Database) LookupProcedure(name string) (Procedure, error) {
	if p, ok := db.Procedures[strings.ToUpper(name)]; ok {
		return p, nil
	}
	return Procedure{}, fmt.Errorf("%q: %w", name, ErrUnknownProcedure)
}

// ResolveProcedure splices the named transition (if any) onto the
// procedure's base route and returns the flyable result. A transition
// ending at the base route's first fix contributes that fix once.
func (db *Database) ResolveProcedure(name, transition string) (*Route, error) {
	key := procKey{strings.ToUpper(name), strings.ToUpper(transition)}
	if r, ok := db.resolved.Get(key); ok {
		return r, nil
	}

	p, ok := db.Procedures[key.name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownProcedure)
	}

	var fixes []Fix
	if key.transition != "" {
		tr, ok := p.Transitions[key.transition]
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", key.name, key.transition, ErrUnknownTransition)
		}
		fixes = append(fixes, tr...)
	}
	for _, f := range p.Fixes {
		if n := len(fixes); n > 0 && fixes[n-1].ID == f.ID {
			continue
		}
		fixes = append(fixes, f)
	}

	route := &Route{}
	for _, f := range fixes {
		route.AddFix(f, nil, nil)
	}

	db.resolved.Add(key, route)
	return route, nil
}

func (db *Database) PostDeserialize(e *util.ErrorLogger) {
	for id, r := range db.Runways {
		e.Push("runway " + id)
		if _, ok := db.Airports[r.AirportID]; !ok {
			e.ErrorString("airport %q not found", r.AirportID)
		}
		if r.Heading < 0 || r.Heading > 360 {
			e.ErrorString("heading %v must be between 0-360", r.Heading)
		}
		if r.GlideslopeAngle <= 0 || r.GlideslopeAngle >= 10 {
			e.ErrorString("glideslope angle %v is implausible", r.GlideslopeAngle)
		}
		e.Pop()
	}
	for id, ap := range db.Airports {
		e.Push("airport " + id)
		for _, rwy := range ap.RunwayIDs {
			if _, ok := db.Runways[strings.ToUpper(rwy)]; !ok {
				e.ErrorString("runway %q not found", rwy)
			}
		}
		e.Pop()
	}
	for name, p := range db.Procedures {
		e.Push("procedure " + name)
		if len(p.Fixes) == 0 {
			e.ErrorString("no fixes in base route")
		}
		if p.Runway != "" {
			if _, ok := db.Runways[strings.ToUpper(p.Runway)]; !ok {
				e.ErrorString("runway %q not found", p.Runway)
			}
		}
		e.Pop()
	}
}
