// wx/weather.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"fmt"

	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/util"
)

type CloudCoverage int

const (
	CoverageClear CloudCoverage = iota
	CoverageFew
	CoverageScattered
	CoverageBroken
	CoverageOvercast
)

func (c CloudCoverage) String() string {
	return []string{"CLR", "FEW", "SCT", "BKN", "OVC"}[c]
}

// Weather enums appear in JSON in their METAR form ("coverage": "BKN",
// "precip": "RA", "intensity": "+"), not as integers.
func (c CloudCoverage) MarshalJSON() ([]byte, error) {
	if c < CoverageClear || c > CoverageOvercast {
		return nil, fmt.Errorf("%d: unknown cloud coverage", int(c))
	}
	return []byte(`"` + c.String() + `"`), nil
}

func (c *CloudCoverage) UnmarshalJSON(b []byte) error {
	for cc := CoverageClear; cc <= CoverageOvercast; cc++ {
		if string(b) == `"`+cc.String()+`"` {
			*c = cc
			return nil
		}
	}
	return fmt.Errorf("%s: unknown cloud coverage", string(b))
}

// Ceiling reports whether the coverage constitutes a ceiling for flight
// category purposes.
func (c CloudCoverage) Ceiling() bool {
	return c == CoverageBroken || c == CoverageOvercast
}

type CloudLayer struct {
	Coverage CloudCoverage `json:"coverage"`
	Base     float32       `json:"base"` // feet AGL
}

type Precipitation int

const (
	PrecipNone Precipitation = iota
	PrecipRain
	PrecipSnow
	PrecipFog
	PrecipMist
	PrecipHaze
	PrecipThunderstorm
)

func (p Precipitation) String() string {
	return []string{"", "RA", "SN", "FG", "BR", "HZ", "TS"}[p]
}

func (p Precipitation) MarshalJSON() ([]byte, error) {
	if p < PrecipNone || p > PrecipThunderstorm {
		return nil, fmt.Errorf("%d: unknown precipitation", int(p))
	}
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Precipitation) UnmarshalJSON(b []byte) error {
	for pp := PrecipNone; pp <= PrecipThunderstorm; pp++ {
		if string(b) == `"`+pp.String()+`"` {
			*p = pp
			return nil
		}
	}
	return fmt.Errorf("%s: unknown precipitation", string(b))
}

type PrecipIntensity int

const (
	IntensityModerate PrecipIntensity = iota // no METAR prefix
	IntensityLight
	IntensityHeavy
)

func (p PrecipIntensity) String() string {
	return []string{"", "-", "+"}[p]
}

func (p PrecipIntensity) MarshalJSON() ([]byte, error) {
	if p < IntensityModerate || p > IntensityHeavy {
		return nil, fmt.Errorf("%d: unknown precipitation intensity", int(p))
	}
	return []byte(`"` + p.String() + `"`), nil
}

func (p *PrecipIntensity) UnmarshalJSON(b []byte) error {
	for pi := IntensityModerate; pi <= IntensityHeavy; pi++ {
		if string(b) == `"`+pi.String()+`"` {
			*p = pi
			return nil
		}
	}
	return fmt.Errorf("%s: unknown precipitation intensity", string(b))
}

// Conditions is the full weather picture at one site: winds aloft, clouds,
// visibility, and the surface observations that round out a METAR.
type Conditions struct {
	WindLayers  WindField       `json:"wind_layers"`
	CloudLayers []CloudLayer    `json:"cloud_layers,omitempty"`
	Visibility  float32         `json:"visibility"` // statute miles
	Altimeter   float32         `json:"altimeter"`  // inches of mercury
	Temperature float32         `json:"temperature"`
	Dewpoint    float32         `json:"dewpoint"`
	Precip      Precipitation   `json:"precip,omitempty"`
	Intensity   PrecipIntensity `json:"intensity,omitempty"`
}

// WindAtAltitude returns the layer governing the given altitude: the first
// layer in order whose band contains it, otherwise the layer whose base is
// closest. An empty Conditions gives calm wind.
func (c Conditions) WindAtAltitude(alt float32) WindLayer {
	for _, l := range c.WindLayers {
		if l.ContainsAltitude(alt) {
			return l
		}
	}

	var closest *WindLayer
	var dist float32
	for i, l := range c.WindLayers {
		if d := math.Abs(l.Base - alt); closest == nil || d < dist {
			closest = &c.WindLayers[i]
			dist = d
		}
	}
	if closest == nil {
		return WindLayer{}
	}
	return *closest
}

// WindVector returns the wind's effect on an aircraft at the given altitude
// in knot components.
func (c Conditions) WindVector(alt float32) [2]float32 {
	return c.WindAtAltitude(alt).Vector()
}

// NoCeiling is returned by Ceiling when no broken or overcast layer is
// present.
const NoCeiling = float32(99999)

// Ceiling returns the base of the lowest broken or overcast cloud layer,
// or NoCeiling if the sky never reaches that coverage.
func (c Conditions) Ceiling() float32 {
	ceil := NoCeiling
	for _, l := range c.CloudLayers {
		if l.Coverage.Ceiling() && l.Base < ceil {
			ceil = l.Base
		}
	}
	return ceil
}

type FlightCategory int

const (
	CategoryVFR FlightCategory = iota
	CategoryMVFR
	CategoryIFR
	CategoryLIFR
)

func (c FlightCategory) String() string {
	return []string{"VFR", "MVFR", "IFR", "LIFR"}[c]
}

// Color returns the conventional scope color for the category: green,
// blue, red, magenta.
func (c FlightCategory) Color() [3]uint8 {
	return [...][3]uint8{{0, 255, 0}, {0, 150, 255}, {255, 0, 0}, {255, 0, 255}}[c]
}

// FlightCategory derives the ceiling/visibility category; the most
// restrictive matching rule wins.
func (c Conditions) FlightCategory() FlightCategory {
	ceil := c.Ceiling()
	switch {
	case c.Visibility < 1 || ceil < 500:
		return CategoryLIFR
	case c.Visibility < 3 || ceil < 1000:
		return CategoryIFR
	case (ceil >= 1000 && ceil <= 3000) || (c.Visibility >= 3 && c.Visibility <= 5):
		return CategoryMVFR
	default:
		return CategoryVFR
	}
}

func (c *Conditions) PostDeserialize(e *util.ErrorLogger) {
	for i := range c.WindLayers {
		c.WindLayers[i].PostDeserialize(e)
	}
	for _, l := range c.CloudLayers {
		if l.Coverage < CoverageClear || l.Coverage > CoverageOvercast {
			e.ErrorString("invalid cloud coverage %d", int(l.Coverage))
		}
		if l.Base < 0 {
			e.ErrorString("cloud base %v must be >= 0", l.Base)
		}
	}
	if c.Visibility < 0 {
		e.ErrorString("visibility %v must be >= 0", c.Visibility)
	}
	if c.Altimeter != 0 && (c.Altimeter < 26 || c.Altimeter > 34) {
		e.ErrorString("altimeter %v is implausible; expected inches of mercury", c.Altimeter)
	}
	if c.Precip < PrecipNone || c.Precip > PrecipThunderstorm {
		e.ErrorString("invalid precipitation %d", int(c.Precip))
	}
}
