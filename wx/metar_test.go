// wx/metar_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"errors"
	"testing"
)

func TestMETARFormat(t *testing.T) {
	cases := []struct {
		c    Conditions
		want string
	}{
		{
			Conditions{
				WindLayers:  []WindLayer{{DirectionFrom: 280, Speed: 12, Gust: 18, Top: 2000}},
				CloudLayers: []CloudLayer{{CoverageBroken, 800}, {CoverageOvercast, 1500}},
				Visibility:  2,
				Altimeter:   29.92,
				Temperature: 15,
				Dewpoint:    12,
				Precip:      PrecipRain,
				Intensity:   IntensityLight,
			},
			"28012G18KT 2SM -RA BKN008 OVC015 15/12 A2992",
		},
		{
			Conditions{
				WindLayers:  []WindLayer{{DirectionFrom: 90, Speed: 5, Top: 2000}},
				Visibility:  10,
				Altimeter:   30.11,
				Temperature: 22,
				Dewpoint:    9,
			},
			"09005KT 10SM CLR 22/09 A3011",
		},
		{
			Conditions{
				WindLayers:  []WindLayer{{DirectionFrom: 360, Speed: 25, Gust: 40, Top: 2000}},
				CloudLayers: []CloudLayer{{CoverageOvercast, 300}},
				Visibility:  0.5,
				Altimeter:   29.45,
				Temperature: -3,
				Dewpoint:    -5,
				Precip:      PrecipSnow,
				Intensity:   IntensityHeavy,
			},
			"00025G40KT 1/2SM +SN OVC003 M03/M05 A2945",
		},
		{
			Conditions{
				WindLayers:  []WindLayer{{DirectionFrom: 140, Speed: 8, Top: 2000}},
				CloudLayers: []CloudLayer{{CoverageScattered, 2500}},
				Visibility:  2.5,
				Altimeter:   30.01,
				Temperature: 18,
				Dewpoint:    17,
				Precip:      PrecipMist,
			},
			"14008KT 2 1/2SM BR SCT025 18/17 A3001",
		},
	}
	for _, c := range cases {
		if got := c.c.METAR(); got != c.want {
			t.Errorf("METAR() = %q, want %q", got, c.want)
		}
	}
}

func TestMETARRoundTrip(t *testing.T) {
	metars := []string{
		"28012G18KT 2SM -RA BKN008 OVC015 15/12 A2992",
		"09005KT 10SM CLR 22/09 A3011",
		"00025G40KT 1/2SM +SN OVC003 M03/M05 A2945",
		"14008KT 2 1/2SM BR SCT025 18/17 A3001",
		"27015KT 3/4SM FG FEW002 BKN004 10/10 A2988",
		"33022KT 6SM HZ SCT040 BKN250 28/14 A2975",
		"18010KT 4SM +TS BKN030 24/21 A2963",
	}
	for _, s := range metars {
		c, err := ParseMETAR(s)
		if err != nil {
			t.Errorf("ParseMETAR(%q): %v", s, err)
			continue
		}
		if got := c.METAR(); got != s {
			t.Errorf("round trip of %q gave %q", s, got)
		}
	}
}

func TestParseMETARFields(t *testing.T) {
	c, err := ParseMETAR("28012G18KT 2SM -RA BKN008 OVC015 15/12 A2992")
	if err != nil {
		t.Fatal(err)
	}
	w := c.WindAtAltitude(0)
	if w.DirectionFrom != 280 || w.Speed != 12 || w.Gust != 18 {
		t.Errorf("wind = %+v", w)
	}
	if c.Visibility != 2 {
		t.Errorf("visibility = %g", c.Visibility)
	}
	if c.Precip != PrecipRain || c.Intensity != IntensityLight {
		t.Errorf("precip %v intensity %v", c.Precip, c.Intensity)
	}
	if len(c.CloudLayers) != 2 || c.CloudLayers[0].Base != 800 || c.CloudLayers[1].Coverage != CoverageOvercast {
		t.Errorf("clouds = %+v", c.CloudLayers)
	}
	if c.Temperature != 15 || c.Dewpoint != 12 {
		t.Errorf("temp/dew = %g/%g", c.Temperature, c.Dewpoint)
	}
	if c.Altimeter != 29.92 {
		t.Errorf("altimeter = %g", c.Altimeter)
	}
	if got := c.FlightCategory(); got != CategoryIFR {
		t.Errorf("category = %v, want IFR", got)
	}
}

func TestParseMETARErrors(t *testing.T) {
	for _, bad := range []string{
		"",
		"BOGUS",
		"28012KT",                         // truncated
		"28012KT 2SM 15/12",               // missing altimeter
		"28012KT 2SM CLR 15/12 A29",       // short altimeter
		"28012KT 2SM CLR 1512 A2992",      // malformed temperature
		"28012KT 0/0SM CLR 15/12 A2992",   // zero denominator
		"28012KT 2SM CLR 15/12 A2992 XYZ", // trailing junk
	} {
		if _, err := ParseMETAR(bad); err == nil {
			t.Errorf("ParseMETAR(%q) succeeded, want error", bad)
		} else if !errors.Is(err, ErrMalformedMETAR) {
			t.Errorf("ParseMETAR(%q) error %v is not ErrMalformedMETAR", bad, err)
		}
	}
}
