// wx/metar.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/scopesim/scopesim/math"
)

var ErrMalformedMETAR = errors.New("malformed METAR")

// METAR renders the conditions as a METAR-style observation:
// wind, visibility, present weather, sky cover, temperature/dewpoint,
// altimeter. ParseMETAR accepts exactly this encoding.
func (c Conditions) METAR() string {
	var sb strings.Builder

	wind := c.WindAtAltitude(0)
	fmt.Fprintf(&sb, "%03d%02d", int(math.Round(wind.DirectionFrom))%360, int(math.Round(wind.Speed)))
	if wind.Gust > 0 {
		fmt.Fprintf(&sb, "G%02d", int(math.Round(wind.Gust)))
	}
	sb.WriteString("KT ")

	sb.WriteString(formatVisibility(c.Visibility))
	sb.WriteString("SM")

	if c.Precip != PrecipNone {
		sb.WriteString(" " + c.Intensity.String() + c.Precip.String())
	}

	if len(c.CloudLayers) == 0 {
		sb.WriteString(" CLR")
	} else {
		for _, l := range c.CloudLayers {
			fmt.Fprintf(&sb, " %s%03d", l.Coverage, int(math.Round(l.Base/100)))
		}
	}

	sb.WriteString(" " + formatTemp(c.Temperature) + "/" + formatTemp(c.Dewpoint))

	fmt.Fprintf(&sb, " A%04d", int(math.Round(c.Altimeter*100)))

	return sb.String()
}

// formatVisibility quantizes to quarter miles and renders fractions the
// METAR way: "1/2", "3/4", "2 1/2", "10".
func formatVisibility(vis float32) string {
	quarters := int(math.Round(vis * 4))
	whole, frac := quarters/4, quarters%4
	fs := []string{"", "1/4", "1/2", "3/4"}[frac]
	switch {
	case frac == 0:
		return strconv.Itoa(whole)
	case whole == 0:
		return fs
	default:
		return strconv.Itoa(whole) + " " + fs
	}
}

func formatTemp(t float32) string {
	d := int(math.Round(t))
	if d < 0 {
		return fmt.Sprintf("M%02d", -d)
	}
	return fmt.Sprintf("%02d", d)
}

// ParseMETAR decodes an observation in the format METAR emits. The two
// round-trip: parsing a formatted observation and re-formatting it gives
// back the original string.
func ParseMETAR(s string) (Conditions, error) {
	var c Conditions
	fields := strings.Fields(s)
	i := 0

	next := func() string {
		if i < len(fields) {
			f := fields[i]
			i++
			return f
		}
		return ""
	}

	// Wind: DDDSSKT or DDDSSGggKT
	tok := next()
	if !strings.HasSuffix(tok, "KT") || len(tok) < 7 {
		return c, fmt.Errorf("%w: expected wind group, got %q", ErrMalformedMETAR, tok)
	}
	w := strings.TrimSuffix(tok, "KT")
	var layer WindLayer
	if dir, err := strconv.Atoi(w[:3]); err != nil {
		return c, fmt.Errorf("%w: wind direction in %q", ErrMalformedMETAR, tok)
	} else {
		layer.DirectionFrom = float32(dir)
	}
	spd, gust, hasGust := strings.Cut(w[3:], "G")
	if v, err := strconv.Atoi(spd); err != nil {
		return c, fmt.Errorf("%w: wind speed in %q", ErrMalformedMETAR, tok)
	} else {
		layer.Speed = float32(v)
	}
	if hasGust {
		if v, err := strconv.Atoi(gust); err != nil {
			return c, fmt.Errorf("%w: wind gust in %q", ErrMalformedMETAR, tok)
		} else {
			layer.Gust = float32(v)
		}
	}
	c.WindLayers = WindField{layer}

	// Visibility: integer, fraction, or mixed number across two fields.
	tok = next()
	if !strings.HasSuffix(tok, "SM") && i < len(fields) && strings.HasSuffix(fields[i], "SM") {
		tok += " " + next()
	}
	if !strings.HasSuffix(tok, "SM") {
		return c, fmt.Errorf("%w: expected visibility group, got %q", ErrMalformedMETAR, tok)
	}
	if vis, err := parseVisibility(strings.TrimSuffix(tok, "SM")); err != nil {
		return c, fmt.Errorf("%w: visibility %q", ErrMalformedMETAR, tok)
	} else {
		c.Visibility = vis
	}

	// Optional present weather: [-|+]CODE
	if i < len(fields) {
		wx := fields[i]
		intensity := IntensityModerate
		if strings.HasPrefix(wx, "-") {
			intensity = IntensityLight
			wx = wx[1:]
		} else if strings.HasPrefix(wx, "+") {
			intensity = IntensityHeavy
			wx = wx[1:]
		}
		for p := PrecipRain; p <= PrecipThunderstorm; p++ {
			if wx == p.String() {
				c.Precip = p
				c.Intensity = intensity
				i++
				break
			}
		}
	}

	// Sky cover: CLR or coverage groups until the temperature field.
	if i < len(fields) && fields[i] == "CLR" {
		i++
	} else {
		for i < len(fields) {
			cov, ok := parseCoverage(fields[i][:min(3, len(fields[i]))])
			if !ok {
				break
			}
			base, err := strconv.Atoi(fields[i][3:])
			if err != nil {
				return c, fmt.Errorf("%w: cloud base in %q", ErrMalformedMETAR, fields[i])
			}
			c.CloudLayers = append(c.CloudLayers, CloudLayer{Coverage: cov, Base: float32(base * 100)})
			i++
		}
	}

	// Temperature/dewpoint: TT/DD with M for negatives.
	tok = next()
	tt, dd, ok := strings.Cut(tok, "/")
	if !ok {
		return c, fmt.Errorf("%w: expected temperature group, got %q", ErrMalformedMETAR, tok)
	}
	if t, err := parseTemp(tt); err != nil {
		return c, fmt.Errorf("%w: temperature in %q", ErrMalformedMETAR, tok)
	} else {
		c.Temperature = t
	}
	if t, err := parseTemp(dd); err != nil {
		return c, fmt.Errorf("%w: dewpoint in %q", ErrMalformedMETAR, tok)
	} else {
		c.Dewpoint = t
	}

	// Altimeter: Annnn, inHg x 100.
	tok = next()
	if !strings.HasPrefix(tok, "A") || len(tok) != 5 {
		return c, fmt.Errorf("%w: expected altimeter group, got %q", ErrMalformedMETAR, tok)
	}
	if v, err := strconv.Atoi(tok[1:]); err != nil {
		return c, fmt.Errorf("%w: altimeter in %q", ErrMalformedMETAR, tok)
	} else {
		c.Altimeter = float32(v) / 100
	}

	if i != len(fields) {
		return c, fmt.Errorf("%w: unexpected trailing %q", ErrMalformedMETAR, fields[i])
	}
	return c, nil
}

func parseVisibility(s string) (float32, error) {
	var whole, num, den int
	var err error
	if w, frac, mixed := strings.Cut(s, " "); mixed {
		if whole, err = strconv.Atoi(w); err != nil {
			return 0, err
		}
		s = frac
	}
	if n, d, ok := strings.Cut(s, "/"); ok {
		if num, err = strconv.Atoi(n); err != nil {
			return 0, err
		}
		if den, err = strconv.Atoi(d); err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		return float32(whole) + float32(num)/float32(den), nil
	}
	if whole, err = strconv.Atoi(s); err != nil {
		return 0, err
	}
	return float32(whole), nil
}

func parseCoverage(s string) (CloudCoverage, bool) {
	for c := CoverageFew; c <= CoverageOvercast; c++ {
		if s == c.String() {
			return c, true
		}
	}
	return CoverageClear, false
}

func parseTemp(s string) (float32, error) {
	neg := strings.HasPrefix(s, "M")
	v, err := strconv.Atoi(strings.TrimPrefix(s, "M"))
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return float32(v), nil
}
