// cmd/scopesim/main.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// scopesim is a terminal radar scope for the simulation core: it drives the
// tick loop in wallclock time, renders the flight table and event feed, and
// turns typed scope entries into clearances.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/log"
	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/rand"
	"github.com/scopesim/scopesim/sim"
)

var difficultyFlag = flag.String("difficulty", "beginner", "difficulty level (beginner, intermediate, advanced, expert, or a -presets entry)")
var scenarioFlag = flag.String("scenario", "", "scenario file (JSON); the built-in scenario when empty")
var presetsFlag = flag.String("presets", "", "difficulty preset catalog (JSON); the built-in catalog when empty")
var seedFlag = flag.Int64("seed", 1, "random seed for traffic generation")
var vfrFlag = flag.Int("vfr", 0, "VFR aircraft in the pattern, in addition to the preset's IFR arrivals")
var rateFlag = flag.Float64("rate", 1, "simulation rate: simulated seconds per wallclock second")
var recordFlag = flag.String("record", "", "write a session recording to this file on exit")
var logLevelFlag = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
var logDirFlag = flag.String("logdir", "", "directory for logs (default: user config dir)")

const (
	// drawInterval is the UI tick; Sim.Step carries the fractional-second
	// remainder, so it need not divide one second evenly.
	drawInterval = 250 * time.Millisecond

	// checkpointSeconds is how much simulated time passes between session
	// recording checkpoints.
	checkpointSeconds = 10

	// feedKeep bounds the retained event feed; the screen shows fewer.
	feedKeep = 50
)

// AppState holds the runtime state of the application: the simulation, its
// event subscription, and everything the scope renders.
type AppState struct {
	sim      *sim.Sim
	events   *sim.EventsSubscription
	recorder *sim.Recorder
	rate     float64

	selected   av.Callsign
	input      string // scope entry being typed
	status     string // readback or error from the last entry
	statusErr  bool
	showDetail bool
	feed       []string

	lastTick       time.Time
	lastCheckpoint int // sim step of the last recording checkpoint
	result         *sim.Result
}

// Action represents the result of handling an event.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
)

func main() {
	flag.Parse()

	lg := log.New(*logLevelFlag, *logDirFlag)
	defer lg.CatchCrash()

	state, err := newAppState(lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scopesim: %v\n", err)
		os.Exit(1)
	}
	defer state.sim.Destroy()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	// The screen's event pump and the scope loop run as a pair; closing
	// quit unblocks the pump so Wait can return. The sim itself is
	// single-threaded and lives entirely on the scope loop's goroutine.
	tcellEvents := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	var eg errgroup.Group
	eg.Go(func() error {
		screen.ChannelEvents(tcellEvents, quit)
		return nil
	})
	eg.Go(func() error {
		defer close(quit)
		return state.run(screen, tcellEvents)
	})
	err = eg.Wait()
	screen.Fini()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scopesim: %v\n", err)
		os.Exit(1)
	}

	// The after-action report goes to stdout once the terminal is back.
	fmt.Print(state.report())

	if *recordFlag != "" && state.recorder != nil {
		sess := state.recorder.Finish(state.sim.SimTime, state.sim.Scoring.Session.Total)
		b, err := sim.EncodeSession(sess)
		if err == nil {
			err = os.WriteFile(*recordFlag, b, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *recordFlag, err)
			os.Exit(1)
		}
		fmt.Println(sess.Summary())
	}
}

// newAppState loads the scenario and preset catalog, stands up the sim, and
// spawns the initial traffic.
func newAppState(lg *log.Logger) (*AppState, error) {
	if *rateFlag <= 0 {
		return nil, fmt.Errorf("-rate %v: must be positive", *rateFlag)
	}
	difficulty := sim.Difficulty(*difficultyFlag)

	catalog := sim.BuiltinCatalog()
	if *presetsFlag != "" {
		data, err := os.ReadFile(*presetsFlag)
		if err != nil {
			return nil, err
		}
		if catalog, err = sim.LoadPresetCatalog(data); err != nil {
			return nil, fmt.Errorf("%s: %w", *presetsFlag, err)
		}
	}
	preset, err := catalog.Lookup(difficulty)
	if err != nil {
		return nil, err
	}

	sf := sim.SampleScenarioFile()
	if *scenarioFlag != "" {
		data, err := os.ReadFile(*scenarioFlag)
		if err != nil {
			return nil, err
		}
		if sf, err = sim.LoadScenarioFile(data); err != nil {
			return nil, fmt.Errorf("%s: %w", *scenarioFlag, err)
		}
	}

	config := sf.BuildConfig(difficulty, preset, *seedFlag, time.Now())
	if n := preset.AircraftCount + *vfrFlag; n > sim.DefaultMaxAircraft {
		config.MaxAircraft = n
	}

	s := sim.NewSim(config, lg)
	state := &AppState{
		sim:  s,
		rate: *rateFlag,
		// Subscribe before spawning so the check-in events make the feed.
		events: s.Events().Subscribe(),
	}
	if *recordFlag != "" {
		rec, err := sim.NewRecorder(rand.Make(*seedFlag), config.StartTime)
		if err != nil {
			s.Destroy()
			return nil, err
		}
		rec.Attach(s.Events())
		state.recorder = rec
	}

	rnd := rand.Make(*seedFlag)
	traffic := sim.ArrivalTraffic(rnd, preset.AircraftCount, sf.Airport)
	if *vfrFlag > 0 {
		if active := s.Runways.ActiveConfig(); active != nil {
			traffic = append(traffic, sim.PatternTraffic(rnd, *vfrFlag, sf.Airport, active.Runway)...)
		}
	}
	for _, ac := range traffic {
		direct := math.Distance2f(ac.Position(), sf.Airport.Position)
		if err := s.AddAircraft(ac, direct); err != nil {
			s.Destroy()
			return nil, fmt.Errorf("%v: %w", ac.Callsign, err)
		}
	}
	if css := s.Callsigns(); len(css) > 0 {
		state.selected = css[0]
	}

	if err := s.StartScenario(); err != nil {
		s.Destroy()
		return nil, err
	}
	return state, nil
}

// run is the scope loop: redraw, then advance the sim on the ticker or
// handle a key, until the operator quits.
func (state *AppState) run(screen tcell.Screen, events <-chan tcell.Event) error {
	ticker := time.NewTicker(drawInterval)
	defer ticker.Stop()
	state.lastTick = time.Now()

	for {
		render(screen, state)
		screen.Show()

		select {
		case <-ticker.C:
			state.tick()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if handleEvent(ev, state, screen) == ActionQuit {
				return nil
			}
		}
	}
}

// tick advances the simulation by the wallclock time since the last tick,
// scaled by the simulation rate, and folds the fallout into the UI.
func (state *AppState) tick() {
	now := time.Now()
	elapsed := time.Duration(float64(now.Sub(state.lastTick)) * state.rate)
	state.lastTick = now

	state.sim.Step(elapsed)
	state.drainEvents()

	if state.recorder != nil && state.sim.Steps-state.lastCheckpoint >= checkpointSeconds {
		state.recorder.AddCheckpoint(state.sim.Checkpoint())
		state.lastCheckpoint = state.sim.Steps
	}

	// The scenario fails itself when a time limit expires with required
	// work open; otherwise the host closes it out when the clock runs out.
	if sc := state.sim.Scenario; sc != nil && state.result == nil {
		switch {
		case sc.State.Terminal():
			state.result = sc.Result
		case sc.State == sim.ScenarioRunning && sc.Elapsed >= float32(sc.Duration/time.Second):
			if res, err := state.sim.CompleteScenario(); err == nil {
				state.result = &res
			}
		}
	}
}

func (state *AppState) drainEvents() {
	for _, ev := range state.events.Get() {
		state.feed = append(state.feed, feedLine(ev))
	}
	if len(state.feed) > feedKeep {
		state.feed = state.feed[len(state.feed)-feedKeep:]
	}
	if state.recorder != nil {
		state.recorder.ProcessEvents()
	}
}

// feedLine formats one sim event for the scope's feed pane.
func feedLine(ev sim.Event) string {
	t := ev.Time.Format("15:04:05")
	switch ev.Type {
	case sim.AircraftSpawnedEvent:
		return fmt.Sprintf("%s %v checked in", t, ev.Callsign)
	case sim.AircraftLandedEvent:
		return fmt.Sprintf("%s %v landed runway %s (%+.0f)", t, ev.Callsign, ev.Runway, ev.Points)
	case sim.AircraftCrashedEvent:
		return fmt.Sprintf("%s %v crashed (%+.0f)", t, ev.Callsign, ev.Points)
	case sim.ClearanceIssuedEvent:
		return fmt.Sprintf("%s %v: %s", t, ev.Callsign, ev.Message)
	case sim.RunwayChangeEvent:
		return fmt.Sprintf("%s runway change to %s: %s", t, ev.Runway, ev.Message)
	case sim.WeatherUpdateEvent:
		return fmt.Sprintf("%s wx %s", t, ev.Message)
	case sim.SeparationViolationEvent:
		return fmt.Sprintf("%s LOSS OF SEPARATION %v / %v (%v, %+.0f)",
			t, ev.Callsign, ev.OtherCallsign, ev.Severity, ev.Points)
	case sim.HandoffInitiatedEvent:
		return fmt.Sprintf("%s handoff %v: %s → %s", t, ev.Callsign, ev.FromSector, ev.ToSector)
	case sim.HandoffCompletedEvent:
		return fmt.Sprintf("%s %v now with %s", t, ev.Callsign, ev.ToSector)
	case sim.ScenarioStartedEvent:
		return fmt.Sprintf("%s scenario started: %s", t, ev.Message)
	case sim.ScenarioEndedEvent:
		return fmt.Sprintf("%s scenario over: %s", t, ev.Message)
	default:
		return t + " " + ev.Message
	}
}

// submit parses and issues the typed scope entry. An entry is normally
// "CALLSIGN VERB ARGS..."; the callsign may be omitted to address the
// selected aircraft, and a bare callsign just selects it.
func (state *AppState) submit() {
	input := strings.TrimSpace(state.input)
	state.input = ""
	if input == "" {
		return
	}

	fields := strings.Fields(input)
	cs := av.Callsign(fields[0])
	if _, err := state.sim.GetAircraft(cs); err == nil {
		fields = fields[1:]
		if len(fields) == 0 {
			state.selected = cs
			state.setStatus(fmt.Sprintf("%v selected", cs), false)
			return
		}
	} else {
		if cs = state.selected; cs == "" {
			state.setStatus("no aircraft selected", true)
			return
		}
	}

	cmd, err := parseCommand(fields)
	if err != nil {
		state.setStatus(err.Error(), true)
		return
	}
	if err := state.sim.RunCommand(cs, cmd); err != nil {
		state.setStatus(err.Error(), true)
		return
	}
	state.setStatus(fmt.Sprintf("%v: %s", cs, cmd.Readback()), false)
}

func (state *AppState) setStatus(msg string, isErr bool) {
	state.status, state.statusErr = msg, isErr
}

// parseCommand translates one scope entry into a clearance. The first field
// selects the verb:
//
//	H 270         fly heading 270 (HL/HR force the turn direction)
//	A 4000        climb or descend to 4000 ft
//	S 210         maintain 210 knots
//	D MARBL       proceed direct MARBL
//	C VALLEY      contact the VALLEY sector (handoff)
//	X [28L]       cleared approach; the active runway when omitted
//	HOLD FIX [L]  hold at FIX, left turns with the optional L
//	EXIT          exit the hold
func parseCommand(fields []string) (sim.Command, error) {
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	verb, args := fields[0], fields[1:]

	num := func() (float32, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s: expected one numeric argument", verb)
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, fmt.Errorf("%s %s: expected a number", verb, args[0])
		}
		return float32(v), nil
	}

	switch verb {
	case "H", "HL", "HR":
		deg, err := num()
		if err != nil {
			return nil, err
		}
		turn := av.TurnClosest
		if verb == "HL" {
			turn = av.TurnLeft
		} else if verb == "HR" {
			turn = av.TurnRight
		}
		return sim.HeadingCommand{Degrees: deg, Turn: turn}, nil

	case "A":
		ft, err := num()
		if err != nil {
			return nil, err
		}
		return sim.AltitudeCommand{Feet: ft}, nil

	case "S":
		kt, err := num()
		if err != nil {
			return nil, err
		}
		return sim.SpeedCommand{Knots: kt}, nil

	case "D":
		if len(args) != 1 {
			return nil, errors.New("D: expected a fix")
		}
		return sim.DirectCommand{Fix: args[0]}, nil

	case "C":
		if len(args) != 1 {
			return nil, errors.New("C: expected a sector")
		}
		return sim.ContactCommand{Sector: args[0]}, nil

	case "X":
		var rwy string
		if len(args) > 0 {
			rwy = args[0]
		}
		return sim.ApproachCommand{Runway: rwy}, nil

	case "HOLD":
		if len(args) == 0 {
			return nil, errors.New("HOLD: expected a fix")
		}
		cmd := sim.HoldCommand{Fix: args[0]}
		if len(args) > 1 && args[1] == "L" {
			cmd.Turn = av.TurnLeft
		}
		return cmd, nil

	case "EXIT":
		return sim.ExitHoldCommand{}, nil
	}
	return nil, fmt.Errorf("%s: unknown command", verb)
}

func (state *AppState) moveSelection(delta int) {
	css := state.sim.Callsigns()
	if len(css) == 0 {
		state.selected = ""
		return
	}
	idx := slices.Index(css, state.selected)
	if idx < 0 {
		idx = 0
	} else {
		idx = math.Clamp(idx+delta, 0, len(css)-1)
	}
	state.selected = css[idx]
}

// togglePause pauses both the sim tick and the scenario clock so that time
// objectives don't keep counting while frozen.
func (state *AppState) togglePause() {
	state.sim.TogglePause()
	sc := state.sim.Scenario
	if sc == nil {
		return
	}
	if state.sim.Paused() {
		_ = sc.Pause()
	} else {
		_ = sc.Resume()
	}
}

// render draws the scope.
func render(screen tcell.Screen, state *AppState) {
	screen.Clear()
	width, height := screen.Size()

	styleDefault := tcell.StyleDefault
	styleHeader := tcell.StyleDefault.Bold(true).Reverse(true)
	styleColumn := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleHelp := tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAlert := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleInput := tcell.StyleDefault.Bold(true)

	// Header: scenario, sim clock, score.
	title := " scopesim"
	if sc := state.sim.Scenario; sc != nil {
		title += "  " + sc.Name
	}
	title += fmt.Sprintf("  %s  score %.0f ",
		state.sim.SimTime.Format("15:04:05"), state.sim.Scoring.Session.Total)
	if state.sim.Paused() {
		title += " PAUSED "
	}
	drawText(screen, 0, 0, width, styleHeader, title)

	// Weather line in the flight category's scope color.
	cat := state.sim.Weather.FlightCategory()
	cc := cat.Color()
	styleWx := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(cc[0]), int32(cc[1]), int32(cc[2])))
	drawText(screen, 0, 1, width, styleWx,
		fmt.Sprintf(" %s %s  rwy %s", state.sim.Weather.METAR(), cat, state.sim.Runways.ActiveRunway))

	// Flight table. The bottom four rows belong to the banner, status,
	// input, and help lines.
	drawText(screen, 0, 2, width, styleColumn,
		fmt.Sprintf("  %-9s %-5s %-4s %-7s %3s %6s %4s %4s %6s  %s",
			"CALLSIGN", "TYPE", "RULE", "SECTOR", "HDG", "ALT", "IAS", "GS", "DIST", "STATE"))

	maxY := height - 4
	y := 3
	recs := state.sim.RecommendedHandoffs()
	for _, cs := range state.sim.Callsigns() {
		if y >= maxY {
			break
		}
		rowStyle := styleDefault
		if cs == state.selected {
			rowStyle = styleInput
			drawText(screen, 0, y, 1, rowStyle, ">")
		}
		drawText(screen, 2, y, width-2, rowStyle, flightRow(state, cs, recs))
		y++
	}
	y++

	if state.showDetail && state.selected != "" {
		if ac, err := state.sim.GetAircraft(state.selected); err == nil && y < maxY {
			drawText(screen, 0, y, width, styleColumn, " "+string(state.selected)+" DETAIL")
			y++
			for _, line := range strings.Split(ac.DebugDump(), "\n") {
				if y >= maxY {
					break
				}
				drawText(screen, 0, y, width, styleDefault, " "+line)
				y++
			}
		}
	} else {
		if sc := state.sim.Scenario; sc != nil && y < maxY {
			drawText(screen, 0, y, width, styleColumn, " OBJECTIVES")
			y++
			for _, o := range sc.Objectives {
				if y >= maxY {
					break
				}
				mark := ' '
				if o.Completed {
					mark = 'x'
				}
				line := fmt.Sprintf(" [%c] %s: %.0f/%.0f", mark, o.Description, o.Current, o.Target)
				if o.Required {
					line += " (required)"
				}
				drawText(screen, 0, y, width, styleDefault, line)
				y++
			}
			y++
		}

		// The event feed takes whatever is left.
		if rows := maxY - y; rows > 0 {
			feed := state.feed
			if len(feed) > rows {
				feed = feed[len(feed)-rows:]
			}
			for _, line := range feed {
				drawText(screen, 0, y, width, styleDim, " "+line)
				y++
			}
		}
	}

	if state.result != nil {
		drawText(screen, 0, height-4, width, styleAlert, " SCENARIO OVER: "+state.result.String()+" ")
	}

	statusStyle := styleDim
	if state.statusErr {
		statusStyle = styleAlert
	}
	drawText(screen, 0, height-3, width, statusStyle, " "+state.status)
	drawText(screen, 0, height-2, width, styleInput, " > "+state.input+"_")
	drawText(screen, 0, height-1, width, styleHelp,
		" [⏎]=Send  [↑↓]=Select  [`]=Detail  [^P]=Pause  [Esc]=Quit ")
}

// flightRow formats one aircraft for the flight table.
func flightRow(state *AppState, cs av.Callsign, recs map[av.Callsign]sim.HandoffRecommendation) string {
	ac := state.sim.Aircraft[cs]
	fs := &ac.Nav.FlightState

	sector := "-"
	if id, err := state.sim.Sectors.AssignedSector(cs); err == nil {
		sector = id
	}

	var dist float32
	if ap, err := state.sim.DB.LookupAirport(ac.Destination); err == nil {
		dist = math.Distance2f(fs.Position, ap.Position)
	}

	var flags string
	switch {
	case fs.Landed:
		flags = "LANDED"
	case ac.Nav.Hold != nil:
		flags = "HOLD " + ac.Nav.Hold.Fix.ID
	}
	if rec, ok := recs[cs]; ok && flags == "" {
		flags = "handoff → " + rec.ToSector
	}

	return fmt.Sprintf("%-9s %-5s %-4s %-7s %03d %6.0f %4.0f %4.0f %6.1f  %s",
		cs, ac.Type, ac.Rules, sector, int(fs.Heading+0.5)%360,
		fs.Altitude, fs.IAS, fs.GS, dist, flags)
}

// drawText draws a string at the given position.
func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	// Fill remaining space
	for col < maxWidth {
		screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}

// handleEvent processes a tcell event and returns the appropriate action.
func handleEvent(ev tcell.Event, state *AppState, screen tcell.Screen) Action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
		return ActionNone

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			return ActionQuit

		case tcell.KeyEnter:
			state.submit()

		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(state.input) > 0 {
				state.input = state.input[:len(state.input)-1]
			}

		case tcell.KeyUp:
			state.moveSelection(-1)

		case tcell.KeyDown:
			state.moveSelection(1)

		case tcell.KeyCtrlP:
			state.togglePause()

		case tcell.KeyRune:
			r := ev.Rune()
			if r == '`' {
				state.showDetail = !state.showDetail
				return ActionNone
			}
			// Scope entries are uppercase; save the operator the shift key.
			state.input += string(unicode.ToUpper(r))
		}
	}

	return ActionNone
}

// report is the after-action summary printed once the TUI has torn down.
func (state *AppState) report() string {
	var sb strings.Builder

	session := state.sim.Scoring.Session
	fmt.Fprintf(&sb, "score %.0f: %d landings, %d violations, safety %.0f/100\n",
		session.Total, session.Landings, session.TotalViolations(),
		session.SafetyRating(state.sim.Scoring.AircraftTracked()))

	if state.result != nil {
		fmt.Fprintf(&sb, "result: %s\n", state.result)
		for _, reason := range state.result.Reasons {
			fmt.Fprintf(&sb, "  %s\n", reason)
		}
	}
	return sb.String()
}
