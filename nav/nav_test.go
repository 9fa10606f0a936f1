// nav/nav_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"

	av "github.com/scopesim/scopesim/aviation"
	"github.com/scopesim/scopesim/math"
	"github.com/scopesim/scopesim/wx"
)

func makeTestNav(hdg, alt, ias float32) *Nav {
	return MakeNav([2]float32{0, 0}, hdg, alt, ias, DefaultPerformance())
}

func TestStepStraightAndLevel(t *testing.T) {
	// 180 kt due east covers 0.05 NM in one second.
	nav := makeTestNav(90, 5000, 180)
	nav.Step(1, nil)

	fs := &nav.FlightState
	if math.Abs(fs.Position[0]-0.05) > 1e-4 || math.Abs(fs.Position[1]) > 1e-4 {
		t.Errorf("position after 1s = %v, want (0.05, 0)", fs.Position)
	}
	if math.Abs(fs.GS-180) > 0.1 {
		t.Errorf("GS = %v, want 180", fs.GS)
	}
	if math.Abs(fs.DistanceFlown-0.05) > 1e-4 {
		t.Errorf("distance flown = %v, want 0.05", fs.DistanceFlown)
	}
}

func TestStepWindDrift(t *testing.T) {
	// A wind from 360 pushes the aircraft south while it flies east.
	wind := wx.WindField{{DirectionFrom: 360, Speed: 30, Base: 0, Top: 10000}}
	nav := makeTestNav(90, 5000, 180)

	for range 60 {
		nav.Step(1, wind)
	}
	fs := &nav.FlightState
	if fs.Position[1] > -0.45 || fs.Position[1] < -0.55 {
		t.Errorf("y after 60s = %v, want about -0.5 (30 kt southward drift)", fs.Position[1])
	}
	if math.Abs(fs.Position[0]-3) > 0.01 {
		t.Errorf("x after 60s = %v, want 3", fs.Position[0])
	}

	// Outside every layer there is no wind at all.
	nav = makeTestNav(90, 15000, 180)
	nav.Step(1, wind)
	if math.Abs(nav.FlightState.Position[1]) > 1e-4 {
		t.Errorf("drift above the wind layer: y = %v", nav.FlightState.Position[1])
	}
}

func TestDistanceFlownProperty(t *testing.T) {
	// 120 kt for 60 seconds is 2 NM.
	nav := makeTestNav(45, 5000, 120)
	for range 60 {
		nav.Step(1, nil)
	}
	if d := nav.FlightState.DistanceFlown; math.Abs(d-2) > 0.05 {
		t.Errorf("distance flown = %v, want 2 +/- 0.05", d)
	}
	if d := math.Length2f(nav.FlightState.Position); math.Abs(d-2) > 0.05 {
		t.Errorf("displacement = %v, want 2 +/- 0.05", d)
	}
}

func TestAssignedHeadingTurn(t *testing.T) {
	nav := makeTestNav(90, 5000, 180)
	nav.AssignHeading(180, av.TurnClosest)

	nav.Step(1, nil)
	if fs := &nav.FlightState; math.Abs(fs.Heading-93) > 1e-3 || math.Abs(fs.TurnRate-3) > 1e-3 {
		t.Errorf("after 1s: heading %v turn rate %v, want 93 at 3 deg/s", fs.Heading, fs.TurnRate)
	}

	for range 29 {
		nav.Step(1, nil)
		if r := math.Abs(nav.FlightState.TurnRate); r > 3+1e-3 {
			t.Fatalf("turn rate %v exceeds 3 deg/s", r)
		}
	}
	if h := nav.FlightState.Heading; math.Abs(h-180) > 1e-2 {
		t.Errorf("heading after 30s = %v, want 180", h)
	}

	// On target: no more turning.
	nav.Step(1, nil)
	if r := nav.FlightState.TurnRate; math.Abs(r) > 1e-3 {
		t.Errorf("turn rate on target = %v, want 0", r)
	}
}

func TestForcedTurnDirection(t *testing.T) {
	// "Turn left heading 100" from 90 goes 350 degrees the long way around.
	nav := makeTestNav(90, 5000, 180)
	nav.AssignHeading(100, av.TurnLeft)

	nav.Step(1, nil)
	if h := nav.FlightState.Heading; math.Abs(h-87) > 1e-3 {
		t.Errorf("heading after 1s = %v, want 87", h)
	}
	for range 125 {
		nav.Step(1, nil)
	}
	if h := nav.FlightState.Heading; math.Abs(h-100) > 1e-2 {
		t.Errorf("heading after the long way around = %v, want 100", h)
	}
}

func TestSpeedTargetSeeking(t *testing.T) {
	nav := makeTestNav(90, 5000, 180)
	nav.AssignSpeed(200)

	nav.Step(1, nil)
	if fs := &nav.FlightState; math.Abs(fs.IAS-185) > 1e-3 || math.Abs(fs.Acceleration-5) > 1e-3 {
		t.Errorf("after 1s: IAS %v accel %v, want 185 at 5 kt/s", fs.IAS, fs.Acceleration)
	}
	for range 4 {
		nav.Step(1, nil)
	}
	if fs := &nav.FlightState; math.Abs(fs.IAS-200) > 1e-2 || math.Abs(fs.Acceleration) > 1e-2 {
		t.Errorf("on speed: IAS %v accel %v, want 200 at 0", fs.IAS, fs.Acceleration)
	}

	// Assignments below the envelope floor are pulled up to it.
	nav.AssignSpeed(50)
	if *nav.Speed.Assigned != nav.Perf.MinSpeed {
		t.Errorf("assigned speed = %v, want clamped to %v", *nav.Speed.Assigned, nav.Perf.MinSpeed)
	}
}

func TestAltitudeTargetSeeking(t *testing.T) {
	nav := makeTestNav(90, 5000, 180)
	nav.AssignAltitude(6000)

	nav.Step(1, nil)
	fs := &nav.FlightState
	if math.Abs(fs.Altitude-5041.67) > 0.1 || math.Abs(fs.VerticalRate-2500) > 0.1 {
		t.Errorf("after 1s: altitude %v VS %v, want 5041.67 at 2500 fpm", fs.Altitude, fs.VerticalRate)
	}
	for range 30 {
		nav.Step(1, nil)
	}
	if math.Abs(fs.Altitude-6000) > 0.1 || math.Abs(fs.VerticalRate) > 0.1 {
		t.Errorf("level off: altitude %v VS %v, want 6000 at 0 fpm", fs.Altitude, fs.VerticalRate)
	}
}

func TestApplyClearanceClamps(t *testing.T) {
	nav := makeTestNav(90, 5000, 180)
	nav.AssignHeading(270, av.TurnClosest)
	nav.ApplyClearance(10, 50, 99999)

	if nav.Heading.Assigned != nil {
		t.Error("clearance should cancel the assigned heading")
	}
	nav.Step(1, nil)
	fs := &nav.FlightState
	if math.Abs(fs.TurnRate-3) > 1e-3 || math.Abs(fs.Acceleration-5) > 1e-3 || math.Abs(fs.VerticalRate-2500) > 1e-2 {
		t.Errorf("rates %v/%v/%v, want clamped to 3/5/2500", fs.TurnRate, fs.Acceleration, fs.VerticalRate)
	}

	nav.ApplyClearance(-10, -50, -99999)
	nav.Step(1, nil)
	if math.Abs(fs.TurnRate+3) > 1e-3 || math.Abs(fs.Acceleration+5) > 1e-3 || math.Abs(fs.VerticalRate+2500) > 1e-2 {
		t.Errorf("rates %v/%v/%v, want clamped to -3/-5/-2500", fs.TurnRate, fs.Acceleration, fs.VerticalRate)
	}
}

func TestEnvelopeInvariants(t *testing.T) {
	// However extreme the clearances, the state stays inside the envelope.
	nav := makeTestNav(350, 5000, 180)
	p := &nav.Perf

	check := func() {
		t.Helper()
		fs := &nav.FlightState
		if fs.IAS < p.MinSpeed-1e-3 || fs.IAS > p.MaxSpeed+1e-3 {
			t.Fatalf("IAS %v outside [%v,%v]", fs.IAS, p.MinSpeed, p.MaxSpeed)
		}
		if fs.Heading < 0 || fs.Heading >= 360 {
			t.Fatalf("heading %v outside [0,360)", fs.Heading)
		}
		if fs.Altitude < 0 || fs.Altitude > p.Ceiling+1e-3 {
			t.Fatalf("altitude %v outside [0,%v]", fs.Altitude, p.Ceiling)
		}
	}

	nav.ApplyClearance(100, 100, 1e6)
	last := float32(0)
	for range 600 {
		nav.Step(1, nil)
		check()
		if nav.FlightState.DistanceFlown < last {
			t.Fatal("distance flown went backwards")
		}
		last = nav.FlightState.DistanceFlown
	}
	if nav.FlightState.Altitude != p.Ceiling {
		t.Errorf("altitude = %v, want pinned at ceiling %v", nav.FlightState.Altitude, p.Ceiling)
	}

	nav.ApplyClearance(-100, -100, -1e6)
	for range 900 {
		nav.Step(1, nil)
		check()
	}
	if nav.FlightState.Altitude != 0 {
		t.Errorf("altitude = %v, want pinned at 0", nav.FlightState.Altitude)
	}
	if nav.FlightState.IAS != p.MinSpeed {
		t.Errorf("IAS = %v, want pinned at %v", nav.FlightState.IAS, p.MinSpeed)
	}
}

func TestStepWhileLanded(t *testing.T) {
	nav := makeTestNav(90, 500, 140)
	nav.FlightState.Landed = true
	before := nav.FlightState
	nav.Step(1, nil)
	if nav.FlightState != before {
		t.Error("Step moved a landed aircraft")
	}
}

func TestCheckLanding(t *testing.T) {
	airport := [2]float32{0, 0}

	landable := func() *Nav {
		nav := makeTestNav(90, 500, 140)
		nav.FlightState.Position = [2]float32{0.5, 0}
		nav.FlightState.VerticalRate = -500
		nav.FlightState.TurnRate = 1
		return nav
	}

	nav := landable()
	if !nav.CheckLanding(airport, 1) {
		t.Fatal("stable aircraft inside the radius should land")
	}
	if !nav.FlightState.Landed {
		t.Fatal("landed flag not set")
	}
	if nav.CheckLanding(airport, 1) {
		t.Error("an aircraft lands at most once")
	}

	for _, tc := range []struct {
		name  string
		setup func(*Nav)
	}{
		{"too far", func(n *Nav) { n.FlightState.Position = [2]float32{1.5, 0} }},
		{"too high", func(n *Nav) { n.FlightState.Altitude = 2500 }},
		{"descending too fast", func(n *Nav) { n.FlightState.VerticalRate = -1600 }},
		{"still turning", func(n *Nav) { n.FlightState.TurnRate = 3.5 }},
		{"too fast", func(n *Nav) { n.FlightState.IAS = 170 }},
	} {
		nav := landable()
		tc.setup(nav)
		if nav.CheckLanding(airport, 1) {
			t.Errorf("%s: landing should have been refused", tc.name)
		}
		if nav.FlightState.Landed {
			t.Errorf("%s: landed flag set on refusal", tc.name)
		}
	}

	// Radius <= 0 falls back to the envelope's capture radius.
	nav = landable()
	nav.FlightState.Position = [2]float32{0.9, 0}
	if !nav.CheckLanding(airport, 0) {
		t.Error("default capture radius not applied")
	}
}

func TestSnapshotRestore(t *testing.T) {
	nav := makeTestNav(90, 5000, 180)
	nav.AssignHeading(270, av.TurnRight)
	nav.AssignSpeed(210)

	snap := nav.TakeSnapshot()

	// The snapshot is isolated from later changes, including writes
	// through the old pointers.
	*nav.Speed.Assigned = 999
	nav.AssignHeading(90, av.TurnLeft)
	nav.AssignAltitude(8000)

	nav.RestoreSnapshot(snap)
	if h := nav.Heading.Assigned; h == nil || *h != 270 || nav.Heading.Turn != av.TurnRight {
		t.Errorf("heading after restore = %v/%v, want 270/right", nav.Heading.Assigned, nav.Heading.Turn)
	}
	if s := nav.Speed.Assigned; s == nil || *s != 210 {
		t.Errorf("speed after restore = %v, want 210", nav.Speed.Assigned)
	}
	if nav.Altitude.Assigned != nil {
		t.Error("altitude assignment should be gone after restore")
	}
}

func TestDirectFixCapture(t *testing.T) {
	nav := makeTestNav(90, 5000, 180)
	nav.FlyDirect(av.Fix{ID: "ALPHA", Position: [2]float32{2, 0}})

	for range 40 {
		nav.Step(1, nil)
	}
	if nav.Route.DirectFix != nil {
		t.Error("fix dead ahead not captured after 40s at 180 kt")
	}
	if h := nav.FlightState.Heading; math.Abs(h-90) > 0.5 {
		t.Errorf("heading wandered to %v flying a fix dead ahead", h)
	}

	// A fix abeam requires a turn first.
	nav = makeTestNav(90, 5000, 180)
	nav.FlyDirect(av.Fix{ID: "BRAVO", Position: [2]float32{0, 2}})
	for range 300 {
		nav.Step(1, nil)
	}
	if nav.Route.DirectFix != nil {
		t.Error("fix abeam not captured after 300s")
	}
}

func TestRouteFollowing(t *testing.T) {
	route := &av.Route{}
	route.AddFix(av.Fix{ID: "ALPHA", Position: [2]float32{2, 0}}, nil, nil)
	route.AddFix(av.Fix{ID: "BRAVO", Position: [2]float32{2, 4}}, nil, nil)

	nav := makeTestNav(0, 5000, 180)
	nav.FollowRoute(route)

	// Nearest fix is ALPHA, so guidance aims at the one after it.
	bravo := [2]float32{2, 4}
	before := math.Distance2f(nav.FlightState.Position, bravo)
	for range 60 {
		nav.Step(1, nil)
	}
	after := math.Distance2f(nav.FlightState.Position, bravo)
	if after >= before {
		t.Errorf("not closing on BRAVO: %v -> %v", before, after)
	}
	bearing := math.VectorHeading(nav.FlightState.Position, bravo)
	if err := math.Abs(nav.FlightState.HeadingError(bearing)); err > 5 {
		t.Errorf("heading error to BRAVO after 60s = %v, want < 5", err)
	}
}

func TestHold(t *testing.T) {
	nav := makeTestNav(90, 5000, 250)
	fix := av.Fix{ID: "HOLDS", Position: [2]float32{3, 0}}
	hold := av.Hold{Fix: "HOLDS", InboundCourse: 270, TurnDirection: av.TurnRight}

	entry := nav.EnterHold(hold, fix)
	if entry != av.HoldEntryParallel {
		t.Errorf("entry = %v, want parallel (heading 90, inbound 270)", entry)
	}
	if s := nav.Speed.Assigned; s == nil || *s != 200 {
		t.Errorf("hold speed = %v, want 200 at 5000 ft", nav.Speed.Assigned)
	}

	captured := false
	for i := range 400 {
		nav.Step(1, nil)
		if nav.Hold.Orbiting {
			captured = true
		}
		if captured {
			if d := math.Distance2f(nav.FlightState.Position, fix.Position); d > holdLeashDistance+0.1 {
				t.Fatalf("step %d: drifted %v NM from the hold fix", i, d)
			}
		}
	}
	if !captured {
		t.Fatal("never reached the hold fix")
	}

	nav.ExitHold()
	if nav.Hold != nil {
		t.Error("hold not cleared")
	}
}

func TestSummary(t *testing.T) {
	nav := makeTestNav(87, 5000, 180)
	nav.AssignHeading(270, av.TurnClosest)
	s := nav.Summary()
	if s == "" {
		t.Fatal("empty summary")
	}
	want := "hdg 087 180kt 5000ft, assigned heading 270"
	if s != want {
		t.Errorf("summary = %q, want %q", s, want)
	}

	nav.FlightState.Landed = true
	if s := nav.Summary(); s != "hdg 087 180kt 5000ft [landed]" {
		t.Errorf("landed summary = %q", s)
	}
}
