package transit

import "testing"

func TestFindRoute_DirectTrip(t *testing.T) {
	e := newTestEngine(t)

	m := e.FindRoute("A", "B")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Kind != MatchDirectTrip {
		t.Fatalf("kind = %v, want MatchDirectTrip", m.Kind)
	}
	if !m.HasSchedule || m.ScheduledMinutes != 12 {
		t.Errorf("scheduled minutes = %d (has=%v), want 12: slower parallel trip must lose", m.ScheduledMinutes, m.HasSchedule)
	}
	if len(m.Routes) != 1 || m.Routes[0].DisplayName != "U1" {
		t.Errorf("unexpected routes: %+v", m.Routes)
	}
	if m.Transfers() != 0 {
		t.Errorf("transfers = %d, want 0", m.Transfers())
	}
}

func TestFindRoute_OvernightWrap(t *testing.T) {
	e := newTestEngine(t)

	m := e.FindRoute("N1", "N2")
	if m == nil || m.Kind != MatchDirectTrip {
		t.Fatalf("expected direct trip, got %+v", m)
	}
	if m.ScheduledMinutes != 15 {
		t.Errorf("overnight duration = %d, want 15", m.ScheduledMinutes)
	}
}

func TestFindRoute_WrongDirectionFallsBackToSharedRoute(t *testing.T) {
	e := newTestEngine(t)

	// B comes after A on every loaded trip, so B -> A has no direct trip but
	// the stops share route U1.
	m := e.FindRoute("B", "A")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Kind != MatchSameRoute {
		t.Errorf("kind = %v, want MatchSameRoute", m.Kind)
	}
	if m.HasSchedule {
		t.Error("heuristic match must not claim a scheduled duration")
	}
	if m.Transfers() != 0 {
		t.Errorf("transfers = %d, want 0", m.Transfers())
	}
}

func TestFindRoute_OneTransfer(t *testing.T) {
	e := newTestEngine(t)

	m := e.FindRoute("E", "F")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Kind != MatchOneTransfer {
		t.Fatalf("kind = %v, want MatchOneTransfer", m.Kind)
	}
	if m.Transfers() != 1 {
		t.Errorf("transfers = %d, want 1", m.Transfers())
	}
	if len(m.Routes) != 2 || m.Routes[0].DisplayName != "M41" || m.Routes[1].DisplayName != "194" {
		t.Errorf("unexpected legs: %+v", m.Routes)
	}
}

func TestFindRoute_TwoTransfersWhenFarApart(t *testing.T) {
	e := newTestEngine(t)

	// X and Y are ~29 km apart with no shared trip and no common route.
	m := e.FindRoute("X", "Y")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Kind != MatchTwoTransfer {
		t.Fatalf("kind = %v, want MatchTwoTransfer", m.Kind)
	}
	if m.Transfers() != 2 {
		t.Errorf("transfers = %d, want 2", m.Transfers())
	}
	if len(m.Routes) != 3 {
		t.Fatalf("legs = %d, want 3 (secondary destination route inserted)", len(m.Routes))
	}
	if m.Routes[2].DisplayName != "Tram 21" {
		t.Errorf("third leg = %q, want the secondary route at the destination", m.Routes[2].DisplayName)
	}
}

func TestFindRoute_OneSidedEvidence(t *testing.T) {
	e := newTestEngine(t)

	m := e.FindRoute("A", "Z1")
	if m == nil {
		t.Fatal("expected a match from origin-side routes")
	}
	if m.Kind != MatchSameRoute || len(m.Routes) != 1 {
		t.Errorf("got kind %v with %d routes, want single-leg MatchSameRoute", m.Kind, len(m.Routes))
	}
}

func TestFindRoute_NoEvidence(t *testing.T) {
	e := newTestEngine(t)

	if m := e.FindRoute("Z1", "Z2"); m != nil {
		t.Errorf("expected nil for unserved stops, got %+v", m)
	}
}

func TestFindRoute_UnknownStops(t *testing.T) {
	e := newTestEngine(t)

	if m := e.FindRoute("nope", "also-nope"); m != nil {
		t.Errorf("expected nil for unknown stops, got %+v", m)
	}
}
