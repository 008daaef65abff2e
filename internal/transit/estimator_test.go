package transit

import (
	"math"
	"testing"
)

func TestEstimateCommute_DirectTrip(t *testing.T) {
	e := newTestEngine(t)

	// near stop A -> near stop B
	res := e.EstimateCommute(52.4995, 13.4000, 52.5050, 13.4110)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Origin.Stop.ID != "A" || res.Destination.Stop.ID != "B" {
		t.Fatalf("stops = %s -> %s, want A -> B", res.Origin.Stop.ID, res.Destination.Stop.ID)
	}
	if res.TransitMinutes == nil || *res.TransitMinutes != 12 {
		t.Errorf("transit minutes = %v, want scheduled 12", res.TransitMinutes)
	}
	if res.Transfers == nil || *res.Transfers != 0 {
		t.Errorf("transfers = %v, want 0", res.Transfers)
	}
	if len(res.Modes) != 1 || res.Modes[0] != "subway" {
		t.Errorf("modes = %v, want [subway]", res.Modes)
	}
	if len(res.Legs) != 1 || res.Legs[0].From != "Stop A" || res.Legs[0].To != "Stop B" {
		t.Errorf("legs = %+v", res.Legs)
	}
	assertTotalInvariant(t, res)
}

func TestEstimateCommute_TotalInvariantWithTransfers(t *testing.T) {
	e := newTestEngine(t)

	// near X -> near Y: heuristic two-transfer journey
	res := e.EstimateCommute(52.5300, 13.3010, 52.4200, 13.6990)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Transfers == nil || *res.Transfers != 2 {
		t.Fatalf("transfers = %v, want 2", res.Transfers)
	}
	// distance-based estimate plus two transfer penalties
	if *res.TransitMinutes <= 2*e.cfg.TransferPenaltyMin {
		t.Errorf("transit minutes = %v, want distance estimate plus penalties", *res.TransitMinutes)
	}
	assertTotalInvariant(t, res)
}

func TestEstimateCommute_AsymmetricButConsistent(t *testing.T) {
	e := newTestEngine(t)

	fwd := e.EstimateCommute(52.4995, 13.4000, 52.5050, 13.4110)
	rev := e.EstimateCommute(52.5050, 13.4110, 52.4995, 13.4000)
	// values may differ (B -> A has no scheduled trip), but both must hold
	// the sum invariant
	assertTotalInvariant(t, fwd)
	assertTotalInvariant(t, rev)
}

func TestEstimateCommute_NoStopsAtAll(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.StopRadiusMeters = 200

	res := e.EstimateCommute(52.6900, 13.0100, 52.6800, 13.0200)
	if res.Err == "" {
		t.Fatal("expected error indicator")
	}
	if res.TransitMinutes != nil || res.TotalMinutes != nil || res.Transfers != nil {
		t.Errorf("transit fields should be absent: %+v", res)
	}
}

func TestEstimateCommute_OneEndpointWalkingOnly(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.StopRadiusMeters = 500

	// origin near A, destination in a stop desert
	res := e.EstimateCommute(52.4995, 13.4000, 52.6900, 13.0100)
	if res.Err == "" {
		t.Fatal("expected error indicator")
	}
	if res.Origin == nil || res.Destination != nil {
		t.Fatalf("expected origin-only result, got %+v", res)
	}
	if res.TransitMinutes != nil {
		t.Error("no transit component expected")
	}
	if res.TotalMinutes == nil {
		t.Fatal("expected walking-only total")
	}
	if math.Abs(*res.TotalMinutes-res.WalkToStopMinutes) > 1e-9 {
		t.Errorf("walking-only total = %v, want %v", *res.TotalMinutes, res.WalkToStopMinutes)
	}
}

func TestEstimateCommute_ZeroDistanceStop(t *testing.T) {
	e := newTestEngine(t)

	res := e.EstimateCommute(52.5000, 13.4000, 52.5050, 13.4100)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.WalkToStopMinutes != 0 {
		t.Errorf("walking leg at a stop = %v minutes, want 0", res.WalkToStopMinutes)
	}
	if res.WalkFromStopMinutes != 0 {
		t.Errorf("walking leg from destination stop = %v minutes, want 0", res.WalkFromStopMinutes)
	}
	assertTotalInvariant(t, res)
}

func assertTotalInvariant(t *testing.T, res CommuteResult) {
	t.Helper()
	if res.TransitMinutes == nil || res.TotalMinutes == nil {
		t.Fatal("expected a complete transit estimate")
	}
	sum := res.WalkToStopMinutes + *res.TransitMinutes + res.WalkFromStopMinutes
	if math.Abs(*res.TotalMinutes-sum) > 1e-9 {
		t.Errorf("total = %v, want walk_to + transit + walk_from = %v", *res.TotalMinutes, sum)
	}
	if *res.TotalMinutes < 0 || res.WalkToStopMinutes < 0 || res.WalkFromStopMinutes < 0 || *res.TransitMinutes < 0 {
		t.Error("no component may be negative")
	}
}
