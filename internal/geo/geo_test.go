package geo

import (
	"errors"
	"math"
	"testing"

	"walk-scheduler/internal/domain"
)

var (
	berlinMitte    = domain.Location{Lat: 52.520, Lng: 13.400}
	berlinPankow   = domain.Location{Lat: 52.569, Lng: 13.402}
	hamburg        = domain.Location{Lat: 53.551, Lng: 9.994}
	sydney         = domain.Location{Lat: -33.868, Lng: 151.209}
	nearAntimerid1 = domain.Location{Lat: 10.0, Lng: 179.9}
	nearAntimerid2 = domain.Location{Lat: 10.0, Lng: -179.9}
)

func TestDistanceIdentity(t *testing.T) {
	for _, p := range []domain.Location{berlinMitte, sydney, {Lat: 90, Lng: 0}} {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	d1 := Distance(berlinMitte, sydney)
	d2 := Distance(sydney, berlinMitte)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// Berlin -> Hamburg is roughly 255 km as the crow flies.
	d := Distance(berlinMitte, hamburg)
	if d < 240 || d > 270 {
		t.Errorf("Berlin-Hamburg distance = %.1f km, want ~255", d)
	}

	// Two points straddling the antimeridian are ~22 km apart, not half
	// the planet.
	d = Distance(nearAntimerid1, nearAntimerid2)
	if d > 25 {
		t.Errorf("antimeridian distance = %.1f km, want < 25", d)
	}
}

func TestBearingRange(t *testing.T) {
	cases := []struct {
		from, to domain.Location
		want     float64
	}{
		{domain.Location{Lat: 0, Lng: 0}, domain.Location{Lat: 1, Lng: 0}, 0},
		{domain.Location{Lat: 0, Lng: 0}, domain.Location{Lat: 0, Lng: 1}, 90},
		{domain.Location{Lat: 1, Lng: 0}, domain.Location{Lat: 0, Lng: 0}, 180},
		{domain.Location{Lat: 0, Lng: 1}, domain.Location{Lat: 0, Lng: 0}, 270},
	}

	for _, c := range cases {
		got := Bearing(c.from, c.to)
		if got < 0 || got >= 360 {
			t.Errorf("Bearing(%v, %v) = %v, outside [0,360)", c.from, c.to, got)
		}
		if math.Abs(got-c.want) > 0.01 {
			t.Errorf("Bearing(%v, %v) = %.2f, want %.2f", c.from, c.to, got, c.want)
		}
	}
}

func TestCentroidEmpty(t *testing.T) {
	_, err := Centroid(nil)
	if !errors.Is(err, ErrNoPoints) {
		t.Fatalf("expected ErrNoPoints, got %v", err)
	}
}

func TestCentroidSinglePoint(t *testing.T) {
	got, err := Centroid([]domain.Location{sydney})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sydney {
		t.Errorf("Centroid([p]) = %v, want %v", got, sydney)
	}
}

func TestCentroidAntimeridian(t *testing.T) {
	// Naive lat/lng averaging would land near lng 0; the vector mean must
	// stay on the antimeridian.
	got, err := Centroid([]domain.Location{nearAntimerid1, nearAntimerid2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(math.Abs(got.Lng)-180) > 0.1 {
		t.Errorf("centroid lng = %v, want ~±180", got.Lng)
	}
	if math.Abs(got.Lat-10.0) > 0.1 {
		t.Errorf("centroid lat = %v, want ~10", got.Lat)
	}
}

func TestCoveringRadiusPair(t *testing.T) {
	a := domain.Location{Lat: 52.520, Lng: 13.400}
	b := domain.Location{Lat: 52.530, Lng: 13.410}

	center, err := Centroid([]domain.Location{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := Distance(a, b)
	r := CoveringRadius(center, []domain.Location{a, b})
	if math.Abs(r-d/2) > 0.01 {
		t.Errorf("covering radius = %v, want ~%v", r, d/2)
	}
}

func TestCoveringRadiusEmpty(t *testing.T) {
	if r := CoveringRadius(berlinMitte, nil); r != 0 {
		t.Errorf("covering radius of empty set = %v, want 0", r)
	}
}

func TestNearestNeighborOrder(t *testing.T) {
	// Points on a line, shuffled: the greedy walk from the first point
	// must visit them in sweep order.
	p0 := domain.Location{Lat: 52.50, Lng: 13.40}
	p1 := domain.Location{Lat: 52.51, Lng: 13.40}
	p2 := domain.Location{Lat: 52.52, Lng: 13.40}
	p3 := domain.Location{Lat: 52.53, Lng: 13.40}

	got := NearestNeighborOrder([]domain.Location{p0, p2, p1, p3})
	want := []domain.Location{p0, p1, p2, p3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stop %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNearestNeighborOrderSmallInputs(t *testing.T) {
	if got := NearestNeighborOrder(nil); len(got) != 0 {
		t.Errorf("nil input: got %v", got)
	}
	got := NearestNeighborOrder([]domain.Location{sydney})
	if len(got) != 1 || got[0] != sydney {
		t.Errorf("single input: got %v", got)
	}
}

func TestTwoOptImprovesCrossedRoute(t *testing.T) {
	// A route visiting corners of a rectangle in crossing order; 2-opt
	// must untangle it.
	a := domain.Location{Lat: 52.50, Lng: 13.40}
	b := domain.Location{Lat: 52.50, Lng: 13.50}
	c := domain.Location{Lat: 52.55, Lng: 13.40}
	d := domain.Location{Lat: 52.55, Lng: 13.50}

	crossed := []domain.Location{a, d, b, c}
	improved := TwoOptImprove(crossed)

	if RouteDistance(improved) >= RouteDistance(crossed) {
		t.Errorf("2-opt did not shorten route: %.3f >= %.3f",
			RouteDistance(improved), RouteDistance(crossed))
	}
	if len(improved) != len(crossed) {
		t.Fatalf("2-opt changed route length: %d", len(improved))
	}
}

func TestTwoOptKeepsOptimalRoute(t *testing.T) {
	route := []domain.Location{
		{Lat: 52.50, Lng: 13.40},
		{Lat: 52.51, Lng: 13.40},
		{Lat: 52.52, Lng: 13.40},
		{Lat: 52.53, Lng: 13.40},
	}
	improved := TwoOptImprove(route)
	for i := range route {
		if improved[i] != route[i] {
			t.Fatalf("already-optimal route changed at stop %d", i)
		}
	}
}
