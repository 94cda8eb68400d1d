package geo

import "walk-scheduler/internal/domain"

// NearestNeighborOrder orders points into a walking route: starting from
// the first point, it repeatedly appends the closest unvisited point.
// Deterministic given input order; equal distances keep the earlier
// input position.
func NearestNeighborOrder(points []domain.Location) []domain.Location {
	if len(points) < 2 {
		out := make([]domain.Location, len(points))
		copy(out, points)
		return out
	}

	visited := make([]bool, len(points))
	route := make([]domain.Location, 0, len(points))

	current := 0
	visited[0] = true
	route = append(route, points[0])

	for len(route) < len(points) {
		best := -1
		bestDist := 0.0
		for i, p := range points {
			if visited[i] {
				continue
			}
			d := Distance(points[current], p)
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		visited[best] = true
		route = append(route, points[best])
		current = best
	}

	return route
}

// TwoOptImprove refines a route by reversing sub-segments while any
// reversal strictly shortens the total distance. Total distance is
// non-increasing and bounded below by zero, and passes are additionally
// capped by the input size, so the loop always terminates.
func TwoOptImprove(route []domain.Location) []domain.Location {
	best := make([]domain.Location, len(route))
	copy(best, route)
	if len(best) < 4 {
		return best
	}

	bestDist := RouteDistance(best)
	n := len(best)

	for pass := 0; pass < n*n; pass++ {
		improved := false
		for i := 1; i < n-2; i++ {
			for k := i + 1; k < n-1; k++ {
				candidate := reverseSegment(best, i, k)
				if d := RouteDistance(candidate); d < bestDist {
					best = candidate
					bestDist = d
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}

	return best
}

// RouteDistance returns the total length in kilometers of the route's
// consecutive legs.
func RouteDistance(route []domain.Location) float64 {
	var total float64
	for i := 0; i < len(route)-1; i++ {
		total += Distance(route[i], route[i+1])
	}
	return total
}

func reverseSegment(route []domain.Location, i, k int) []domain.Location {
	out := make([]domain.Location, len(route))
	copy(out, route[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = route[j]
		pos++
	}
	copy(out[pos:], route[k+1:])
	return out
}
