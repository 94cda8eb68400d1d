package ports

import (
	"context"

	"walk-scheduler/internal/domain"
)

// Port: contract for resolving a pickup address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Location, error)
}

// Port: an explicit, injectable cache of geocoding results with a TTL
// owned by the adapter's configuration. A miss is (zero, false, nil),
// not an error.
type GeocodeCache interface {
	Get(ctx context.Context, address string) (domain.Location, bool, error)
	Put(ctx context.Context, address string, loc domain.Location) error
}
