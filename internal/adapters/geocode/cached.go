package geocode

import (
	"context"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/ports"
)

// CachedGeocoder wraps a Geocoder with a GeocodeCache. Cache faults are
// logged and absorbed; the upstream geocoder remains the source of truth.
type CachedGeocoder struct {
	Inner ports.Geocoder
	Cache ports.GeocodeCache
	Log   *logger.Logger
}

var _ ports.Geocoder = (*CachedGeocoder)(nil)

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Location, error) {
	loc, ok, err := c.Cache.Get(ctx, address)
	if err != nil {
		c.Log.WithError(err).WithField("address", address).Warn("Geocode cache read failed")
	} else if ok {
		return loc, nil
	}

	loc, err = c.Inner.Geocode(ctx, address)
	if err != nil {
		return domain.Location{}, err
	}

	if err := c.Cache.Put(ctx, address, loc); err != nil {
		c.Log.WithError(err).WithField("address", address).Warn("Geocode cache write failed")
	}

	return loc, nil
}
