package providers

import (
	"context"

	"github.com/kelvins/geocoder"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

// GoogleResolver resolves city names to coordinates through the Google
// Geocoding API. It is wired in preference to the OpenWeatherMap resolver
// when a Google API key is configured.
type GoogleResolver struct{}

// NewGoogleResolver configures the geocoder package with the given key.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	geocoder.ApiKey = apiKey
	return &GoogleResolver{}
}

func (r *GoogleResolver) Resolve(ctx context.Context, city string) (aqi.Target, error) {
	if ctx.Err() != nil {
		return aqi.Target{}, ctx.Err()
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: city})
	if err != nil {
		return aqi.Target{}, aqi.ErrTargetNotFound
	}

	lat, lon := loc.Latitude, loc.Longitude
	return aqi.Target{City: city, Lat: &lat, Lon: &lon}, nil
}
