package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

var errNoCoordinates = errors.New("location could not be geocoded")

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a location into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc forecast.Location) (Coordinates, error)
}

// GoogleGeocoder resolves locations through the Google Geocoding API and
// remembers previous answers, since cities rarely move.
type GoogleGeocoder struct {
	mu    sync.Mutex
	cache map[string]Coordinates
}

// geocoderKeyMu guards the package-level API key of the geocoder library.
var geocoderKeyMu sync.Mutex

// NewGoogleGeocoder configures the geocoder library with apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoderKeyMu.Lock()
	geocoder.ApiKey = apiKey
	geocoderKeyMu.Unlock()

	return &GoogleGeocoder{cache: make(map[string]Coordinates)}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc forecast.Location) (Coordinates, error) {
	key := loc.Query()

	g.mu.Lock()
	c, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return c, nil
	}

	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}

	res, err := geocoder.Geocoding(geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	})
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %s: %v", errNoCoordinates, key, err)
	}

	c = Coordinates{Lat: res.Latitude, Lon: res.Longitude}

	g.mu.Lock()
	g.cache[key] = c
	g.mu.Unlock()

	return c, nil
}
