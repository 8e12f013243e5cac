package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// ErrUnavailable is returned when no position can be determined.
var ErrUnavailable = errors.New("could not get your position")

// Locator resolves the current position of the user.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coords, error)
}

// StaticLocator always answers with a configured home position.
type StaticLocator struct {
	Home Coords
	Set  bool
}

func (l StaticLocator) CurrentPosition(_ context.Context) (Coords, error) {
	if !l.Set || !l.Home.Valid() {
		return Coords{}, ErrUnavailable
	}
	return l.Home, nil
}

// HTTPLocator asks an IP geolocation endpoint for the position. Both
// {"latitude":..,"longitude":..} and {"lat":..,"lon":..} shaped bodies are accepted.
type HTTPLocator struct {
	URL    string
	Client *http.Client
}

var latPaths = []string{"latitude", "lat", "location.lat"}
var lngPaths = []string{"longitude", "lon", "lng", "location.lng"}

func NewHTTPLocator(url string) *HTTPLocator {
	return &HTTPLocator{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (l *HTTPLocator) CurrentPosition(ctx context.Context) (Coords, error) {
	if l.URL == "" {
		return Coords{}, ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coords{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return parsePosition(body)
}

func parsePosition(body []byte) (Coords, error) {
	if !gjson.ValidBytes(body) {
		return Coords{}, fmt.Errorf("%w: invalid JSON in response body", ErrUnavailable)
	}
	lat, ok := firstNumber(body, latPaths)
	if !ok {
		return Coords{}, fmt.Errorf("%w: latitude missing", ErrUnavailable)
	}
	lng, ok := firstNumber(body, lngPaths)
	if !ok {
		return Coords{}, fmt.Errorf("%w: longitude missing", ErrUnavailable)
	}
	c := Coords{lat, lng}
	if !c.Valid() {
		return Coords{}, ErrUnavailable
	}
	return c, nil
}

func firstNumber(body []byte, paths []string) (float64, bool) {
	for _, p := range paths {
		v := gjson.GetBytes(body, p)
		if v.Exists() && v.Type == gjson.Number {
			return v.Float(), true
		}
	}
	return 0, false
}
