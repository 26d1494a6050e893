package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoCoordinates    = errors.New("coordinates: value is absent")
	ErrNoComma          = errors.New("coordinates: missing comma separator")
	ErrInvalidLatitude  = errors.New("coordinates: latitude is not a number")
	ErrInvalidLongitude = errors.New("coordinates: longitude is not a number")
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// ParseCoordinates parses the backend's "<lat>,<long>" string.
//
// The value is split on the first comma only, so "1,2,3" yields a
// longitude half of "2,3" and fails. NaN and infinities are rejected.
func ParseCoordinates(raw string) (Coordinates, error) {
	latStr, lonStr, ok := strings.Cut(raw, ",")
	if !ok {
		return Coordinates{}, ErrNoComma
	}

	lat, err := parseAxis(latStr)
	if err != nil {
		return Coordinates{}, ErrInvalidLatitude
	}

	lon, err := parseAxis(lonStr)
	if err != nil {
		return Coordinates{}, ErrInvalidLongitude
	}

	return Coordinates{Lon: lon, Lat: lat}, nil
}

func parseAxis(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
