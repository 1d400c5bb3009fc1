package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean radius used by the spherical-earth approximation.
const EarthRadiusMeters = 6371000

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a WGS84 latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Validate rejects non-finite values and values outside [-90,90] / [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, p.Latitude)
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, p.Longitude)
	}
	return nil
}

// String renders the point as the "lat,lon" coordinate string stored on attendance records.
func (p Point) String() string {
	return strconv.FormatFloat(p.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', 6, 64)
}

// ParsePoint parses a "lat,lon" coordinate string.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q is not a lat,lon pair", ErrInvalidCoordinate, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, parts[1])
	}

	p := Point{Latitude: lat, Longitude: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// DistanceMeters returns the great-circle (haversine) distance between site and point.
// The result is not rounded; use RoundMeters when presenting it.
func DistanceMeters(site, point Point) (float64, error) {
	if err := site.Validate(); err != nil {
		return 0, err
	}
	if err := point.Validate(); err != nil {
		return 0, err
	}
	return haversine(site.Latitude, site.Longitude, point.Latitude, point.Longitude), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// IsWithinRadius reports whether distance lies inside (or on) the fence.
func IsWithinRadius(distance, radiusMeters float64) bool {
	return distance <= radiusMeters
}

// RoundMeters rounds a distance to the nearest meter for display.
func RoundMeters(d float64) int {
	return int(math.Round(d))
}

// Site is an approved work location with a circular fence around it.
type Site struct {
	Name         string
	Center       Point
	RadiusMeters float64
}

// Check measures p against the site fence.
func (s Site) Check(p Point) (distance float64, within bool, err error) {
	distance, err = DistanceMeters(s.Center, p)
	if err != nil {
		return 0, false, err
	}
	return distance, IsWithinRadius(distance, s.RadiusMeters), nil
}
