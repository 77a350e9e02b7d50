// Package geo implements great-circle distance and the bounding boxes used to pre-filter
// candidate donations before the exact distance is computed.
package geo

import (
	"errors"
	"math"

	"github.com/foodlink/foodlink-api/internal/model"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned for non-finite or out-of-range coordinates.
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// Validate rejects NaN, infinities, |lat| > 90 and |lon| > 180.
func Validate(c model.Coordinate) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return ErrInvalidCoordinate
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance returns the haversine distance in kilometres between a and b.
// It returns NaN when either point is invalid.
func Distance(a, b model.Coordinate) float64 {
	if Validate(a) != nil || Validate(b) != nil {
		return math.NaN()
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// rounding can push h a hair outside [0, 1] for antipodal points
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// BoundingBox is a lat/lon rectangle that contains every point within a radius of its centre.
// HasLonBounds is false when the circle reaches a pole or crosses the antimeridian; the
// longitude constraint is then dropped and only latitude is bounded.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	HasLonBounds   bool
}

// NewBoundingBox computes the smallest box enclosing the spherical cap of radiusKm around centre.
func NewBoundingBox(centre model.Coordinate, radiusKm float64) BoundingBox {
	// pad so points sitting exactly on the circle survive float rounding at the box edge
	angular := radiusKm/EarthRadiusKm*(1+1e-9) + 1e-12
	lat := radians(centre.Lat)
	lon := radians(centre.Lon)

	minLat := lat - angular
	maxLat := lat + angular

	box := BoundingBox{
		MinLat: math.Max(-90, degrees(minLat)),
		MaxLat: math.Min(90, degrees(maxLat)),
	}

	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 || angular >= math.Pi/2 {
		return box
	}

	dLon := math.Asin(math.Min(1, math.Sin(angular)/math.Cos(lat)))
	minLon := lon - dLon
	maxLon := lon + dLon
	if minLon < -math.Pi || maxLon > math.Pi {
		return box
	}

	box.MinLon = degrees(minLon)
	box.MaxLon = degrees(maxLon)
	box.HasLonBounds = true
	return box
}

// Contains reports whether c lies inside the box.
func (b BoundingBox) Contains(c model.Coordinate) bool {
	if c.Lat < b.MinLat || c.Lat > b.MaxLat {
		return false
	}
	if !b.HasLonBounds {
		return true
	}
	return c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}
