package model

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Query is the transient search request; it is never persisted.
type Query struct {
	SearchText string
	Categories []string
	Origin     *Coordinate
	RadiusKm   *float64
}

// HasRadius reports whether the radius filter is active.
func (q Query) HasRadius() bool {
	return q.Origin != nil && q.RadiusKm != nil
}
