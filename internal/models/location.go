package models

type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether the coordinate lies within WGS84 latitude/longitude bounds.
func (c Coordinate) Valid() bool {
	if c.Lat < -90 || c.Lat > 90 {
		return false
	}
	if c.Lng < -180 || c.Lng > 180 {
		return false
	}
	return true
}
