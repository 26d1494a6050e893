package domain

// Represents one geo-tagged unit (an order or a placement) before clustering.
// Coordinates holds the raw backend string; nil means the backend sent none.
type GeoRecord struct {
	ID          int
	Coordinates *string
	Count       int
	Label       string
	ClientName  string
}

// Count used for aggregation. Absent or non-positive quantities count as one.
func (r GeoRecord) EffectiveCount() int {
	if r.Count <= 0 {
		return 1
	}
	return r.Count
}

// Resolve the record's coordinates, reporting why they are unusable.
func (r GeoRecord) Location() (Coordinates, error) {
	if r.Coordinates == nil {
		return Coordinates{}, ErrNoCoordinates
	}
	return ParseCoordinates(*r.Coordinates)
}

// Represents one map marker produced by clustering.
// ID, Lat, Lon, Label and ClientName come from the seed record and are never
// updated as later records merge in; Count is the running sum.
type Cluster struct {
	ID         int
	Lat        float64
	Lon        float64
	Count      int
	Label      string
	ClientName string
}
