package export

import (
	"fieldmap-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON renders clusters as Point features in [lon, lat] order.
// Each feature carries the marker id, count, label and client name.
func GeoJSON(clusters []domain.Cluster) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range clusters {
		f := geojson.NewFeature(orb.Point{c.Lon, c.Lat})
		f.ID = c.ID
		f.Properties["count"] = c.Count
		f.Properties["label"] = c.Label
		if c.ClientName != "" {
			f.Properties["client_name"] = c.ClientName
		}
		fc.Append(f)
	}
	return fc
}
