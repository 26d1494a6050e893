package services

import (
	"fieldmap-service/internal/domain"
	"math"
)

// DefaultTolerance is the per-axis threshold in degrees (roughly 20-30m).
const DefaultTolerance = 0.0002

// Outcome of a clustering pass. Dropped counts records whose coordinates
// were absent or malformed.
type ClusterResult struct {
	Clusters []domain.Cluster
	Dropped  int
}

// ClusterRecords groups records into map markers using greedy, seed-anchored
// clustering.
//
// Records are visited in input order. Each one joins the first existing
// cluster (in creation order) whose seed coordinates are strictly within
// tolerance on both axes; otherwise it seeds a new cluster. Seeds are never
// re-averaged, so the result depends on input order.
//
// A non-positive or NaN tolerance falls back to DefaultTolerance.
func ClusterRecords(records []domain.GeoRecord, tolerance float64) ClusterResult {
	if !(tolerance > 0) {
		tolerance = DefaultTolerance
	}

	clusters := make([]domain.Cluster, 0, len(records))
	dropped := 0

	for _, r := range records {
		loc, err := r.Location()
		if err != nil {
			dropped++
			continue
		}

		idx := -1
		for i := range clusters {
			c := &clusters[i]
			if math.Abs(c.Lat-loc.Lat) < tolerance && math.Abs(c.Lon-loc.Lon) < tolerance {
				idx = i
				break
			}
		}

		if idx >= 0 {
			clusters[idx].Count += r.EffectiveCount()
			continue
		}

		clusters = append(clusters, domain.Cluster{
			ID:         r.ID,
			Lat:        loc.Lat,
			Lon:        loc.Lon,
			Count:      r.EffectiveCount(),
			Label:      r.Label,
			ClientName: r.ClientName,
		})
	}

	return ClusterResult{Clusters: clusters, Dropped: dropped}
}

// Display totals shown alongside a clustered map.
type ClusterSummary struct {
	Clusters int
	Total    int
}

func Summarize(clusters []domain.Cluster) ClusterSummary {
	total := 0
	for _, c := range clusters {
		total += c.Count
	}
	return ClusterSummary{Clusters: len(clusters), Total: total}
}
