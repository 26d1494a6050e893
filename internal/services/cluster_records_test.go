package services

import (
	"fieldmap-service/internal/domain"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func coords(s string) *string { return &s }

func rec(id int, c string, count int, label string) domain.GeoRecord {
	return domain.GeoRecord{ID: id, Coordinates: coords(c), Count: count, Label: label}
}

func TestClusterRecordsEndToEnd(t *testing.T) {
	records := []domain.GeoRecord{
		rec(1, "44.4268,26.1025", 2, "P1"),
		rec(2, "44.4269,26.1026", 3, "P2"),
		rec(3, "45.0,26.0", 1, "P3"),
		{ID: 4, Coordinates: nil, Count: 5, Label: "P4"},
	}

	got := ClusterRecords(records, 0.0002)

	want := []domain.Cluster{
		{ID: 1, Lat: 44.4268, Lon: 26.1025, Count: 5, Label: "P1"},
		{ID: 3, Lat: 45.0, Lon: 26.0, Count: 1, Label: "P3"},
	}
	if diff := cmp.Diff(want, got.Clusters); diff != "" {
		t.Fatalf("clusters mismatch (-want +got):\n%s", diff)
	}
	if got.Dropped != 1 {
		t.Fatalf("dropped = %d, want 1", got.Dropped)
	}
	if s := Summarize(got.Clusters); s.Total != 6 || s.Clusters != 2 {
		t.Fatalf("summary = %+v, want {Clusters:2 Total:6}", s)
	}
}

func TestClusterRecordsEmpty(t *testing.T) {
	got := ClusterRecords(nil, DefaultTolerance)
	if got.Clusters == nil {
		t.Fatal("expected non-nil empty cluster list")
	}
	if len(got.Clusters) != 0 || got.Dropped != 0 {
		t.Fatalf("got %+v, want empty result", got)
	}
}

func TestClusterRecordsSingleton(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantCount int
	}{
		{"explicit count", 4, 4},
		{"unset count", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rec(9, "46.7712,23.6236", tt.count, "Cabina")
			r.ClientName = "Acme SRL"

			got := ClusterRecords([]domain.GeoRecord{r}, DefaultTolerance)

			want := []domain.Cluster{{ID: 9, Lat: 46.7712, Lon: 23.6236, Count: tt.wantCount, Label: "Cabina", ClientName: "Acme SRL"}}
			if diff := cmp.Diff(want, got.Clusters); diff != "" {
				t.Fatalf("clusters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClusterRecordsMergeKeepsFirstSeed(t *testing.T) {
	records := []domain.GeoRecord{
		rec(7, "45.7983,24.1256", 2, "first"),
		rec(8, "45.7984,24.1255", 5, "second"),
	}

	got := ClusterRecords(records, DefaultTolerance)

	want := []domain.Cluster{{ID: 7, Lat: 45.7983, Lon: 24.1256, Count: 7, Label: "first"}}
	if diff := cmp.Diff(want, got.Clusters); diff != "" {
		t.Fatalf("clusters mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterRecordsBoundaryIsExclusive(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"latitude diff equals tolerance", "0,0", "0.0002,0", 2},
		{"longitude diff equals tolerance", "0,0", "0,0.0002", 2},
		{"latitude diff exceeds tolerance", "0,0", "0.0003,0", 2},
		{"both axes just inside", "0,0", "0.00019,0.00019", 1},
		{"one axis inside one outside", "0,0", "0.0001,0.0005", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClusterRecords([]domain.GeoRecord{rec(1, tt.a, 1, "a"), rec(2, tt.b, 1, "b")}, 0.0002)
			if len(got.Clusters) != tt.want {
				t.Fatalf("clusters = %d, want %d: %+v", len(got.Clusters), tt.want, got.Clusters)
			}
		})
	}
}

func TestClusterRecordsDropsMalformedCoordinates(t *testing.T) {
	valid := rec(1, "44.0,26.0", 3, "ok")
	tests := []struct {
		name string
		bad  domain.GeoRecord
	}{
		{"nil", domain.GeoRecord{ID: 2, Count: 10}},
		{"not a coordinate", rec(2, "not-a-coordinate", 10, "bad")},
		{"no comma", rec(2, "12.34", 10, "bad")},
		{"non-numeric half", rec(2, "44.0,east", 10, "bad")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClusterRecords([]domain.GeoRecord{tt.bad, valid}, DefaultTolerance)

			want := []domain.Cluster{{ID: 1, Lat: 44.0, Lon: 26.0, Count: 3, Label: "ok"}}
			if diff := cmp.Diff(want, got.Clusters); diff != "" {
				t.Fatalf("clusters mismatch (-want +got):\n%s", diff)
			}
			if got.Dropped != 1 {
				t.Fatalf("dropped = %d, want 1", got.Dropped)
			}
		})
	}
}

func TestClusterRecordsCountConservation(t *testing.T) {
	records := make([]domain.GeoRecord, 0, 60)
	validTotal := 0
	for i := 0; i < 60; i++ {
		count := i%4 + 1
		if i%7 == 0 {
			records = append(records, rec(i, fmt.Sprintf("bad-%d", i), count, "x"))
			continue
		}
		// Points fall on a coarse grid so some merge and some do not.
		lat := 44.0 + float64(i%5)*0.00015
		lon := 26.0 + float64(i%3)*0.0004
		records = append(records, rec(i, fmt.Sprintf("%.5f,%.5f", lat, lon), count, "x"))
		validTotal += count
	}

	got := ClusterRecords(records, DefaultTolerance)

	if s := Summarize(got.Clusters); s.Total != validTotal {
		t.Fatalf("total = %d, want %d", s.Total, validTotal)
	}
	if got.Dropped != 9 {
		t.Fatalf("dropped = %d, want 9", got.Dropped)
	}
}

func TestClusterRecordsOrderSensitivity(t *testing.T) {
	a := rec(1, "0.00000,0.00000", 1, "A")
	b := rec(2, "0.00015,0.00000", 1, "B")
	c := rec(3, "0.00025,0.00000", 1, "C")

	forward := ClusterRecords([]domain.GeoRecord{a, b, c}, 0.0002)
	wantForward := []domain.Cluster{
		{ID: 1, Lat: 0, Lon: 0, Count: 2, Label: "A"},
		{ID: 3, Lat: 0.00025, Lon: 0, Count: 1, Label: "C"},
	}
	if diff := cmp.Diff(wantForward, forward.Clusters); diff != "" {
		t.Fatalf("[A,B,C] mismatch (-want +got):\n%s", diff)
	}

	reverse := ClusterRecords([]domain.GeoRecord{c, b, a}, 0.0002)
	wantReverse := []domain.Cluster{
		{ID: 3, Lat: 0.00025, Lon: 0, Count: 2, Label: "C"},
		{ID: 1, Lat: 0, Lon: 0, Count: 1, Label: "A"},
	}
	if diff := cmp.Diff(wantReverse, reverse.Clusters); diff != "" {
		t.Fatalf("[C,B,A] mismatch (-want +got):\n%s", diff)
	}
}

// A centroid-anchored pass would fold C into A+B because the running mean
// (0.000075) is within tolerance of C. The seed-anchored pass must not.
func TestClusterRecordsAnchorsOnSeedNotCentroid(t *testing.T) {
	records := []domain.GeoRecord{
		rec(1, "0.00000,0", 1, "A"),
		rec(2, "0.00015,0", 1, "B"),
		rec(3, "0.00025,0", 1, "C"),
	}

	got := ClusterRecords(records, 0.0002)
	centroid := centroidClusterCount(t, records, 0.0002)

	if len(got.Clusters) != 2 {
		t.Fatalf("seed-anchored clusters = %d, want 2", len(got.Clusters))
	}
	if centroid != 1 {
		t.Fatalf("centroid clusters = %d, want 1", centroid)
	}
	if got.Clusters[0].Lat != 0 {
		t.Fatalf("seed latitude moved to %v", got.Clusters[0].Lat)
	}
}

func TestClusterRecordsToleranceFallback(t *testing.T) {
	records := []domain.GeoRecord{rec(1, "0,0", 1, "a"), rec(2, "0.0001,0", 1, "b")}
	for _, tol := range []float64{0, -1, math.NaN()} {
		got := ClusterRecords(records, tol)
		if len(got.Clusters) != 1 {
			t.Errorf("tolerance %v: clusters = %d, want 1", tol, len(got.Clusters))
		}
	}
}

func centroidClusterCount(t *testing.T, records []domain.GeoRecord, tolerance float64) int {
	t.Helper()

	type acc struct{ lat, lon, n float64 }
	var clusters []acc
	for _, r := range records {
		loc, err := r.Location()
		if err != nil {
			continue
		}
		merged := false
		for i := range clusters {
			c := &clusters[i]
			if math.Abs(c.lat-loc.Lat) < tolerance && math.Abs(c.lon-loc.Lon) < tolerance {
				c.lat = (c.lat*c.n + loc.Lat) / (c.n + 1)
				c.lon = (c.lon*c.n + loc.Lon) / (c.n + 1)
				c.n++
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, acc{lat: loc.Lat, lon: loc.Lon, n: 1})
		}
	}
	return len(clusters)
}
