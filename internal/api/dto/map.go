package dto

import (
	"fieldmap-service/internal/services"
	"time"
)

type MarkerResponse struct {
	ID         int     `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Count      int     `json:"count"`
	Label      string  `json:"label"`
	ClientName string  `json:"client_name,omitempty"`
}

type SummaryResponse struct {
	Markers int `json:"markers"`
	Total   int `json:"total"`
}

type MapViewResponse struct {
	Key       string           `json:"key"`
	Markers   []MarkerResponse `json:"markers"`
	Summary   SummaryResponse  `json:"summary"`
	Dropped   int              `json:"dropped"`
	Stale     bool             `json:"stale"`
	FetchedAt time.Time        `json:"fetched_at"`
}

type ListMapViewsResponse struct {
	Views []MapViewResponse `json:"views"`
}

func NewMapViewResponse(v *services.MapView) MapViewResponse {
	res := MapViewResponse{
		Key:     v.Key,
		Markers: make([]MarkerResponse, 0, len(v.Clusters)),
		Summary: SummaryResponse{
			Markers: v.Summary.Clusters,
			Total:   v.Summary.Total,
		},
		Dropped:   v.Dropped,
		Stale:     v.Stale,
		FetchedAt: v.FetchedAt,
	}
	for _, c := range v.Clusters {
		res.Markers = append(res.Markers, MarkerResponse{
			ID:         c.ID,
			Lat:        c.Lat,
			Lon:        c.Lon,
			Count:      c.Count,
			Label:      c.Label,
			ClientName: c.ClientName,
		})
	}
	return res
}

func NewListMapViewsResponse(views []*services.MapView) ListMapViewsResponse {
	res := ListMapViewsResponse{Views: make([]MapViewResponse, 0, len(views))}
	for _, v := range views {
		res.Views = append(res.Views, NewMapViewResponse(v))
	}
	return res
}
