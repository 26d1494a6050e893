package main

import (
	"encoding/json"
	"fieldmap-service/internal/api/dto"
	"fieldmap-service/internal/export"
	"fieldmap-service/internal/services"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const (
	outputSummary = "summary"
	outputJSON    = "json"
	outputGeoJSON = "geojson"
)

func newClusterCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a map view and print its markers",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", outputSummary, "Output format: summary, json or geojson")

	show := func(cmd *cobra.Command, views ...*services.MapView) error {
		return printViews(cmd.OutOrStdout(), output, views)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "Cluster every order known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.app.Maps.AllOrders(cmd.Context())
			if err != nil {
				return err
			}
			return show(cmd, v)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "route <route-id>",
		Short: "Cluster the tasks of one route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := c.app.Maps.RouteTasks(cmd.Context(), id)
			if err != nil {
				return err
			}
			return show(cmd, v)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "routes <route-id>...",
		Short: "Cluster several routes concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			views, err := c.app.Maps.Routes(cmd.Context(), ids)
			if err != nil {
				return err
			}
			return show(cmd, views...)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "client <client-id>",
		Short: "Cluster the existing placements of one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := c.app.Maps.ClientPlacements(cmd.Context(), id)
			if err != nil {
				return err
			}
			return show(cmd, v)
		},
	})

	return cmd
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", raw)
	}
	return id, nil
}

func printViews(w io.Writer, output string, views []*services.MapView) error {
	switch output {
	case outputSummary:
		for _, v := range views {
			if err := printSummary(w, v); err != nil {
				return err
			}
		}
		return nil

	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(views) == 1 {
			return enc.Encode(dto.NewMapViewResponse(views[0]))
		}
		return enc.Encode(dto.NewListMapViewsResponse(views))

	case outputGeoJSON:
		if len(views) != 1 {
			return fmt.Errorf("geojson output takes exactly one view, got %d", len(views))
		}
		body, err := export.GeoJSON(views[0].Clusters).MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(body))
		return err

	default:
		return fmt.Errorf("unknown output %q (summary, json, geojson)", output)
	}
}

func printSummary(w io.Writer, v *services.MapView) error {
	stale := ""
	if v.Stale {
		stale = fmt.Sprintf(" (stale snapshot from %s)", v.FetchedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "%s: %d markers, %d total, %d dropped%s\n",
		v.Key, v.Summary.Clusters, v.Summary.Total, v.Dropped, stale)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLAT\tLON\tCOUNT\tLABEL\tCLIENT")
	for _, cl := range v.Clusters {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t%d\t%s\t%s\n", cl.ID, cl.Lat, cl.Lon, cl.Count, cl.Label, cl.ClientName)
	}
	return tw.Flush()
}
