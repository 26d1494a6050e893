package main

import (
	"fieldmap-service/internal/export"
	"fieldmap-service/internal/services"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		out    string
		routes []int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the orders map (and optional routes) to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range routes {
				if id <= 0 {
					return fmt.Errorf("invalid route id %d", id)
				}
			}

			orders, err := c.app.Maps.AllOrders(cmd.Context())
			if err != nil {
				return err
			}
			views := []*services.MapView{orders}

			if len(routes) > 0 {
				rv, err := c.app.Maps.Routes(cmd.Context(), routes)
				if err != nil {
					return err
				}
				views = append(views, rv...)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := export.WriteXLSX(f, views...); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sheet(s) to %s\n", len(views), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "orders.xlsx", "Output file")
	cmd.Flags().IntSliceVar(&routes, "routes", nil, "Route ids to add as extra sheets")

	return cmd
}
