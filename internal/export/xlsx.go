package export

import (
	"errors"
	"fieldmap-service/internal/services"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var xlsxHeader = []interface{}{
	"Marker ID", "Latitude", "Longitude", "Count", "Label", "Client",
}

// WriteXLSX writes one sheet per view: a header row, one row per cluster
// and a totals row.
func WriteXLSX(w io.Writer, views ...*services.MapView) error {
	if len(views) == 0 {
		return errors.New("write xlsx: no views to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	first := -1
	for _, v := range views {
		name := sheetName(v.Key)

		index, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("write xlsx: add sheet %q: %w", name, err)
		}
		if first < 0 {
			first = index
		}

		if err := writeViewSheet(f, name, v); err != nil {
			return fmt.Errorf("write xlsx: sheet %q: %w", name, err)
		}
	}

	f.SetActiveSheet(first)
	f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeViewSheet(f *excelize.File, name string, v *services.MapView) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", xlsxHeader); err != nil {
		return err
	}

	for i, c := range v.Clusters {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.ID, c.Lat, c.Lon, c.Count, c.Label, c.ClientName}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	totalsCell, err := excelize.CoordinatesToCellName(1, len(v.Clusters)+3)
	if err != nil {
		return err
	}
	totals := []interface{}{
		"Total", "", "", v.Summary.Total,
		fmt.Sprintf("%d markers", v.Summary.Clusters),
		fmt.Sprintf("%d dropped", v.Dropped),
	}
	if v.Stale {
		totals = append(totals, "stale since "+v.FetchedAt.Format("2006-01-02 15:04"))
	}
	if err := sw.SetRow(totalsCell, totals); err != nil {
		return err
	}

	return sw.Flush()
}

// Excel forbids : \ / ? * [ ] in sheet names and caps them at 31 characters.
func sheetName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, key)

	name = strings.TrimSpace(name)
	if name == "" {
		name = "view"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
