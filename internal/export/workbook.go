// Package export renders the seating chart as an Excel workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/ledger"
	"wedding-seating/internal/models"
)

const (
	SeatingSheet = "Seating"
	TablesSheet  = "Tables"
)

var (
	seatingHeader = []string{"Table", "Guest", "Email", "Party Size", "RSVP", "Entourage", "Dietary"}
	tablesHeader  = []string{"Table", "Parties", "Seated", "Remaining"}
)

// Layout is the room the chart is drawn for.
type Layout struct {
	Tables        int
	SeatsPerTable int
}

// SeatingWorkbook builds an xlsx with one row per guest on the "Seating"
// sheet and one row per table on the "Tables" sheet. rows should already be
// in display order.
func SeatingWorkbook(rows []models.ReconciledGuest, layout Layout) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SeatingSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(TablesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F3E9DC"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSeating(f, rows, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTables(f, rows, layout, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSeating(f *excelize.File, rows []models.ReconciledGuest, style int) error {
	if err := writeHeader(f, SeatingSheet, seatingHeader, style); err != nil {
		return err
	}
	for i, r := range rows {
		var table any = "Unassigned"
		if r.TableNumber > models.Unassigned {
			table = r.TableNumber
		}
		entourage := ""
		if r.IsEntourage {
			entourage = "Yes"
		}
		values := []any{table, r.GuestName, identity.EmailKey(r.Email), r.ActualGuestCount, string(r.RSVPStatus), entourage, r.DietaryRestrictions}
		if err := writeRow(f, SeatingSheet, i+2, values); err != nil {
			return err
		}
	}
	widths := map[string]float64{"A": 12, "B": 30, "C": 30, "D": 12, "E": 10, "F": 10, "G": 30}
	for col, w := range widths {
		if err := f.SetColWidth(SeatingSheet, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return freezeHeader(f, SeatingSheet)
}

func writeTables(f *excelize.File, rows []models.ReconciledGuest, layout Layout, style int) error {
	if err := writeHeader(f, TablesSheet, tablesHeader, style); err != nil {
		return err
	}
	occupancy := ledger.TableOccupancy(rows)
	parties := make(map[int]int)
	for _, r := range rows {
		if r.IsAttending && r.TableNumber > models.Unassigned {
			parties[r.TableNumber]++
		}
	}
	for t := 1; t <= layout.Tables; t++ {
		// manual overrides can push remaining below zero
		values := []any{t, parties[t], occupancy[t], layout.SeatsPerTable - occupancy[t]}
		if err := writeRow(f, TablesSheet, t+1, values); err != nil {
			return err
		}
	}
	return freezeHeader(f, TablesSheet)
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) error {
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}
