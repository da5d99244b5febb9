package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wedding-seating/internal/models"
)

func TestSeatingWorkbook(t *testing.T) {
	rows := []models.ReconciledGuest{
		{GuestName: "Amy", Email: "amy@x.com", TableNumber: 1, IsAttending: true, ActualGuestCount: 2, RSVPStatus: models.RSVPAccepted},
		{GuestName: "Best Man", TableNumber: 1, IsAttending: true, IsEntourage: true, ActualGuestCount: 1, RSVPStatus: models.RSVPPending},
		{GuestName: "Zed", Email: "no-email-zed@wedding.invalid", IsAttending: true, ActualGuestCount: 1, RSVPStatus: models.RSVPAccepted},
	}

	data, err := SeatingWorkbook(rows, Layout{Tables: 3, SeatsPerTable: 10})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SeatingSheet, TablesSheet}, f.GetSheetList())

	seating, err := f.GetRows(SeatingSheet)
	require.NoError(t, err)
	require.Len(t, seating, 4)
	assert.Equal(t, seatingHeader, seating[0])
	assert.Equal(t, []string{"1", "Amy", "amy@x.com", "2", "yes"}, seating[1])
	assert.Equal(t, []string{"1", "Best Man", "", "1", "pending", "Yes"}, seating[2])
	assert.Equal(t, []string{"Unassigned", "Zed", "", "1", "yes"}, seating[3])

	tables, err := f.GetRows(TablesSheet)
	require.NoError(t, err)
	require.Len(t, tables, 4)
	assert.Equal(t, tablesHeader, tables[0])
	assert.Equal(t, []string{"1", "2", "3", "7"}, tables[1])
	assert.Equal(t, []string{"2", "0", "0", "10"}, tables[2])
}

func TestSeatingWorkbook_Empty(t *testing.T) {
	data, err := SeatingWorkbook(nil, Layout{Tables: 26, SeatsPerTable: 10})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	seating, err := f.GetRows(SeatingSheet)
	require.NoError(t, err)
	assert.Len(t, seating, 1)

	tables, err := f.GetRows(TablesSheet)
	require.NoError(t, err)
	assert.Len(t, tables, 27)
}
