package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/models"
)

func TestMerge_ScenarioA(t *testing.T) {
	invited := []models.InvitedGuest{{ID: 1, GuestName: "Jane Doe", AllowedPartySize: 2}}
	rsvps := []models.RSVP{{ID: 10, GuestName: "Jane Doe", Email: "jane@x.com", Attendance: models.AttendanceYes, GuestCount: 2}}

	rows := Merge(invited, rsvps, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].ActualGuestCount)
	assert.True(t, rows[0].IsAttending)
	assert.True(t, rows[0].HasRSVP)
	assert.Equal(t, models.RSVPAccepted, rows[0].RSVPStatus)
	assert.Equal(t, int64(10), rows[0].RSVPID)
	assert.Equal(t, models.Unassigned, rows[0].TableNumber)
}

func TestMerge_EmailBeforeName(t *testing.T) {
	invited := []models.InvitedGuest{{ID: 1, GuestName: "Jane Doe", Email: "JANE@x.com", AllowedPartySize: 3}}
	rsvps := []models.RSVP{
		{ID: 10, GuestName: "Jane Doe", Email: "someone@else.com", Attendance: models.AttendanceNo, GuestCount: 1},
		{ID: 11, GuestName: "J. Doe", Email: "jane@x.com", Attendance: models.AttendanceYes, GuestCount: 3},
	}

	rows := Merge(invited, rsvps, nil)

	assert.Equal(t, int64(11), rows[0].RSVPID)
	assert.Equal(t, 3, rows[0].ActualGuestCount)
}

func TestMerge_PlaceholderEmailFallsBackToName(t *testing.T) {
	invited := []models.InvitedGuest{{ID: 1, GuestName: "John  Smith", AllowedPartySize: 1}}
	rsvps := []models.RSVP{{ID: 7, GuestName: "john smith", Email: "no-email-john-smith@wedding.invalid", Attendance: models.AttendanceYes, GuestCount: 1}}
	seating := []models.SeatingAssignment{{ID: 3, GuestName: "JOHN SMITH", TableNumber: 4}}

	rows := Merge(invited, rsvps, seating)

	assert.Equal(t, int64(7), rows[0].RSVPID)
	assert.Equal(t, int64(3), rows[0].SeatingID)
	assert.Equal(t, 4, rows[0].TableNumber)
}

func TestMerge_PendingGuest(t *testing.T) {
	invited := []models.InvitedGuest{{ID: 1, GuestName: "No Answer", AllowedPartySize: 4}}

	rows := Merge(invited, nil, nil)

	assert.Equal(t, models.RSVPPending, rows[0].RSVPStatus)
	assert.False(t, rows[0].IsAttending)
	assert.False(t, rows[0].HasRSVP)
	assert.Equal(t, 4, rows[0].ActualGuestCount)
}

func TestMerge_EntourageAlwaysAttending(t *testing.T) {
	invited := []models.InvitedGuest{
		{ID: 1, GuestName: "Best Man", IsEntourage: true},
		{ID: 2, GuestName: "Flower Girl", SpecialNotes: "Entourage - kids", AllowedPartySize: 2},
		{ID: 3, GuestName: "Ring Bearer", Source: "@MASTERGUESTLIST.csv | KIDENTOURAGE"},
	}
	rsvps := []models.RSVP{{ID: 5, GuestName: "Best Man", Email: "bm@x.com", Attendance: models.AttendanceNo, GuestCount: 3}}

	rows := Merge(invited, rsvps, nil)

	for _, r := range rows {
		assert.True(t, r.IsAttending, r.GuestName)
		assert.True(t, r.IsEntourage, r.GuestName)
	}
	// declined entourage falls back to the invitation size
	assert.Equal(t, 1, rows[0].ActualGuestCount)
	assert.Equal(t, 2, rows[1].ActualGuestCount)
}

func TestMerge_ZeroGuestCountFallsBack(t *testing.T) {
	invited := []models.InvitedGuest{
		{ID: 1, GuestName: "A", AllowedPartySize: 3},
		{ID: 2, GuestName: "B"},
	}
	rsvps := []models.RSVP{
		{ID: 1, GuestName: "A", Email: "a@x.com", Attendance: models.AttendanceYes},
		{ID: 2, GuestName: "B", Email: "b@x.com", Attendance: models.AttendanceYes},
	}

	rows := Merge(invited, rsvps, nil)

	assert.Equal(t, 3, rows[0].ActualGuestCount)
	assert.Equal(t, 1, rows[1].ActualGuestCount)
}

func TestMerge_NeverClaimsSameRSVPTwice(t *testing.T) {
	invited := []models.InvitedGuest{
		{ID: 1, GuestName: "Pat Lee", Email: "pat1@x.com"},
		{ID: 2, GuestName: "pat lee", Email: "pat2@x.com"},
		{ID: 3, GuestName: "Sam Lee", Email: "sam@x.com"},
		{ID: 4, GuestName: "Sam Lee"},
	}
	rsvps := []models.RSVP{
		{ID: 100, GuestName: "Pat Lee", Email: "no-email-pat-lee@wedding.invalid", Attendance: models.AttendanceYes, GuestCount: 1},
		{ID: 101, GuestName: "Sam Lee", Email: "sam@x.com", Attendance: models.AttendanceYes, GuestCount: 2},
	}

	rows := Merge(invited, rsvps, nil)

	claimed := map[int64]int64{}
	for _, r := range rows {
		if r.RSVPID == 0 {
			continue
		}
		prev, dup := claimed[r.RSVPID]
		assert.False(t, dup, "rsvp %d claimed by %d and %d", r.RSVPID, prev, r.ID)
		claimed[r.RSVPID] = r.ID
	}
	assert.Equal(t, int64(1), claimed[100])
	assert.Equal(t, int64(3), claimed[101])
	assert.Equal(t, models.RSVPPending, rows[1].RSVPStatus)
	assert.Equal(t, models.RSVPPending, rows[3].RSVPStatus)
}

func TestSortForDisplay(t *testing.T) {
	rows := []models.ReconciledGuest{
		{GuestName: "zed", TableNumber: 0},
		{GuestName: "Bob", TableNumber: 2},
		{GuestName: "alice", TableNumber: 2},
		{GuestName: "Carl", TableNumber: 1},
		{GuestName: "Amy", TableNumber: 0},
		{GuestName: "Dana", TableNumber: 12},
	}

	SortForDisplay(rows)

	var got []string
	for _, r := range rows {
		got = append(got, r.GuestName)
	}
	assert.Equal(t, []string{"Carl", "alice", "Bob", "Dana", "Amy", "zed"}, got)
}

func TestSummarizeAndOccupancy(t *testing.T) {
	rows := []models.ReconciledGuest{
		{GuestName: "A", IsAttending: true, HasRSVP: true, RSVPStatus: models.RSVPAccepted, ActualGuestCount: 2, AllowedPartySize: 1, TableNumber: 1},
		{GuestName: "B", IsAttending: true, IsEntourage: true, RSVPStatus: models.RSVPPending, ActualGuestCount: 1, AllowedPartySize: 1, TableNumber: 1},
		{GuestName: "C", HasRSVP: true, RSVPStatus: models.RSVPDeclined, ActualGuestCount: 3, AllowedPartySize: 3, TableNumber: 2},
		{GuestName: "D", RSVPStatus: models.RSVPPending, ActualGuestCount: 1, AllowedPartySize: 1},
	}

	s := Summarize(rows)
	assert.Equal(t, Stats{Total: 4, Entourage: 1, Attending: 2, Pending: 2, Declined: 1, Seated: 3, Headcount: 3}, s)

	assert.Equal(t, map[int]int{1: 3}, TableOccupancy(rows))

	over := OverAllowance(rows)
	require.Len(t, over, 1)
	assert.Equal(t, "A", over[0].GuestName)

	assert.Len(t, Attending(rows), 2)
}
