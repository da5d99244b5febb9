// Package ledger joins invited guests, RSVPs and seating rows into one
// reconciled row per invited guest. Everything here is a pure projection.
package ledger

import (
	"sort"
	"strings"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
)

// IsEntourage reports whether g is part of the wedding party, either by
// flag or because its notes or source say so.
func IsEntourage(g models.InvitedGuest) bool {
	if g.IsEntourage {
		return true
	}
	return strings.Contains(strings.ToLower(g.SpecialNotes), "entourage") ||
		strings.Contains(strings.ToLower(g.Source), "entourage")
}

// Merge builds one reconciled row per invited guest, in input order.
//
// RSVPs and seating rows are matched on exact normalized email, then on
// exact normalized name. Each RSVP and each seating row is claimed by at
// most one guest; the first guest in input order wins.
func Merge(invited []models.InvitedGuest, rsvps []models.RSVP, seating []models.SeatingAssignment) []models.ReconciledGuest {
	rsvpIndex := identity.NewIndex(rsvps, func(r models.RSVP) identity.Key {
		return identity.KeyOf(r.GuestName, r.Email)
	})
	seatIndex := identity.NewIndex(seating, func(s models.SeatingAssignment) identity.Key {
		return identity.KeyOf(s.GuestName, s.Email)
	})
	rsvpClaimed := make([]bool, len(rsvps))
	seatClaimed := make([]bool, len(seating))

	rows := make([]models.ReconciledGuest, 0, len(invited))
	for _, g := range invited {
		key := identity.KeyOf(g.GuestName, g.Email)

		var rsvp *models.RSVP
		if i, ok := rsvpIndex.FindFunc(key, func(i int) bool { return !rsvpClaimed[i] }); ok {
			rsvpClaimed[i] = true
			r := rsvpIndex.Get(i)
			rsvp = &r
		}
		var seat *models.SeatingAssignment
		if i, ok := seatIndex.FindFunc(key, func(i int) bool { return !seatClaimed[i] }); ok {
			seatClaimed[i] = true
			s := seatIndex.Get(i)
			seat = &s
		}

		rows = append(rows, reconcile(g, rsvp, seat))
	}
	return rows
}

func reconcile(g models.InvitedGuest, rsvp *models.RSVP, seat *models.SeatingAssignment) models.ReconciledGuest {
	entourage := IsEntourage(g)
	row := models.ReconciledGuest{
		ID:               g.ID,
		GuestName:        g.GuestName,
		Email:            g.Email,
		AllowedPartySize: g.PartySize(),
		IsEntourage:      entourage,
		Source:           g.Source,
		RSVPStatus:       models.RSVPPending,
		ActualGuestCount: g.PartySize(),
	}

	attendingByRSVP := false
	if rsvp != nil {
		row.HasRSVP = true
		row.RSVPID = rsvp.ID
		row.RSVPStatus = models.RSVPStatus(rsvp.Attendance)
		row.DietaryRestrictions = rsvp.DietaryRestrictions
		row.SpecialMessage = rsvp.SpecialMessage
		attendingByRSVP = rsvp.Attendance == models.AttendanceYes
		if attendingByRSVP && rsvp.GuestCount > 0 {
			row.ActualGuestCount = rsvp.GuestCount
		}
	}
	row.IsAttending = attendingByRSVP || entourage

	if seat != nil {
		row.SeatingID = seat.ID
		row.TableNumber = seat.TableNumber
	}
	return row
}

// SortForDisplay orders rows by table number with unassigned guests last,
// then by normalized guest name.
func SortForDisplay(rows []models.ReconciledGuest) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TableNumber != b.TableNumber {
			if a.TableNumber == models.Unassigned {
				return false
			}
			if b.TableNumber == models.Unassigned {
				return true
			}
			return a.TableNumber < b.TableNumber
		}
		return identity.NormalizeName(a.GuestName) < identity.NormalizeName(b.GuestName)
	})
}
