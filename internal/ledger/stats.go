package ledger

import "wedding-seating/internal/models"

// Stats summarizes a reconciled guest list for the admin dashboard.
type Stats struct {
	Total     int `json:"total"`
	Entourage int `json:"entourage"`
	Attending int `json:"attending"`
	Pending   int `json:"pending"`
	Declined  int `json:"declined"`
	Seated    int `json:"seated"`
	Headcount int `json:"headcount"`
}

// Summarize counts rows by state. Headcount sums actual_guest_count over
// attending guests.
func Summarize(rows []models.ReconciledGuest) Stats {
	var s Stats
	s.Total = len(rows)
	for _, r := range rows {
		if r.IsEntourage {
			s.Entourage++
		}
		if r.IsAttending {
			s.Attending++
			s.Headcount += r.ActualGuestCount
		}
		if !r.HasRSVP {
			s.Pending++
		}
		if r.RSVPStatus == models.RSVPDeclined {
			s.Declined++
		}
		if r.TableNumber > models.Unassigned {
			s.Seated++
		}
	}
	return s
}

// TableOccupancy sums the party sizes of attending guests per seated table.
func TableOccupancy(rows []models.ReconciledGuest) map[int]int {
	occupancy := make(map[int]int)
	for _, r := range rows {
		if r.IsAttending && r.TableNumber > models.Unassigned {
			occupancy[r.TableNumber] += r.ActualGuestCount
		}
	}
	return occupancy
}

// OverAllowance returns the rows whose confirmed party is larger than the
// invitation allows. The allowance is reported, not enforced.
func OverAllowance(rows []models.ReconciledGuest) []models.ReconciledGuest {
	var over []models.ReconciledGuest
	for _, r := range rows {
		if r.IsAttending && r.ActualGuestCount > r.AllowedPartySize {
			over = append(over, r)
		}
	}
	return over
}

// Attending filters rows down to guests who need a seat.
func Attending(rows []models.ReconciledGuest) []models.ReconciledGuest {
	var out []models.ReconciledGuest
	for _, r := range rows {
		if r.IsAttending {
			out = append(out, r)
		}
	}
	return out
}
