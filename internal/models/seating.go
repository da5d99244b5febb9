package models

// Unassigned is the table number of a guest who has not been seated yet.
const Unassigned = 0

// SeatingAssignment places a guest at a table.
type SeatingAssignment struct {
	ID           int64  `json:"id"`
	GuestName    string `json:"guest_name"`
	Email        string `json:"email,omitempty"`
	TableNumber  int    `json:"table_number"`
	SeatNumber   *int   `json:"seat_number,omitempty"`
	PlusOneName  string `json:"plus_one_name,omitempty"`
	DietaryNotes string `json:"dietary_notes,omitempty"`
	SpecialNotes string `json:"special_notes,omitempty"`
}

// Seated reports whether the assignment holds a real table.
func (s SeatingAssignment) Seated() bool {
	return s.TableNumber > Unassigned
}

// ReconciledGuest is the merged view of an invited guest, their RSVP and
// their seating row. It is derived on every read and never stored.
type ReconciledGuest struct {
	ID                  int64      `json:"id"`
	GuestName           string     `json:"guest_name"`
	Email               string     `json:"email"`
	AllowedPartySize    int        `json:"allowed_party_size"`
	IsEntourage         bool       `json:"is_entourage"`
	Source              string     `json:"source,omitempty"`
	RSVPStatus          RSVPStatus `json:"rsvp_status"`
	HasRSVP             bool       `json:"has_rsvpd"`
	IsAttending         bool       `json:"is_attending"`
	ActualGuestCount    int        `json:"actual_guest_count"`
	TableNumber         int        `json:"table_number"`
	RSVPID              int64      `json:"rsvp_id,omitempty"`
	SeatingID           int64      `json:"seating_id,omitempty"`
	DietaryRestrictions string     `json:"dietary_restrictions,omitempty"`
	SpecialMessage      string     `json:"special_message,omitempty"`
}
