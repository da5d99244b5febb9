package models

import "time"

// InvitedGuest is one invitation on the master guest list.
// AllowedPartySize caps how many seats the invitation covers.
type InvitedGuest struct {
	ID               int64     `json:"id"`
	GuestName        string    `json:"guest_name"`
	Email            string    `json:"email"`
	AllowedPartySize int       `json:"allowed_party_size"`
	IsEntourage      bool      `json:"is_entourage"`
	Source           string    `json:"source"`
	SpecialNotes     string    `json:"special_notes,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// PartySize returns AllowedPartySize, or 1 when it was never set.
func (g InvitedGuest) PartySize() int {
	if g.AllowedPartySize > 0 {
		return g.AllowedPartySize
	}
	return 1
}

// Attendance is the answer a guest gave on their RSVP
type Attendance string

const (
	AttendanceYes Attendance = "yes"
	AttendanceNo  Attendance = "no"
)

// Valid reports whether a is one of the accepted answers.
func (a Attendance) Valid() bool {
	return a == AttendanceYes || a == AttendanceNo
}

// RSVPStatus is the attendance state shown on the admin listing
type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPAccepted RSVPStatus = "yes"
	RSVPDeclined RSVPStatus = "no"
)

// RSVP is a guest's response, keyed by email. Guests without an email
// carry a placeholder address so the key is still unique.
type RSVP struct {
	ID                  int64      `json:"id"`
	InvitedGuestID      *int64     `json:"invited_guest_id,omitempty"`
	GuestName           string     `json:"guest_name"`
	Email               string     `json:"email"`
	Attendance          Attendance `json:"attendance"`
	GuestCount          int        `json:"guest_count"`
	DietaryRestrictions string     `json:"dietary_restrictions,omitempty"`
	SpecialMessage      string     `json:"special_message,omitempty"`
	WalletAddress       string     `json:"wallet_address,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
