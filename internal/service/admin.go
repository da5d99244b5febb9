package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/ledger"
	"wedding-seating/internal/models"
	"wedding-seating/internal/storage"
	"wedding-seating/internal/whatsapp"
)

// SourceAdmin tags guests created from the admin screen.
const SourceAdmin = "@ADMIN"

// NewGuestRequest creates an invited guest.
type NewGuestRequest struct {
	GuestName        string `json:"guest_name"`
	Email            string `json:"email"`
	AllowedPartySize int    `json:"allowed_party_size"`
	IsEntourage      bool   `json:"is_entourage"`
	Phone            string `json:"phone"`
}

// CreateInvitedGuest adds a guest after checking that neither their real
// email nor their canonical name is taken.
func (s *Service) CreateInvitedGuest(ctx context.Context, req NewGuestRequest) (*models.InvitedGuest, error) {
	name := strings.TrimSpace(req.GuestName)
	email := strings.TrimSpace(req.Email)
	allowed := req.AllowedPartySize
	if allowed == 0 {
		allowed = 1
	}
	if name == "" {
		return nil, validationError("guest_name is required")
	}
	if allowed < 1 || allowed > MaxPartySize {
		return nil, validationError("allowed_party_size must be an integer between 1 and %d", MaxPartySize)
	}

	if identity.EmailKey(email) != "" {
		existing, err := s.store.FindInvitedGuestByEmail(ctx, email)
		if err == nil {
			return nil, &ConflictError{Reason: "A guest with this email already exists", Existing: existing}
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	existing, err := s.store.FindInvitedGuestByName(ctx, name)
	if err == nil {
		return nil, &ConflictError{Reason: "A guest with this name already exists", Existing: existing}
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	g := &models.InvitedGuest{
		GuestName:        name,
		Email:            email,
		AllowedPartySize: allowed,
		IsEntourage:      req.IsEntourage,
		Source:           SourceAdmin,
		Phone:            whatsapp.NormalizePhoneNumber(req.Phone),
	}
	if err := s.store.CreateInvitedGuest(ctx, g); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ConflictError{Reason: "A guest with this email already exists"}
		}
		return nil, err
	}
	s.log.Info().Int64("id", g.ID).Str("guest", g.GuestName).Msg("Created invited guest")
	return g, nil
}

// GuestCountRequest changes how many seats a guest holds.
type GuestCountRequest struct {
	GuestName  string `json:"guest_name"`
	Email      string `json:"email"`
	GuestCount int    `json:"guest_count"`
}

// GuestCountResult reports which rows changed.
type GuestCountResult struct {
	InvitedGuestID int64 `json:"invited_guest_id"`
	RSVPUpdated    bool  `json:"rsvp_updated"`
}

// UpdateGuestCount sets allowed_party_size on the invited guest and, when
// the guest has answered, guest_count on their RSVP.
func (s *Service) UpdateGuestCount(ctx context.Context, req GuestCountRequest) (*GuestCountResult, error) {
	name := strings.TrimSpace(req.GuestName)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, validationError("guest_name is required")
	}
	if req.GuestCount < 1 || req.GuestCount > MaxPartySize {
		return nil, validationError("guest_count must be between 1 and %d", MaxPartySize)
	}

	invited, err := s.findInvitedGuest(ctx, name, email)
	if err != nil {
		return nil, err
	}
	if invited == nil {
		return nil, fmt.Errorf("invited guest %q: %w", name, storage.ErrNotFound)
	}
	if err := s.store.UpdateAllowedPartySize(ctx, invited.ID, req.GuestCount); err != nil {
		return nil, err
	}

	result := &GuestCountResult{InvitedGuestID: invited.ID}
	rsvpEmail := email
	if rsvpEmail == "" {
		rsvpEmail = identity.PlaceholderEmail(name)
	}
	rsvp, _, err := s.findExistingRSVP(ctx, name, rsvpEmail)
	if err != nil {
		return nil, err
	}
	if rsvp != nil {
		if err := s.store.UpdateRSVPGuestCount(ctx, rsvp.ID, req.GuestCount); err != nil {
			return nil, err
		}
		result.RSVPUpdated = true
	}

	s.log.Info().Int64("id", invited.ID).Int("guest_count", req.GuestCount).
		Bool("rsvp_updated", result.RSVPUpdated).Msg("Updated guest count")
	return result, nil
}

// GuestListing is the admin dashboard payload.
type GuestListing struct {
	Guests          []models.ReconciledGuest `json:"guests"`
	Stats           ledger.Stats             `json:"stats"`
	TableCapacities map[int]int              `json:"table_capacities"`
	OverAllowance   []models.ReconciledGuest `json:"over_allowance,omitempty"`
}

// Guests returns the reconciled guest list in display order.
func (s *Service) Guests(ctx context.Context) (*GuestListing, error) {
	rows, _, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}
	ledger.SortForDisplay(rows)
	return &GuestListing{
		Guests:          rows,
		Stats:           ledger.Summarize(rows),
		TableCapacities: ledger.TableOccupancy(rows),
		OverAllowance:   ledger.OverAllowance(rows),
	}, nil
}

// Seating lists seating rows by table, unassigned last, then by name.
func (s *Service) Seating(ctx context.Context) ([]models.SeatingAssignment, error) {
	rows, err := s.store.ListSeating(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TableNumber != b.TableNumber {
			if !a.Seated() {
				return false
			}
			if !b.Seated() {
				return true
			}
			return a.TableNumber < b.TableNumber
		}
		return identity.NormalizeName(a.GuestName) < identity.NormalizeName(b.GuestName)
	})
	return rows, nil
}

// SeatingUpdate is a partial edit of a seating row. Nil fields are kept.
type SeatingUpdate struct {
	TableNumber  *int    `json:"table_number"`
	SeatNumber   *int    `json:"seat_number"`
	PlusOneName  *string `json:"plus_one_name"`
	DietaryNotes *string `json:"dietary_notes"`
	SpecialNotes *string `json:"special_notes"`
}

// UpdateSeating applies a manual edit. A manual table move may overfill a
// table; the allocator treats it as an override.
func (s *Service) UpdateSeating(ctx context.Context, id int64, upd SeatingUpdate) (*models.SeatingAssignment, error) {
	row, err := s.store.GetSeating(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.TableNumber != nil {
		if *upd.TableNumber < models.Unassigned || *upd.TableNumber > s.maxTables {
			return nil, validationError("table_number must be between 0 and %d", s.maxTables)
		}
		row.TableNumber = *upd.TableNumber
	}
	if upd.SeatNumber != nil {
		row.SeatNumber = upd.SeatNumber
	}
	if upd.PlusOneName != nil {
		row.PlusOneName = *upd.PlusOneName
	}
	if upd.DietaryNotes != nil {
		row.DietaryNotes = *upd.DietaryNotes
	}
	if upd.SpecialNotes != nil {
		row.SpecialNotes = *upd.SpecialNotes
	}
	if err := s.store.UpdateSeating(ctx, *row); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id", id).Int("table", row.TableNumber).Msg("Updated seating assignment")
	return row, nil
}

// IdentityUpdate renames a guest. A nil Email leaves the address alone.
type IdentityUpdate struct {
	GuestName string  `json:"guest_name"`
	Email     *string `json:"email"`
}

// IdentityResult reports what a rename touched.
type IdentityResult struct {
	Guest          *models.InvitedGuest `json:"invited_guest"`
	UpdatedRSVPs   int                  `json:"updated_rsvps"`
	UpdatedSeating int                  `json:"updated_seating"`
}

// UpdateGuestIdentity renames invited guest id and carries the new name,
// and a new real email, over to the RSVP and seating row matched to the
// old identity. The name and email are checked against every other guest
// first, and the three rows are written in one transaction.
func (s *Service) UpdateGuestIdentity(ctx context.Context, id int64, upd IdentityUpdate) (*IdentityResult, error) {
	name := strings.TrimSpace(upd.GuestName)
	if name == "" {
		return nil, validationError("guest_name is required")
	}

	g, err := s.store.GetInvitedGuest(ctx, id)
	if err != nil {
		return nil, err
	}
	rsvps, err := s.store.ListRSVPs(ctx)
	if err != nil {
		return nil, err
	}
	seats, err := s.store.ListSeating(ctx)
	if err != nil {
		return nil, err
	}
	invited, err := s.store.ListInvitedGuests(ctx)
	if err != nil {
		return nil, err
	}

	// resolve links against the old identity before anything changes
	var linked models.ReconciledGuest
	rsvpClaimed := make(map[int64]bool)
	seatClaimed := make(map[int64]bool)
	for _, row := range ledger.Merge(invited, rsvps, seats) {
		if row.ID == g.ID {
			linked = row
			continue
		}
		if row.RSVPID != 0 {
			rsvpClaimed[row.RSVPID] = true
		}
		if row.SeatingID != 0 {
			seatClaimed[row.SeatingID] = true
		}
	}

	newEmail := ""
	if upd.Email != nil {
		newEmail = strings.TrimSpace(*upd.Email)
	}
	nameKey := identity.NormalizeName(name)
	emailKey := identity.EmailKey(newEmail)
	for i := range invited {
		other := &invited[i]
		if other.ID == g.ID {
			continue
		}
		if identity.NormalizeName(other.GuestName) == nameKey {
			return nil, &ConflictError{Reason: "A guest with this name already exists", Existing: other}
		}
		if emailKey != "" && identity.EmailKey(other.Email) == emailKey {
			return nil, &ConflictError{Reason: "That email is already assigned to another guest", Existing: other}
		}
	}
	if emailKey != "" {
		for _, r := range rsvps {
			if r.ID == linked.RSVPID || identity.EmailKey(r.Email) != emailKey {
				continue
			}
			// a guest with no answer of its own may adopt an unclaimed one
			if rsvpClaimed[r.ID] || linked.RSVPID != 0 {
				return nil, &ConflictError{Reason: "That email already has an RSVP"}
			}
		}
		for _, a := range seats {
			if a.ID != linked.SeatingID && seatClaimed[a.ID] && identity.EmailKey(a.Email) == emailKey {
				return nil, &ConflictError{Reason: "That email is already on another guest's seating row"}
			}
		}
	}

	g.GuestName = name
	if upd.Email != nil {
		g.Email = newEmail
	}
	result := &IdentityResult{Guest: g}

	var rsvp *models.RSVP
	if linked.RSVPID != 0 {
		for i := range rsvps {
			if rsvps[i].ID != linked.RSVPID {
				continue
			}
			r := rsvps[i]
			r.GuestName = name
			if identity.EmailKey(newEmail) != "" {
				r.Email = newEmail
			}
			rsvp = &r
			result.UpdatedRSVPs++
		}
	}
	var seat *models.SeatingAssignment
	if linked.SeatingID != 0 {
		for i := range seats {
			if seats[i].ID != linked.SeatingID {
				continue
			}
			a := seats[i]
			a.GuestName = name
			if upd.Email != nil {
				a.Email = identity.EmailKey(newEmail)
			}
			seat = &a
			result.UpdatedSeating++
		}
	}

	if err := s.store.UpdateGuestIdentity(ctx, *g, rsvp, seat); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ConflictError{Reason: "That email is already assigned to another guest"}
		}
		return nil, err
	}

	s.log.Info().Int64("id", g.ID).Str("guest", name).
		Int("rsvps", result.UpdatedRSVPs).Int("seating", result.UpdatedSeating).Msg("Updated guest identity")
	return result, nil
}
