package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/ledger"
	"wedding-seating/internal/models"
)

// Autocomplete limits.
const (
	minQueryLen         = 2
	defaultSuggestLimit = 10
	maxSuggestLimit     = 20
)

// SeatingLookup is what a guest sees about their own table.
type SeatingLookup struct {
	GuestName   string `json:"guest_name"`
	TableNumber int    `json:"table_number"`
	GuestCount  int    `json:"guest_count"`
}

// LookupSeating finds a guest's table. Email is matched exactly; a name is
// matched loosely, preferring an exact name over a substring hit.
func (s *Service) LookupSeating(ctx context.Context, email, name string) (*SeatingLookup, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" && name == "" {
		return nil, validationError("email or name parameter is required")
	}

	rows, rsvps, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	var row *models.ReconciledGuest
	if email != "" {
		row = findByEmail(rows, rsvps, email)
	} else {
		row, err = findByName(rows, name)
		if err != nil {
			return nil, err
		}
	}

	if row == nil || (!row.HasRSVP && !row.IsEntourage) {
		return nil, ErrNoRSVP
	}
	if row.TableNumber == models.Unassigned {
		return nil, ErrNotSeated
	}
	return &SeatingLookup{
		GuestName:   row.GuestName,
		TableNumber: row.TableNumber,
		GuestCount:  row.ActualGuestCount,
	}, nil
}

func (s *Service) reconcile(ctx context.Context) ([]models.ReconciledGuest, []models.RSVP, error) {
	invited, err := s.store.ListInvitedGuests(ctx)
	if err != nil {
		return nil, nil, err
	}
	rsvps, err := s.store.ListRSVPs(ctx)
	if err != nil {
		return nil, nil, err
	}
	seats, err := s.store.ListSeating(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ledger.Merge(invited, rsvps, seats), rsvps, nil
}

// findByEmail matches the invited guest's address, then the address the
// guest answered the RSVP with.
func findByEmail(rows []models.ReconciledGuest, rsvps []models.RSVP, email string) *models.ReconciledGuest {
	key := identity.NormalizeEmail(email)
	for i := range rows {
		if identity.NormalizeEmail(rows[i].Email) == key {
			return &rows[i]
		}
	}
	for _, r := range rsvps {
		if identity.NormalizeEmail(r.Email) != key {
			continue
		}
		for i := range rows {
			if rows[i].RSVPID == r.ID {
				return &rows[i]
			}
		}
	}
	return nil
}

func findByName(rows []models.ReconciledGuest, name string) (*models.ReconciledGuest, error) {
	for i := range rows {
		if identity.ModeExact.Match(name, rows[i].GuestName) {
			return &rows[i], nil
		}
	}

	var hit *models.ReconciledGuest
	for i := range rows {
		if !identity.ModeContains.Match(name, rows[i].GuestName) {
			continue
		}
		if hit != nil {
			return nil, ErrAmbiguous
		}
		hit = &rows[i]
	}
	return hit, nil
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	ID               int64  `json:"id"`
	GuestName        string `json:"guest_name"`
	Email            string `json:"email,omitempty"`
	AllowedPartySize int    `json:"allowed_party_size"`
	DisplayName      string `json:"display_name"`
}

// Autocomplete returns invited guests whose name starts with query.
// limit defaults to 10 and is capped at 20.
func (s *Service) Autocomplete(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil, validationError("query must be at least %d characters", minQueryLen)
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	guests, err := s.store.SearchInvitedGuests(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(guests))
	for _, g := range guests {
		email := g.Email
		if identity.IsPlaceholderEmail(email) {
			email = ""
		}
		out = append(out, Suggestion{
			ID:               g.ID,
			GuestName:        g.GuestName,
			Email:            email,
			AllowedPartySize: g.PartySize(),
			DisplayName:      g.GuestName,
		})
	}
	return out, nil
}
