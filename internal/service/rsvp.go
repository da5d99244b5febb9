package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
	"wedding-seating/internal/storage"
)

// RSVPRequest is a guest's submitted answer.
type RSVPRequest struct {
	GuestName           string            `json:"guest_name"`
	Email               string            `json:"email"`
	Attendance          models.Attendance `json:"attendance"`
	GuestCount          int               `json:"guest_count"`
	DietaryRestrictions string            `json:"dietary_restrictions"`
	SpecialMessage      string            `json:"special_message"`
	WalletAddress       string            `json:"wallet_address"`
}

// RSVPResult is the stored RSVP plus how it was reconciled.
type RSVPResult struct {
	RSVP    *models.RSVP `json:"rsvp"`
	Created bool         `json:"created"`
	// MatchedBy is "email", "name" or "" for a new RSVP.
	MatchedBy string `json:"matched_by,omitempty"`
}

func (r *RSVPRequest) normalize() error {
	r.GuestName = strings.TrimSpace(r.GuestName)
	r.Email = strings.TrimSpace(r.Email)
	r.Attendance = models.Attendance(strings.ToLower(strings.TrimSpace(string(r.Attendance))))

	if r.GuestName == "" {
		return validationError("guest_name is required")
	}
	if r.Attendance == "" {
		return validationError("attendance is required")
	}
	if !r.Attendance.Valid() {
		return validationError(`attendance must be "yes" or "no"`)
	}
	if r.GuestCount == 0 {
		r.GuestCount = 1
	}
	if r.GuestCount < 1 || r.GuestCount > MaxPartySize {
		return validationError("guest_count must be between 1 and %d", MaxPartySize)
	}
	return nil
}

// SubmitRSVP validates req, links it to the invited guest (by email, then
// by name) and stores it. A guest has at most one RSVP: an earlier answer
// found by email, then by name, is overwritten.
func (s *Service) SubmitRSVP(ctx context.Context, req RSVPRequest) (*RSVPResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	email := identity.NormalizeEmail(req.Email)
	if email == "" {
		email = identity.PlaceholderEmail(req.GuestName)
	}

	invited, err := s.findInvitedGuest(ctx, req.GuestName, req.Email)
	if err != nil {
		return nil, err
	}

	rsvp := &models.RSVP{
		GuestName:           req.GuestName,
		Email:               email,
		Attendance:          req.Attendance,
		GuestCount:          req.GuestCount,
		DietaryRestrictions: req.DietaryRestrictions,
		SpecialMessage:      req.SpecialMessage,
		WalletAddress:       req.WalletAddress,
	}
	if invited != nil {
		rsvp.InvitedGuestID = &invited.ID
	} else {
		s.log.Warn().Str("guest", req.GuestName).Msg("No matching invited guest; storing RSVP without a link")
	}

	existing, matchedBy, err := s.findExistingRSVP(ctx, req.GuestName, email)
	if err != nil {
		return nil, err
	}

	result := &RSVPResult{RSVP: rsvp, MatchedBy: matchedBy}
	if existing != nil {
		rsvp.ID = existing.ID
		if err := s.store.UpdateRSVP(ctx, rsvp); err != nil {
			return nil, fmt.Errorf("failed to update rsvp: %w", err)
		}
		s.log.Info().Int64("rsvp_id", rsvp.ID).Str("matched_by", matchedBy).
			Str("attendance", string(rsvp.Attendance)).Msg("Updated existing RSVP")
		return result, nil
	}

	if err := s.store.UpsertRSVP(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("failed to save rsvp: %w", err)
	}
	result.Created = true
	s.log.Info().Int64("rsvp_id", rsvp.ID).Str("attendance", string(rsvp.Attendance)).Msg("Created RSVP")
	return result, nil
}

// findInvitedGuest resolves a guest by real email first, then by name. It
// returns nil without error when nobody matches.
func (s *Service) findInvitedGuest(ctx context.Context, name, email string) (*models.InvitedGuest, error) {
	if identity.EmailKey(email) != "" {
		g, err := s.store.FindInvitedGuestByEmail(ctx, email)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	g, err := s.store.FindInvitedGuestByName(ctx, name)
	if err == nil {
		return g, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

func (s *Service) findExistingRSVP(ctx context.Context, name, email string) (*models.RSVP, string, error) {
	r, err := s.store.FindRSVPByEmail(ctx, email)
	if err == nil {
		return r, "email", nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, "", err
	}

	r, err = s.store.FindRSVPByName(ctx, name)
	if err == nil {
		return r, "name", nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", nil
	}
	return nil, "", err
}

// RSVPStats is the headcount per answer.
type RSVPStats struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Total int `json:"total"`
}

// RSVPStats sums guest_count per attendance answer. A missing count
// counts as one.
func (s *Service) RSVPStats(ctx context.Context) (RSVPStats, error) {
	var stats RSVPStats
	rsvps, err := s.store.ListRSVPs(ctx)
	if err != nil {
		return stats, err
	}
	for _, r := range rsvps {
		n := r.GuestCount
		if n <= 0 {
			n = 1
		}
		switch r.Attendance {
		case models.AttendanceYes:
			stats.Yes += n
		case models.AttendanceNo:
			stats.No += n
		}
		stats.Total += n
	}
	return stats, nil
}

// RSVPs lists every stored answer.
func (s *Service) RSVPs(ctx context.Context) ([]models.RSVP, error) {
	return s.store.ListRSVPs(ctx)
}
