// Package service implements the guest-facing and admin operations on top
// of the datastore. Every call reads fresh rows; nothing is cached.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"wedding-seating/internal/models"
	"wedding-seating/internal/seating"
)

// MaxPartySize bounds allowed_party_size and guest_count.
const MaxPartySize = 20

var (
	// ErrValidation marks bad caller input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a write that would duplicate a guest.
	ErrConflict = errors.New("guest already exists")
	// ErrNoRSVP is returned by the seating lookup for guests who never answered.
	ErrNoRSVP = errors.New("no RSVP found")
	// ErrNotSeated is returned by the seating lookup before a table is assigned.
	ErrNotSeated = errors.New("no seating assignment yet")
	// ErrAmbiguous is returned when a loose name matches more than one guest.
	ErrAmbiguous = errors.New("more than one guest matches")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ConflictError carries the guest a create or rename collided with.
type ConflictError struct {
	Reason   string
	Existing *models.InvitedGuest
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Store is the datastore the service works against.
type Store interface {
	ListInvitedGuests(ctx context.Context) ([]models.InvitedGuest, error)
	GetInvitedGuest(ctx context.Context, id int64) (*models.InvitedGuest, error)
	FindInvitedGuestByEmail(ctx context.Context, email string) (*models.InvitedGuest, error)
	FindInvitedGuestByName(ctx context.Context, name string) (*models.InvitedGuest, error)
	SearchInvitedGuests(ctx context.Context, prefix string, limit int) ([]models.InvitedGuest, error)
	CreateInvitedGuest(ctx context.Context, g *models.InvitedGuest) error
	UpdateGuestIdentity(ctx context.Context, g models.InvitedGuest, r *models.RSVP, a *models.SeatingAssignment) error
	UpdateAllowedPartySize(ctx context.Context, id int64, size int) error

	ListRSVPs(ctx context.Context) ([]models.RSVP, error)
	FindRSVPByEmail(ctx context.Context, email string) (*models.RSVP, error)
	FindRSVPByName(ctx context.Context, name string) (*models.RSVP, error)
	UpsertRSVP(ctx context.Context, r *models.RSVP) error
	UpdateRSVP(ctx context.Context, r *models.RSVP) error
	UpdateRSVPGuestCount(ctx context.Context, id int64, count int) error

	ListSeating(ctx context.Context) ([]models.SeatingAssignment, error)
	GetSeating(ctx context.Context, id int64) (*models.SeatingAssignment, error)
	UpdateSeating(ctx context.Context, a models.SeatingAssignment) error
}

// Options tunes the service.
type Options struct {
	MaxTables int
}

// Service serves RSVPs, lookups and admin edits.
type Service struct {
	store     Store
	maxTables int
	log       zerolog.Logger
}

// New creates a Service.
func New(store Store, opts Options, log zerolog.Logger) *Service {
	if opts.MaxTables <= 0 {
		opts.MaxTables = seating.MaxTables
	}
	return &Service{
		store:     store,
		maxTables: opts.MaxTables,
		log:       log.With().Str("component", "service").Logger(),
	}
}
