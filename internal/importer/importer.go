// Package importer reconciles the datastore with the master guest list and
// keeps the derived tables in step with it. Every pass is row by row: a
// failed row is reported and the pass moves on.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
	"wedding-seating/internal/syncreport"
)

// Policy decides who wins when a CSV row matches an existing guest.
type Policy int

const (
	// PreferCSV overwrites changed guests with the CSV values.
	PreferCSV Policy = iota
	// PreferExisting leaves matched guests alone.
	PreferExisting
)

func (p Policy) String() string {
	if p == PreferExisting {
		return "prefer-existing"
	}
	return "prefer-csv"
}

// ParsePolicy reads "prefer-csv" or "prefer-existing".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prefer-csv", "csv":
		return PreferCSV, nil
	case "prefer-existing", "existing":
		return PreferExisting, nil
	}
	return PreferCSV, fmt.Errorf("unknown import policy %q", s)
}

// Options controls an import.
type Options struct {
	Policy Policy
	DryRun bool
	// Prune deletes guests missing from the CSV and duplicate rows sharing
	// a name with the kept one.
	Prune bool
}

// Store is the datastore the importer works against.
type Store interface {
	ListInvitedGuests(ctx context.Context) ([]models.InvitedGuest, error)
	CreateInvitedGuest(ctx context.Context, g *models.InvitedGuest) error
	UpdateInvitedGuest(ctx context.Context, g models.InvitedGuest) error
	DeleteInvitedGuest(ctx context.Context, id int64) error

	ListRSVPs(ctx context.Context) ([]models.RSVP, error)

	ListSeating(ctx context.Context) ([]models.SeatingAssignment, error)
	CreateSeating(ctx context.Context, a *models.SeatingAssignment) error
	UpdateSeating(ctx context.Context, a models.SeatingAssignment) error
	DeleteSeating(ctx context.Context, id int64) error
}

// Importer runs the reconciliation passes.
type Importer struct {
	store Store
	log   zerolog.Logger
}

// New creates an Importer.
func New(store Store, log zerolog.Logger) *Importer {
	return &Importer{
		store: store,
		log:   log.With().Str("component", "importer").Logger(),
	}
}

// Import applies rows to invited_guests. Rows are matched on the canonical
// name. A name repeated in the CSV is imported once, from its first row.
func (im *Importer) Import(ctx context.Context, rows []Row, opts Options) (syncreport.Report, error) {
	existing, err := im.store.ListInvitedGuests(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load invited guests: %w", err)
	}
	byName := make(map[string][]models.InvitedGuest)
	for _, g := range existing {
		key := identity.NormalizeName(g.GuestName)
		byName[key] = append(byName[key], g)
	}

	im.log.Info().
		Int("rows", len(rows)).
		Int("existing", len(existing)).
		Str("policy", opts.Policy.String()).
		Bool("dry_run", opts.DryRun).
		Bool("prune", opts.Prune).
		Msg("Importing guest list")

	rep := syncreport.New("import", im.log)
	seen := make(map[string]bool, len(rows))
	keep := make(map[int64]bool, len(existing))

	for _, row := range rows {
		key := identity.NormalizeName(row.GuestName)
		if seen[key] {
			rep.Skipped(row.GuestName, fmt.Sprintf("duplicate name on line %d", row.Line))
			continue
		}
		seen[key] = true

		matches := byName[key]
		if len(matches) == 0 {
			g := row.InvitedGuest()
			if opts.DryRun {
				rep.Added(g.GuestName)
				continue
			}
			rep.Track(g.GuestName, im.store.CreateInvitedGuest(ctx, &g), rep.Added)
			continue
		}

		current := matches[0]
		keep[current.ID] = true
		if opts.Policy == PreferExisting {
			rep.Skipped(row.GuestName, "already invited")
			continue
		}

		next, changed := applyRow(current, row)
		if !changed {
			rep.Skipped(row.GuestName, "unchanged")
			continue
		}
		if opts.DryRun {
			rep.Updated(next.GuestName)
			continue
		}
		rep.Track(next.GuestName, im.store.UpdateInvitedGuest(ctx, next), rep.Updated)
	}

	if opts.Prune {
		for _, g := range existing {
			if keep[g.ID] {
				continue
			}
			if opts.DryRun {
				rep.Deleted(g.GuestName)
				continue
			}
			rep.Track(g.GuestName, im.store.DeleteInvitedGuest(ctx, g.ID), rep.Deleted)
		}
	}

	return rep.Report(), nil
}

// applyRow copies the CSV values onto g. An email already on file is kept
// when the CSV has none.
func applyRow(g models.InvitedGuest, row Row) (models.InvitedGuest, bool) {
	next := g
	next.GuestName = row.GuestName
	next.AllowedPartySize = row.Headcount
	next.Source = row.Source()
	if email := row.Email(); email != "" {
		next.Email = email
	}
	changed := next.GuestName != g.GuestName ||
		next.AllowedPartySize != g.AllowedPartySize ||
		next.Source != g.Source ||
		identity.NormalizeEmail(next.Email) != identity.NormalizeEmail(g.Email)
	return next, changed
}
