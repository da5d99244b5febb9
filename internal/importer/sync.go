package importer

import (
	"context"
	"fmt"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
	"wedding-seating/internal/syncreport"
)

// BackfillEmails gives invited guests without a real address the email
// they answered their RSVP with. Names are compared with any "& Guest"
// suffix dropped.
func (im *Importer) BackfillEmails(ctx context.Context, dryRun bool) (syncreport.Report, error) {
	invited, err := im.store.ListInvitedGuests(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load invited guests: %w", err)
	}
	rsvps, err := im.store.ListRSVPs(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load rsvps: %w", err)
	}

	rep := syncreport.New("backfill-emails", im.log)
	for _, g := range invited {
		if identity.EmailKey(g.Email) != "" {
			continue
		}
		email := rsvpEmailFor(g, rsvps)
		if email == "" {
			continue
		}
		if dryRun {
			rep.Updated(g.GuestName)
			continue
		}
		g.Email = email
		rep.Track(g.GuestName, im.store.UpdateInvitedGuest(ctx, g), rep.Updated)
	}
	return rep.Report(), nil
}

// rsvpEmailFor returns the real email of the RSVP linked to g, or else of
// the first RSVP whose name matches.
func rsvpEmailFor(g models.InvitedGuest, rsvps []models.RSVP) string {
	for _, r := range rsvps {
		if r.InvitedGuestID != nil && *r.InvitedGuestID == g.ID {
			if key := identity.EmailKey(r.Email); key != "" {
				return key
			}
		}
	}
	for _, r := range rsvps {
		if identity.ModeSuffixInsensitive.Match(g.GuestName, r.GuestName) {
			if key := identity.EmailKey(r.Email); key != "" {
				return key
			}
		}
	}
	return ""
}

// SyncOptions controls SyncSeating.
type SyncOptions struct {
	// Cleanup deletes seating rows that belong to no invited guest.
	Cleanup bool
	DryRun  bool
}

// SyncSeating makes sure every invited guest has exactly one seating row.
// Rows are matched by email, then by name; names and emails are refreshed
// and table numbers are never touched.
func (im *Importer) SyncSeating(ctx context.Context, opts SyncOptions) (syncreport.Report, error) {
	invited, err := im.store.ListInvitedGuests(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load invited guests: %w", err)
	}
	seats, err := im.store.ListSeating(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load seating assignments: %w", err)
	}

	index := identity.NewIndex(seats, func(a models.SeatingAssignment) identity.Key {
		return identity.KeyOf(a.GuestName, a.Email)
	})
	claimed := make([]bool, len(seats))

	rep := syncreport.New("sync-seating", im.log)
	for _, g := range invited {
		email := identity.EmailKey(g.Email)
		i, ok := index.FindFunc(identity.KeyOf(g.GuestName, g.Email), func(i int) bool { return !claimed[i] })
		if !ok {
			row := models.SeatingAssignment{GuestName: g.GuestName, Email: email, TableNumber: models.Unassigned}
			if opts.DryRun {
				rep.Added(g.GuestName)
				continue
			}
			rep.Track(g.GuestName, im.store.CreateSeating(ctx, &row), rep.Added)
			continue
		}

		claimed[i] = true
		row := index.Get(i)
		if row.GuestName == g.GuestName && identity.EmailKey(row.Email) == email {
			continue
		}
		row.GuestName = g.GuestName
		row.Email = email
		if opts.DryRun {
			rep.Updated(g.GuestName)
			continue
		}
		rep.Track(g.GuestName, im.store.UpdateSeating(ctx, row), rep.Updated)
	}

	if opts.Cleanup {
		for i, row := range seats {
			if claimed[i] {
				continue
			}
			if opts.DryRun {
				rep.Deleted(row.GuestName)
				continue
			}
			rep.Track(row.GuestName, im.store.DeleteSeating(ctx, row.ID), rep.Deleted)
		}
	}
	return rep.Report(), nil
}
