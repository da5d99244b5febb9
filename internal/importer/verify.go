package importer

import (
	"context"
	"fmt"
	"sort"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/ledger"
)

// Audit lists where the three tables disagree.
type Audit struct {
	InvitedGuests int `json:"invited_guests"`
	RSVPs         int `json:"rsvps"`
	Seating       int `json:"seating_assignments"`

	// UnlinkedRSVPs answered but match no invited guest.
	UnlinkedRSVPs []string `json:"unlinked_rsvps,omitempty"`
	// MissingSeating are invited guests without a seating row.
	MissingSeating []string `json:"missing_seating,omitempty"`
	// OrphanSeating are seating rows that belong to no invited guest.
	OrphanSeating []string `json:"orphan_seating,omitempty"`
	// DuplicateNames share a canonical name with another invited guest.
	DuplicateNames []string `json:"duplicate_names,omitempty"`
	// OverAllowance confirmed more seats than their invitation allows.
	OverAllowance []string `json:"over_allowance,omitempty"`
	// OverfullTables maps a table to its occupancy when above capacity.
	OverfullTables map[int]int `json:"overfull_tables,omitempty"`
}

// Clean reports whether nothing needs attention.
func (a Audit) Clean() bool {
	return len(a.UnlinkedRSVPs) == 0 && len(a.MissingSeating) == 0 &&
		len(a.OrphanSeating) == 0 && len(a.DuplicateNames) == 0 &&
		len(a.OverAllowance) == 0 && len(a.OverfullTables) == 0
}

// Verify cross-checks invited guests, RSVPs and seating rows.
func (im *Importer) Verify(ctx context.Context, seatsPerTable int) (*Audit, error) {
	invited, err := im.store.ListInvitedGuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invited guests: %w", err)
	}
	rsvps, err := im.store.ListRSVPs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rsvps: %w", err)
	}
	seats, err := im.store.ListSeating(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load seating assignments: %w", err)
	}

	rows := ledger.Merge(invited, rsvps, seats)
	audit := &Audit{
		InvitedGuests: len(invited),
		RSVPs:         len(rsvps),
		Seating:       len(seats),
	}

	rsvpUsed := make(map[int64]bool)
	seatUsed := make(map[int64]bool)
	for _, r := range rows {
		if r.RSVPID != 0 {
			rsvpUsed[r.RSVPID] = true
		}
		if r.SeatingID != 0 {
			seatUsed[r.SeatingID] = true
		} else {
			audit.MissingSeating = append(audit.MissingSeating, r.GuestName)
		}
	}
	for _, r := range rsvps {
		if !rsvpUsed[r.ID] {
			audit.UnlinkedRSVPs = append(audit.UnlinkedRSVPs, r.GuestName)
		}
	}
	for _, s := range seats {
		if !seatUsed[s.ID] {
			audit.OrphanSeating = append(audit.OrphanSeating, s.GuestName)
		}
	}

	names := make(map[string]int)
	for _, g := range invited {
		names[identity.NormalizeName(g.GuestName)]++
	}
	for _, g := range invited {
		if names[identity.NormalizeName(g.GuestName)] > 1 {
			audit.DuplicateNames = append(audit.DuplicateNames, g.GuestName)
		}
	}
	sort.Strings(audit.DuplicateNames)

	for _, r := range ledger.OverAllowance(rows) {
		audit.OverAllowance = append(audit.OverAllowance, r.GuestName)
	}
	for table, n := range ledger.TableOccupancy(rows) {
		if n > seatsPerTable {
			if audit.OverfullTables == nil {
				audit.OverfullTables = make(map[int]int)
			}
			audit.OverfullTables[table] = n
		}
	}
	return audit, nil
}
