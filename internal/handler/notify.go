package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wedding-seating/internal/ledger"
	"wedding-seating/internal/models"
	"wedding-seating/internal/syncreport"
	"wedding-seating/internal/whatsapp"
)

// NoticeSender delivers a table notice to a phone number.
type NoticeSender interface {
	SendSeatingNotice(phoneNumber, name string, table int, details whatsapp.WeddingDetails) error
}

// GuestLedger is the read side of the three guest tables.
type GuestLedger interface {
	ListInvitedGuests(ctx context.Context) ([]models.InvitedGuest, error)
	ListRSVPs(ctx context.Context) ([]models.RSVP, error)
	ListSeating(ctx context.Context) ([]models.SeatingAssignment, error)
}

// NotifyOptions narrows a notice run.
type NotifyOptions struct {
	// Table limits notices to one table; 0 means every table.
	Table  int
	DryRun bool
}

// SeatingNotifier messages attending, seated guests their table.
type SeatingNotifier struct {
	sender  NoticeSender
	ledger  GuestLedger
	details whatsapp.WeddingDetails
	log     zerolog.Logger
}

func NewSeatingNotifier(sender NoticeSender, guests GuestLedger, details whatsapp.WeddingDetails, log zerolog.Logger) *SeatingNotifier {
	return &SeatingNotifier{
		sender:  sender,
		ledger:  guests,
		details: details,
		log:     log.With().Str("component", "seating-notifier").Logger(),
	}
}

// Notify sends one notice per attending, seated guest with a phone number.
// In the returned report Added counts notices sent (or, on a dry run,
// notices that would be sent).
func (n *SeatingNotifier) Notify(ctx context.Context, opts NotifyOptions) (syncreport.Report, error) {
	invited, err := n.ledger.ListInvitedGuests(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load invited guests: %w", err)
	}
	rsvps, err := n.ledger.ListRSVPs(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load rsvps: %w", err)
	}
	seats, err := n.ledger.ListSeating(ctx)
	if err != nil {
		return syncreport.Report{}, fmt.Errorf("failed to load seating assignments: %w", err)
	}

	phones := make(map[int64]string, len(invited))
	for _, g := range invited {
		phones[g.ID] = g.Phone
	}

	rows := ledger.Merge(invited, rsvps, seats)
	ledger.SortForDisplay(rows)

	rep := syncreport.New("notify-seating", n.log)
	for _, row := range rows {
		if !row.IsAttending || row.TableNumber == models.Unassigned {
			continue
		}
		if opts.Table != 0 && row.TableNumber != opts.Table {
			continue
		}
		phone := phones[row.ID]
		if phone == "" {
			rep.Skipped(row.GuestName, "no phone number")
			continue
		}
		if opts.DryRun {
			rep.Added(row.GuestName)
			continue
		}
		err := n.sender.SendSeatingNotice(phone, row.GuestName, row.TableNumber, n.details)
		rep.Track(row.GuestName, err, rep.Added)
	}
	return rep.Report(), nil
}
