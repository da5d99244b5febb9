package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wedding-seating/internal/models"
)

// SourceMasterList tags guests that came from the master CSV.
const SourceMasterList = "@MASTERGUESTLIST.csv"

// Row is one guest line of the master list:
//
//	Number,Full Name,Notes,Headcount,RSVP Status,KIDENTOURAGE
//
// The older two-column export (guest_name,email) is read too.
type Row struct {
	Line         int
	Number       string
	GuestName    string
	Notes        string
	Headcount    int
	RSVPStatus   string
	KidEntourage bool
	email        string
}

// Email is the address found in the row, if any.
func (r Row) Email() string {
	if r.email != "" {
		return r.email
	}
	if strings.Contains(r.Notes, "@") {
		return strings.TrimSpace(r.Notes)
	}
	return ""
}

// Source builds the provenance string stored on the guest.
func (r Row) Source() string {
	parts := []string{SourceMasterList}
	if r.Notes != "" {
		parts = append(parts, r.Notes)
	}
	if r.KidEntourage {
		parts = append(parts, "KIDENTOURAGE")
	}
	return strings.Join(parts, " | ")
}

// InvitedGuest converts the row.
func (r Row) InvitedGuest() models.InvitedGuest {
	return models.InvitedGuest{
		GuestName:        r.GuestName,
		Email:            r.Email(),
		AllowedPartySize: r.Headcount,
		Source:           r.Source(),
	}
}

// ParseCSV reads the master list. The header line is skipped, as are lines
// without a name. A missing or invalid headcount becomes 1.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		rows   []Row
		header = true
		legacy bool
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if header {
			header = false
			legacy = len(rec) == 2
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}

		row := Row{Headcount: 1}
		row.Line, _ = cr.FieldPos(0)
		if legacy {
			row.GuestName = field(rec, 0)
			if e := field(rec, 1); strings.Contains(e, "@") {
				row.email = e
			}
		} else {
			row.Number = field(rec, 0)
			row.GuestName = field(rec, 1)
			row.Notes = field(rec, 2)
			if n, err := strconv.Atoi(field(rec, 3)); err == nil && n > 0 {
				row.Headcount = n
			}
			row.RSVPStatus = field(rec, 4)
			row.KidEntourage = strings.EqualFold(field(rec, 5), "yes")
		}
		if row.GuestName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
