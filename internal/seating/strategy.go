// Package seating assigns attending, unseated guests to tables without
// exceeding table capacity and without moving anyone already seated.
package seating

import (
	"sort"

	"wedding-seating/internal/models"
)

const (
	// MaxTables is the number of tables in the venue.
	MaxTables = 26
	// SeatsPerTable is the capacity of one table.
	SeatsPerTable = 10

	// nearlyFull moves the cursor on once a table has fewer seats left.
	nearlyFull = 2
)

// Candidate is an attending guest as the allocator sees them.
type Candidate struct {
	GuestName   string
	Email       string
	GuestCount  int
	IsEntourage bool
	// TableNumber is the guest's current table, models.Unassigned if none.
	TableNumber int
	// SeatingID is the guest's existing seating row, 0 if none.
	SeatingID int64
}

// Seated reports whether the candidate already holds a table.
func (c Candidate) Seated() bool {
	return c.TableNumber > models.Unassigned
}

// Assignment is a newly planned seat.
type Assignment struct {
	GuestName   string `json:"guest_name"`
	Email       string `json:"email,omitempty"`
	SeatingID   int64  `json:"seating_id,omitempty"`
	TableNumber int    `json:"table_number"`
	GuestCount  int    `json:"guest_count"`
}

// Plan is what a Strategy decided.
type Plan struct {
	Assignments []Assignment
	// StoppedAt names the guest no table could take, "" if everyone fit.
	StoppedAt string
	// Unassigned lists every unseated guest left without a table.
	Unassigned []string
}

// Exhausted reports whether allocation stopped for lack of room.
func (p Plan) Exhausted() bool {
	return p.StoppedAt != ""
}

// Strategy packs candidates into tables. Candidates arrive in priority
// order and tables already carry the reservations of seated guests.
type Strategy interface {
	AssignCandidates(candidates []Candidate, tables *Tables) Plan
}

// Tables tracks the remaining capacity of tables 1..Count().
type Tables struct {
	remaining []int
	seats     int
}

// NewTables creates count tables of seats each.
func NewTables(count, seats int) *Tables {
	t := &Tables{remaining: make([]int, count+1), seats: seats}
	for i := 1; i <= count; i++ {
		t.remaining[i] = seats
	}
	return t
}

// Count returns the number of tables.
func (t *Tables) Count() int {
	return len(t.remaining) - 1
}

// Seats returns the capacity of one table.
func (t *Tables) Seats() int {
	return t.seats
}

// Remaining returns the free seats at table. Manual overrides can drive
// this below zero.
func (t *Tables) Remaining(table int) int {
	if table < 1 || table > t.Count() {
		return 0
	}
	return t.remaining[table]
}

// Reserve takes count seats at table. Tables out of range are ignored.
func (t *Tables) Reserve(table, count int) {
	if table < 1 || table > t.Count() {
		return
	}
	t.remaining[table] -= count
}

// Prioritize orders candidates entourage first, then by party size,
// largest first. Ties keep their input order.
func Prioritize(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsEntourage != b.IsEntourage {
			return a.IsEntourage
		}
		return a.GuestCount > b.GuestCount
	})
}

// FirstFit walks the tables with a cursor that only moves forward. A guest
// goes to the first table from the cursor with room for the whole party;
// once a table has fewer than two seats left the cursor moves on. When no
// table can take a guest, allocation stops for everyone after them.
type FirstFit struct{}

// AssignCandidates seats candidates in the order given, skipping those
// already at a table, and reserves each placed party on tables.
func (FirstFit) AssignCandidates(candidates []Candidate, tables *Tables) Plan {
	var plan Plan
	cursor := 1

	for i, c := range candidates {
		if c.Seated() {
			continue
		}

		for cursor <= tables.Count() && tables.Remaining(cursor) < c.GuestCount {
			cursor++
		}
		if cursor > tables.Count() {
			plan.StoppedAt = c.GuestName
			for _, rest := range candidates[i:] {
				if !rest.Seated() {
					plan.Unassigned = append(plan.Unassigned, rest.GuestName)
				}
			}
			break
		}

		plan.Assignments = append(plan.Assignments, Assignment{
			GuestName:   c.GuestName,
			Email:       c.Email,
			SeatingID:   c.SeatingID,
			TableNumber: cursor,
			GuestCount:  c.GuestCount,
		})
		tables.Reserve(cursor, c.GuestCount)

		if tables.Remaining(cursor) < nearlyFull {
			cursor++
		}
	}
	return plan
}
