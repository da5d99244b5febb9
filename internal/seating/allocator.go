package seating

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wedding-seating/internal/ledger"
	"wedding-seating/internal/lock"
	"wedding-seating/internal/models"
	"wedding-seating/internal/syncreport"
)

const lockKey = "seating:auto-assign"

// Store is the datastore the allocator reads from and writes to.
type Store interface {
	ListInvitedGuests(ctx context.Context) ([]models.InvitedGuest, error)
	ListRSVPs(ctx context.Context) ([]models.RSVP, error)
	ListSeating(ctx context.Context) ([]models.SeatingAssignment, error)
	// ApplyAssignments updates rows with an ID in place and inserts the
	// rest, all in one transaction.
	ApplyAssignments(ctx context.Context, rows []models.SeatingAssignment) (inserted, updated int, err error)
}

// Options tunes the allocator. Zero values fall back to the defaults.
type Options struct {
	MaxTables     int
	SeatsPerTable int
	Strategy      Strategy
	LockTTL       time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxTables <= 0 {
		o.MaxTables = MaxTables
	}
	if o.SeatsPerTable <= 0 {
		o.SeatsPerTable = SeatsPerTable
	}
	if o.Strategy == nil {
		o.Strategy = FirstFit{}
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Minute
	}
	return o
}

// Result describes one allocation pass. Running out of tables is reported
// here, never as an error.
type Result struct {
	// CandidateCount is the number of attending guests without a table.
	CandidateCount int               `json:"candidate_count"`
	AssignedCount  int               `json:"assigned_count"`
	AlreadySeated  int               `json:"already_seated"`
	Exhausted      bool              `json:"exhausted"`
	StoppedAt      string            `json:"stopped_at,omitempty"`
	Unassigned     []string          `json:"unassigned,omitempty"`
	Assignments    []Assignment      `json:"assignments"`
	DryRun         bool              `json:"dry_run"`
	Report         syncreport.Report `json:"report"`
	Remaining      map[int]int       `json:"remaining_capacity"`
}

// Allocator runs the read, plan, write cycle.
type Allocator struct {
	store  Store
	locker lock.Locker
	opts   Options
	log    zerolog.Logger
}

// NewAllocator creates an Allocator. A nil locker means an in-process lock.
func NewAllocator(store Store, locker lock.Locker, opts Options, log zerolog.Logger) *Allocator {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Allocator{
		store:  store,
		locker: locker,
		opts:   opts.withDefaults(),
		log:    log.With().Str("component", "allocator").Logger(),
	}
}

// Run reads the guest tables fresh, plans seats for everyone attending and
// unseated, and unless dryRun persists the plan. It returns lock.ErrLocked
// when another run is in progress.
func (a *Allocator) Run(ctx context.Context, dryRun bool) (*Result, error) {
	release, err := a.locker.Acquire(ctx, lockKey, a.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	a.log.Info().Bool("dry_run", dryRun).Msg("Starting auto-assign seats run")

	invited, err := a.store.ListInvitedGuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invited guests: %w", err)
	}
	rsvps, err := a.store.ListRSVPs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rsvps: %w", err)
	}
	seats, err := a.store.ListSeating(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load seating assignments: %w", err)
	}

	result := a.Plan(ledger.Merge(invited, rsvps, seats))
	result.DryRun = dryRun

	if result.Exhausted {
		a.log.Warn().
			Str("guest", result.StoppedAt).
			Int("unassigned", len(result.Unassigned)).
			Msg("No table has room left; stopping allocation")
	}

	if dryRun || len(result.Assignments) == 0 {
		a.log.Info().Int("assigned", result.AssignedCount).Msg("Auto-assign run finished without writes")
		return result, nil
	}

	rows := make([]models.SeatingAssignment, len(result.Assignments))
	for i, as := range result.Assignments {
		rows[i] = models.SeatingAssignment{
			ID:          as.SeatingID,
			GuestName:   as.GuestName,
			Email:       as.Email,
			TableNumber: as.TableNumber,
		}
	}
	if _, _, err := a.store.ApplyAssignments(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to save seating assignments: %w", err)
	}

	rep := syncreport.New("auto-assign", a.log)
	for _, as := range result.Assignments {
		if as.SeatingID > 0 {
			rep.Updated(as.GuestName)
		} else {
			rep.Added(as.GuestName)
		}
	}
	for _, name := range result.Unassigned {
		rep.Skipped(name, "no table with room")
	}
	result.Report = rep.Report()

	a.log.Info().Int("assigned", result.AssignedCount).Msg("Successfully assigned guests")
	return result, nil
}

// Plan decides seats for merged rows without touching the store.
func (a *Allocator) Plan(rows []models.ReconciledGuest) *Result {
	candidates := Candidates(rows)
	tables := NewTables(a.opts.MaxTables, a.opts.SeatsPerTable)

	result := &Result{Assignments: []Assignment{}}
	for _, c := range candidates {
		if c.Seated() {
			result.AlreadySeated++
			// seated guests keep their table even past capacity
			tables.Reserve(c.TableNumber, c.GuestCount)
		} else {
			result.CandidateCount++
		}
	}

	Prioritize(candidates)
	plan := a.opts.Strategy.AssignCandidates(candidates, tables)

	if plan.Assignments != nil {
		result.Assignments = plan.Assignments
	}
	result.AssignedCount = len(plan.Assignments)
	result.Exhausted = plan.Exhausted()
	result.StoppedAt = plan.StoppedAt
	result.Unassigned = plan.Unassigned
	result.Remaining = make(map[int]int, tables.Count())
	for i := 1; i <= tables.Count(); i++ {
		result.Remaining[i] = tables.Remaining(i)
	}
	return result
}

// Candidates turns the attending rows into allocator candidates.
func Candidates(rows []models.ReconciledGuest) []Candidate {
	var out []Candidate
	for _, r := range ledger.Attending(rows) {
		out = append(out, Candidate{
			GuestName:   r.GuestName,
			Email:       r.Email,
			GuestCount:  r.ActualGuestCount,
			IsEntourage: r.IsEntourage,
			TableNumber: r.TableNumber,
			SeatingID:   r.SeatingID,
		})
	}
	return out
}
