// Package syncreport counts the outcome of bulk reconciliation passes.
// Passes are not atomic: a failed row is recorded and the pass moves on.
package syncreport

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// RowError names the guest a row failed for and why.
type RowError struct {
	Guest   string `json:"guest"`
	Message string `json:"message"`
}

// Report is the per-pass tally.
type Report struct {
	Added   int        `json:"added"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Deleted int        `json:"deleted"`
	Errors  []RowError `json:"errors,omitempty"`
}

// Failed returns the number of rows that errored.
func (r Report) Failed() int {
	return len(r.Errors)
}

// Summary renders the one-line operator summary.
func (r Report) Summary() string {
	return fmt.Sprintf("added=%d updated=%d skipped=%d deleted=%d errors=%d",
		r.Added, r.Updated, r.Skipped, r.Deleted, len(r.Errors))
}

// String renders the summary followed by one line per error.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.Summary())
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  - %s: %s", e.Guest, e.Message)
	}
	return b.String()
}

// Merge adds other's counts into r.
func (r *Report) Merge(other Report) {
	r.Added += other.Added
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Deleted += other.Deleted
	r.Errors = append(r.Errors, other.Errors...)
}

// Reporter records row outcomes for one pass and logs each of them.
type Reporter struct {
	pass   string
	log    zerolog.Logger
	report Report
}

// New starts a report for the named pass.
func New(pass string, log zerolog.Logger) *Reporter {
	return &Reporter{
		pass: pass,
		log:  log.With().Str("pass", pass).Logger(),
	}
}

// Added counts a row created for guest.
func (r *Reporter) Added(guest string) {
	r.report.Added++
	r.log.Debug().Str("guest", guest).Msg("added")
}

// Updated counts an existing row changed for guest.
func (r *Reporter) Updated(guest string) {
	r.report.Updated++
	r.log.Debug().Str("guest", guest).Msg("updated")
}

// Skipped counts guest as left alone and logs why.
func (r *Reporter) Skipped(guest, reason string) {
	r.report.Skipped++
	r.log.Debug().Str("guest", guest).Str("reason", reason).Msg("skipped")
}

// Deleted counts a row removed for guest.
func (r *Reporter) Deleted(guest string) {
	r.report.Deleted++
	r.log.Debug().Str("guest", guest).Msg("deleted")
}

// Failed records err for guest. It never retries.
func (r *Reporter) Failed(guest string, err error) {
	r.report.Errors = append(r.report.Errors, RowError{Guest: guest, Message: err.Error()})
	r.log.Error().Err(err).Str("guest", guest).Msg("row failed")
}

// Track records an outcome based on err: Failed when err is non-nil,
// otherwise ok is called.
func (r *Reporter) Track(guest string, err error, ok func(string)) {
	if err != nil {
		r.Failed(guest, err)
		return
	}
	ok(guest)
}

// Report closes the pass, logs the summary and returns the tally.
func (r *Reporter) Report() Report {
	ev := r.log.Info()
	if len(r.report.Errors) > 0 {
		ev = r.log.Warn()
	}
	ev.Int("added", r.report.Added).
		Int("updated", r.report.Updated).
		Int("skipped", r.report.Skipped).
		Int("deleted", r.report.Deleted).
		Int("errors", len(r.report.Errors)).
		Msg("pass complete")
	return r.report
}
