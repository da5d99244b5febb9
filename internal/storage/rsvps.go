package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
)

const rsvpColumns = `id, invited_guest_id, guest_name, email, attendance, guest_count,
	dietary_restrictions, special_message, wallet_address, updated_at`

func scanRSVP(row rowScanner) (models.RSVP, error) {
	var (
		r       models.RSVP
		invited sql.NullInt64
	)
	err := row.Scan(&r.ID, &invited, &r.GuestName, &r.Email, &r.Attendance, &r.GuestCount,
		&r.DietaryRestrictions, &r.SpecialMessage, &r.WalletAddress, &r.UpdatedAt)
	if invited.Valid {
		id := invited.Int64
		r.InvitedGuestID = &id
	}
	return r, err
}

// ListRSVPs returns every RSVP in insertion order.
func (s *Store) ListRSVPs(ctx context.Context) ([]models.RSVP, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rsvpColumns+` FROM rsvps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer rows.Close()

	rsvps := make([]models.RSVP, 0)
	for rows.Next() {
		r, err := scanRSVP(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvps = append(rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rsvps, nil
}

// FindRSVPByEmail matches the stored, normalized address. Placeholder
// addresses are real keys here.
func (s *Store) FindRSVPByEmail(ctx context.Context, email string) (*models.RSVP, error) {
	e := identity.NormalizeEmail(email)
	if e == "" {
		return nil, ErrNotFound
	}
	return s.findRSVP(ctx, "email = ?", e)
}

// FindRSVPByName matches on the canonical name key.
func (s *Store) FindRSVPByName(ctx context.Context, name string) (*models.RSVP, error) {
	key := identity.NormalizeName(name)
	if key == "" {
		return nil, ErrNotFound
	}
	return s.findRSVP(ctx, "name_key = ?", key)
}

func (s *Store) findRSVP(ctx context.Context, where string, arg any) (*models.RSVP, error) {
	query := s.rebind(`SELECT ` + rsvpColumns + ` FROM rsvps WHERE ` + where + ` ORDER BY id LIMIT 1`)
	r, err := scanRSVP(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("failed to find rsvp: %w", mapError(err))
	}
	return &r, nil
}

// UpsertRSVP inserts r, or replaces the RSVP that already holds r.Email.
// r.ID and r.UpdatedAt are filled in.
func (s *Store) UpsertRSVP(ctx context.Context, r *models.RSVP) error {
	r.Email = identity.NormalizeEmail(r.Email)
	r.UpdatedAt = time.Now().UTC()
	query := s.rebind(`INSERT INTO rsvps
		(invited_guest_id, guest_name, name_key, email, attendance, guest_count,
		 dietary_restrictions, special_message, wallet_address, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			invited_guest_id = COALESCE(excluded.invited_guest_id, rsvps.invited_guest_id),
			guest_name = excluded.guest_name,
			name_key = excluded.name_key,
			attendance = excluded.attendance,
			guest_count = excluded.guest_count,
			dietary_restrictions = excluded.dietary_restrictions,
			special_message = excluded.special_message,
			wallet_address = excluded.wallet_address,
			updated_at = excluded.updated_at
		RETURNING id`)
	err := s.db.QueryRowContext(ctx, query,
		nullableID(r.InvitedGuestID), r.GuestName, identity.NormalizeName(r.GuestName), r.Email,
		string(r.Attendance), r.GuestCount, r.DietaryRestrictions, r.SpecialMessage, r.WalletAddress,
		r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp: %w", mapError(err))
	}
	return nil
}

// UpdateRSVP overwrites the RSVP r.ID, including its email.
func (s *Store) UpdateRSVP(ctx context.Context, r *models.RSVP) error {
	return s.updateRSVP(ctx, s.db, r)
}

func (s *Store) updateRSVP(ctx context.Context, q querier, r *models.RSVP) error {
	r.Email = identity.NormalizeEmail(r.Email)
	r.UpdatedAt = time.Now().UTC()
	query := s.rebind(`UPDATE rsvps SET
		invited_guest_id = COALESCE(?, invited_guest_id), guest_name = ?, name_key = ?, email = ?,
		attendance = ?, guest_count = ?, dietary_restrictions = ?, special_message = ?,
		wallet_address = ?, updated_at = ?
		WHERE id = ?`)
	res, err := q.ExecContext(ctx, query,
		nullableID(r.InvitedGuestID), r.GuestName, identity.NormalizeName(r.GuestName), r.Email,
		string(r.Attendance), r.GuestCount, r.DietaryRestrictions, r.SpecialMessage,
		r.WalletAddress, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update rsvp: %w", mapError(err))
	}
	return expectOne(res, "failed to update rsvp")
}

// UpdateRSVPGuestCount changes the confirmed party size of RSVP id.
func (s *Store) UpdateRSVPGuestCount(ctx context.Context, id int64, count int) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE rsvps SET guest_count = ?, updated_at = ? WHERE id = ?`),
		count, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update rsvp guest count: %w", err)
	}
	return expectOne(res, "failed to update rsvp guest count")
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
