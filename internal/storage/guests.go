package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
)

const invitedColumns = `id, guest_name, email, allowed_party_size, is_entourage, source, special_notes, phone, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitedGuest(row rowScanner) (models.InvitedGuest, error) {
	var g models.InvitedGuest
	err := row.Scan(&g.ID, &g.GuestName, &g.Email, &g.AllowedPartySize, &g.IsEntourage,
		&g.Source, &g.SpecialNotes, &g.Phone, &g.CreatedAt)
	return g, err
}

func (s *Store) queryInvitedGuests(ctx context.Context, q querier, query string, args ...any) ([]models.InvitedGuest, error) {
	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := make([]models.InvitedGuest, 0)
	for rows.Next() {
		g, err := scanInvitedGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

// ListInvitedGuests returns every invited guest in insertion order.
func (s *Store) ListInvitedGuests(ctx context.Context) ([]models.InvitedGuest, error) {
	guests, err := s.queryInvitedGuests(ctx, s.db,
		`SELECT `+invitedColumns+` FROM invited_guests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invited guests: %w", err)
	}
	return guests, nil
}

// GetInvitedGuest returns the guest with id.
func (s *Store) GetInvitedGuest(ctx context.Context, id int64) (*models.InvitedGuest, error) {
	return s.findInvitedGuest(ctx, "id = ?", id)
}

// FindInvitedGuestByEmail matches on the normalized address. Placeholder
// addresses never match.
func (s *Store) FindInvitedGuestByEmail(ctx context.Context, email string) (*models.InvitedGuest, error) {
	key := identity.EmailKey(email)
	if key == "" {
		return nil, ErrNotFound
	}
	return s.findInvitedGuest(ctx, "email_key = ?", key)
}

// FindInvitedGuestByName matches on the canonical name key. With several
// matches the oldest row wins.
func (s *Store) FindInvitedGuestByName(ctx context.Context, name string) (*models.InvitedGuest, error) {
	key := identity.NormalizeName(name)
	if key == "" {
		return nil, ErrNotFound
	}
	return s.findInvitedGuest(ctx, "name_key = ?", key)
}

// FindInvitedGuestByPhone matches a phone number in the form
// whatsapp.NormalizePhoneNumber produces.
func (s *Store) FindInvitedGuestByPhone(ctx context.Context, phone string) (*models.InvitedGuest, error) {
	if phone == "" {
		return nil, ErrNotFound
	}
	return s.findInvitedGuest(ctx, "phone = ?", phone)
}

func (s *Store) findInvitedGuest(ctx context.Context, where string, arg any) (*models.InvitedGuest, error) {
	query := s.rebind(`SELECT ` + invitedColumns + ` FROM invited_guests WHERE ` + where + ` ORDER BY id LIMIT 1`)
	g, err := scanInvitedGuest(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("failed to find invited guest: %w", mapError(err))
	}
	return &g, nil
}

// SearchInvitedGuests returns guests whose canonical name starts with
// prefix, ordered by name.
func (s *Store) SearchInvitedGuests(ctx context.Context, prefix string, limit int) ([]models.InvitedGuest, error) {
	key := identity.NormalizeName(prefix)
	if key == "" {
		return []models.InvitedGuest{}, nil
	}
	guests, err := s.queryInvitedGuests(ctx, s.db,
		`SELECT `+invitedColumns+` FROM invited_guests
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY name_key, id
		LIMIT ?`, escapeLike(key)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search invited guests: %w", err)
	}
	return guests, nil
}

// CreateInvitedGuest inserts g and fills in its ID and CreatedAt.
func (s *Store) CreateInvitedGuest(ctx context.Context, g *models.InvitedGuest) error {
	return s.createInvitedGuest(ctx, s.db, g)
}

func (s *Store) createInvitedGuest(ctx context.Context, q querier, g *models.InvitedGuest) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.AllowedPartySize <= 0 {
		g.AllowedPartySize = 1
	}
	query := s.rebind(`INSERT INTO invited_guests
		(guest_name, name_key, email, email_key, allowed_party_size, is_entourage, source, special_notes, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := q.QueryRowContext(ctx, query,
		g.GuestName, identity.NormalizeName(g.GuestName),
		g.Email, identity.EmailKey(g.Email),
		g.AllowedPartySize, g.IsEntourage, g.Source, g.SpecialNotes, g.Phone, g.CreatedAt,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("failed to create invited guest: %w", mapError(err))
	}
	return nil
}

// UpdateInvitedGuest overwrites every mutable column of the row g.ID.
func (s *Store) UpdateInvitedGuest(ctx context.Context, g models.InvitedGuest) error {
	return s.updateInvitedGuest(ctx, s.db, g)
}

func (s *Store) updateInvitedGuest(ctx context.Context, q querier, g models.InvitedGuest) error {
	query := s.rebind(`UPDATE invited_guests SET
		guest_name = ?, name_key = ?, email = ?, email_key = ?, allowed_party_size = ?,
		is_entourage = ?, source = ?, special_notes = ?, phone = ?
		WHERE id = ?`)
	res, err := q.ExecContext(ctx, query,
		g.GuestName, identity.NormalizeName(g.GuestName),
		g.Email, identity.EmailKey(g.Email),
		g.PartySize(), g.IsEntourage, g.Source, g.SpecialNotes, g.Phone, g.ID)
	if err != nil {
		return fmt.Errorf("failed to update invited guest: %w", mapError(err))
	}
	return expectOne(res, "failed to update invited guest")
}

// UpdateAllowedPartySize changes how many seats the invitation covers.
func (s *Store) UpdateAllowedPartySize(ctx context.Context, id int64, size int) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE invited_guests SET allowed_party_size = ? WHERE id = ?`), size, id)
	if err != nil {
		return fmt.Errorf("failed to update party size: %w", err)
	}
	return expectOne(res, "failed to update party size")
}

// DeleteInvitedGuest removes the row id.
func (s *Store) DeleteInvitedGuest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM invited_guests WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete invited guest: %w", err)
	}
	return expectOne(res, "failed to delete invited guest")
}

func expectOne(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
