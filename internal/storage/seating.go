package storage

import (
	"context"
	"database/sql"
	"fmt"

	"wedding-seating/internal/identity"
	"wedding-seating/internal/models"
)

const seatingColumns = `id, guest_name, email, table_number, seat_number, plus_one_name, dietary_notes, special_notes`

func scanSeating(row rowScanner) (models.SeatingAssignment, error) {
	var (
		a    models.SeatingAssignment
		seat sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.GuestName, &a.Email, &a.TableNumber, &seat,
		&a.PlusOneName, &a.DietaryNotes, &a.SpecialNotes)
	if seat.Valid {
		n := int(seat.Int64)
		a.SeatNumber = &n
	}
	return a, err
}

// ListSeating returns every seating row in insertion order.
func (s *Store) ListSeating(ctx context.Context) ([]models.SeatingAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+seatingColumns+` FROM seating_assignments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seating assignments: %w", err)
	}
	defer rows.Close()

	out := make([]models.SeatingAssignment, 0)
	for rows.Next() {
		a, err := scanSeating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seating assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list seating assignments: %w", err)
	}
	return out, nil
}

// GetSeating returns the seating row id.
func (s *Store) GetSeating(ctx context.Context, id int64) (*models.SeatingAssignment, error) {
	query := s.rebind(`SELECT ` + seatingColumns + ` FROM seating_assignments WHERE id = ?`)
	a, err := scanSeating(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get seating assignment: %w", mapError(err))
	}
	return &a, nil
}

// CreateSeating inserts a and fills in its ID.
func (s *Store) CreateSeating(ctx context.Context, a *models.SeatingAssignment) error {
	return s.createSeating(ctx, s.db, a)
}

func (s *Store) createSeating(ctx context.Context, q querier, a *models.SeatingAssignment) error {
	query := s.rebind(`INSERT INTO seating_assignments
		(guest_name, name_key, email, table_number, seat_number, plus_one_name, dietary_notes, special_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := q.QueryRowContext(ctx, query,
		a.GuestName, identity.NormalizeName(a.GuestName), a.Email, a.TableNumber,
		nullableSeat(a.SeatNumber), a.PlusOneName, a.DietaryNotes, a.SpecialNotes,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create seating assignment: %w", mapError(err))
	}
	return nil
}

// UpdateSeating overwrites every column of the row a.ID.
func (s *Store) UpdateSeating(ctx context.Context, a models.SeatingAssignment) error {
	return s.updateSeating(ctx, s.db, a)
}

func (s *Store) updateSeating(ctx context.Context, q querier, a models.SeatingAssignment) error {
	query := s.rebind(`UPDATE seating_assignments SET
		guest_name = ?, name_key = ?, email = ?, table_number = ?, seat_number = ?,
		plus_one_name = ?, dietary_notes = ?, special_notes = ?
		WHERE id = ?`)
	res, err := q.ExecContext(ctx, query,
		a.GuestName, identity.NormalizeName(a.GuestName), a.Email, a.TableNumber,
		nullableSeat(a.SeatNumber), a.PlusOneName, a.DietaryNotes, a.SpecialNotes, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update seating assignment: %w", err)
	}
	return expectOne(res, "failed to update seating assignment")
}

// UpdateGuestIdentity writes a renamed invited guest together with its
// matched RSVP and seating row, either of which may be nil. Nothing is
// written unless every update succeeds.
func (s *Store) UpdateGuestIdentity(ctx context.Context, g models.InvitedGuest, r *models.RSVP, a *models.SeatingAssignment) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.updateInvitedGuest(ctx, tx, g); err != nil {
			return err
		}
		if r != nil {
			if err := s.updateRSVP(ctx, tx, r); err != nil {
				return err
			}
		}
		if a != nil {
			if err := s.updateSeating(ctx, tx, *a); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSeating removes the row id.
func (s *Store) DeleteSeating(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM seating_assignments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete seating assignment: %w", err)
	}
	return expectOne(res, "failed to delete seating assignment")
}

// ApplyAssignments writes an allocator plan in one transaction. Rows with
// an ID only get their table number changed; the rest are inserted. Any
// failure rolls the whole plan back.
func (s *Store) ApplyAssignments(ctx context.Context, rows []models.SeatingAssignment) (inserted, updated int, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		update := s.rebind(`UPDATE seating_assignments SET table_number = ? WHERE id = ?`)
		for i := range rows {
			row := &rows[i]
			if row.ID > 0 {
				res, err := tx.ExecContext(ctx, update, row.TableNumber, row.ID)
				if err != nil {
					return fmt.Errorf("failed to seat %s: %w", row.GuestName, err)
				}
				if err := expectOne(res, "failed to seat "+row.GuestName); err != nil {
					return err
				}
				updated++
				continue
			}
			if err := s.createSeating(ctx, tx, row); err != nil {
				return fmt.Errorf("failed to seat %s: %w", row.GuestName, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

func nullableSeat(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
