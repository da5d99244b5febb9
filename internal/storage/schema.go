package storage

// name_key and email_key hold identity.NormalizeName / identity.EmailKey so
// lookups never re-normalize in SQL.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS invited_guests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guest_name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		email_key TEXT NOT NULL DEFAULT '',
		allowed_party_size INTEGER NOT NULL DEFAULT 1,
		is_entourage BOOLEAN NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		special_notes TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invited_guests_name_key ON invited_guests (name_key)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invited_guests_email_key ON invited_guests (email_key) WHERE email_key <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_invited_guests_phone ON invited_guests (phone)`,
	`CREATE TABLE IF NOT EXISTS rsvps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invited_guest_id INTEGER REFERENCES invited_guests (id) ON DELETE SET NULL,
		guest_name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		attendance TEXT NOT NULL CHECK (attendance IN ('yes', 'no')),
		guest_count INTEGER NOT NULL DEFAULT 1,
		dietary_restrictions TEXT NOT NULL DEFAULT '',
		special_message TEXT NOT NULL DEFAULT '',
		wallet_address TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvps_name_key ON rsvps (name_key)`,
	`CREATE TABLE IF NOT EXISTS seating_assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guest_name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		table_number INTEGER NOT NULL DEFAULT 0,
		seat_number INTEGER,
		plus_one_name TEXT NOT NULL DEFAULT '',
		dietary_notes TEXT NOT NULL DEFAULT '',
		special_notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seating_name_key ON seating_assignments (name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_seating_table ON seating_assignments (table_number)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS invited_guests (
		id BIGSERIAL PRIMARY KEY,
		guest_name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		email_key TEXT NOT NULL DEFAULT '',
		allowed_party_size INTEGER NOT NULL DEFAULT 1,
		is_entourage BOOLEAN NOT NULL DEFAULT FALSE,
		source TEXT NOT NULL DEFAULT '',
		special_notes TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invited_guests_name_key ON invited_guests (name_key)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invited_guests_email_key ON invited_guests (email_key) WHERE email_key <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_invited_guests_phone ON invited_guests (phone)`,
	`CREATE TABLE IF NOT EXISTS rsvps (
		id BIGSERIAL PRIMARY KEY,
		invited_guest_id BIGINT REFERENCES invited_guests (id) ON DELETE SET NULL,
		guest_name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		attendance TEXT NOT NULL CHECK (attendance IN ('yes', 'no')),
		guest_count INTEGER NOT NULL DEFAULT 1,
		dietary_restrictions TEXT NOT NULL DEFAULT '',
		special_message TEXT NOT NULL DEFAULT '',
		wallet_address TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvps_name_key ON rsvps (name_key)`,
	`CREATE TABLE IF NOT EXISTS seating_assignments (
		id BIGSERIAL PRIMARY KEY,
		guest_name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		table_number INTEGER NOT NULL DEFAULT 0,
		seat_number INTEGER,
		plus_one_name TEXT NOT NULL DEFAULT '',
		dietary_notes TEXT NOT NULL DEFAULT '',
		special_notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seating_name_key ON seating_assignments (name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_seating_table ON seating_assignments (table_number)`,
}
