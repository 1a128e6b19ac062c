package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS farmers (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    email           TEXT NOT NULL UNIQUE,
    password_hash   TEXT NOT NULL,
    identity_number TEXT NOT NULL UNIQUE,
    wallet_address  TEXT NOT NULL UNIQUE,
    city            TEXT NOT NULL,
    state           TEXT NOT NULL,
    approval_status TEXT NOT NULL DEFAULT 'pending' CHECK (approval_status IN ('pending', 'approved', 'rejected')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fpos (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    email           TEXT NOT NULL UNIQUE,
    password_hash   TEXT NOT NULL,
    identity_number TEXT NOT NULL UNIQUE,
    wallet_address  TEXT NOT NULL UNIQUE,
    city            TEXT NOT NULL,
    state           TEXT NOT NULL,
    approval_status TEXT NOT NULL DEFAULT 'pending' CHECK (approval_status IN ('pending', 'approved', 'rejected')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS retailers (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    email           TEXT NOT NULL UNIQUE,
    password_hash   TEXT NOT NULL,
    identity_number TEXT NOT NULL UNIQUE,
    wallet_address  TEXT NOT NULL UNIQUE,
    city            TEXT NOT NULL,
    state           TEXT NOT NULL,
    approval_status TEXT NOT NULL DEFAULT 'pending' CHECK (approval_status IN ('pending', 'approved', 'rejected')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS admins (
    id             INTEGER PRIMARY KEY,
    username       TEXT NOT NULL UNIQUE,
    password_hash  TEXT NOT NULL,
    wallet_address TEXT NOT NULL UNIQUE,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS farmer_quotes (
    id              INTEGER PRIMARY KEY,
    farmer_id       INTEGER NOT NULL REFERENCES farmers(id) ON DELETE CASCADE,
    product_name    TEXT NOT NULL,
    category        TEXT NOT NULL,
    description     TEXT NOT NULL,
    deadline        DATE NOT NULL,
    quantity        REAL NOT NULL,
    unit            TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'awarded', 'closed')),
    accepted_bid_id INTEGER REFERENCES fpo_bids(id) ON DELETE SET NULL,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fpo_quotes (
    id              INTEGER PRIMARY KEY,
    fpo_id          INTEGER NOT NULL REFERENCES fpos(id) ON DELETE CASCADE,
    product_name    TEXT NOT NULL,
    category        TEXT NOT NULL,
    description     TEXT NOT NULL,
    deadline        DATE NOT NULL,
    quantity        REAL NOT NULL,
    unit            TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'awarded', 'closed')),
    accepted_bid_id INTEGER REFERENCES retailer_bids(id) ON DELETE SET NULL,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fpo_bids (
    id                 INTEGER PRIMARY KEY,
    fpo_id             INTEGER NOT NULL REFERENCES fpos(id) ON DELETE CASCADE,
    quote_id           INTEGER NOT NULL REFERENCES farmer_quotes(id) ON DELETE CASCADE,
    bid_amount         REAL NOT NULL CHECK (bid_amount > 0),
    delivery_time_days INTEGER NOT NULL CHECK (delivery_time_days >= 0),
    comments           TEXT NOT NULL DEFAULT '',
    transport_mode     TEXT NOT NULL DEFAULT 'road' CHECK (transport_mode IN ('road', 'air')),
    vehicle_type       TEXT,
    status             TEXT NOT NULL DEFAULT 'submitted' CHECK (status IN ('submitted', 'accepted', 'rejected')),
    submitted_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS retailer_bids (
    id                 INTEGER PRIMARY KEY,
    retailer_id        INTEGER NOT NULL REFERENCES retailers(id) ON DELETE CASCADE,
    quote_id           INTEGER NOT NULL REFERENCES fpo_quotes(id) ON DELETE CASCADE,
    bid_amount         REAL NOT NULL CHECK (bid_amount > 0),
    delivery_time_days INTEGER NOT NULL CHECK (delivery_time_days >= 0),
    comments           TEXT NOT NULL DEFAULT '',
    transport_mode     TEXT NOT NULL DEFAULT 'road' CHECK (transport_mode IN ('road', 'air')),
    vehicle_type       TEXT,
    status             TEXT NOT NULL DEFAULT 'submitted' CHECK (status IN ('submitted', 'accepted', 'rejected')),
    submitted_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS negotiations (
    id         INTEGER PRIMARY KEY,
    bid_kind   TEXT NOT NULL CHECK (bid_kind IN ('fpo_bid', 'retailer_bid')),
    bid_id     INTEGER NOT NULL,
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'accepted', 'rejected')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS negotiation_messages (
    id             INTEGER PRIMARY KEY,
    negotiation_id INTEGER NOT NULL REFERENCES negotiations(id) ON DELETE CASCADE,
    sender_role    TEXT NOT NULL,
    sender_id      INTEGER NOT NULL,
    sender_name    TEXT NOT NULL,
    message        TEXT NOT NULL,
    counter_amount REAL,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_fpo_bids_quote ON fpo_bids(quote_id);
CREATE INDEX IF NOT EXISTS idx_retailer_bids_quote ON retailer_bids(quote_id);
CREATE INDEX IF NOT EXISTS idx_negotiations_bid ON negotiations(bid_kind, bid_id);
CREATE INDEX IF NOT EXISTS idx_negotiation_messages_thread ON negotiation_messages(negotiation_id, created_at);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
