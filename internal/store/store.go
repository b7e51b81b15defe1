// Package store keeps reference data, serial numbering and submitted
// measurements in a local SQLite database. It backs offline sessions and the
// reference HTTP server.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/innovadoor/sitemeasure/internal/model"
)

var (
	// ErrNoSerialPrefix is returned by NextSerialNumber before a prefix is set.
	ErrNoSerialPrefix = errors.New("serial number prefix is not configured")
	// ErrNotFound is returned for unknown measurement ids.
	ErrNotFound = errors.New("not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS parties (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	contact_person TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	contact_persons TEXT NOT NULL DEFAULT '[]',
	site_addresses TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS designs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	code TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS serial_prefix (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	prefix TEXT NOT NULL,
	next_value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS measurement_seq (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	last_value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS measurements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	measurement_number TEXT NOT NULL,
	measurement_type TEXT NOT NULL,
	party_id INTEGER NOT NULL,
	payload TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_measurements_party ON measurements(party_id);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// one connection keeps ":memory:" a single database and serializes writers
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}

	logger.Debug("store opened", zap.String("path", path))
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetSerialPrefix configures the serial numbering scheme. Changing the prefix
// restarts the counter at 1; setting the same prefix again keeps it.
func (s *Store) SetSerialPrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return errors.New("store: empty serial prefix")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO serial_prefix (id, prefix, next_value) VALUES (1, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			next_value = CASE WHEN prefix = excluded.prefix THEN next_value ELSE 1 END,
			prefix = excluded.prefix`, prefix)
	if err != nil {
		return fmt.Errorf("store: set serial prefix: %w", err)
	}
	s.logger.Info("serial prefix set", zap.String("prefix", prefix))
	return nil
}

// SerialPrefix returns the configured prefix and the next counter value.
func (s *Store) SerialPrefix(ctx context.Context) (string, int64, error) {
	var (
		prefix string
		next   int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT prefix, next_value FROM serial_prefix WHERE id = 1`).Scan(&prefix, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, ErrNoSerialPrefix
	}
	if err != nil {
		return "", 0, fmt.Errorf("store: read serial prefix: %w", err)
	}
	return prefix, next, nil
}

// NextSerialNumber issues the next serial, e.g. "A00001". Every call
// consumes a number.
func (s *Store) NextSerialNumber(ctx context.Context) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var (
		prefix string
		next   int64
	)
	err = tx.QueryRowContext(ctx, `SELECT prefix, next_value FROM serial_prefix WHERE id = 1`).Scan(&prefix, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSerialPrefix
	}
	if err != nil {
		return "", fmt.Errorf("store: read serial prefix: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE serial_prefix SET next_value = ? WHERE id = 1`, next+1); err != nil {
		return "", fmt.Errorf("store: bump serial: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit serial: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

func measurementNumber(n int64) string {
	return fmt.Sprintf("MSR-%05d", n)
}

// NextMeasurementNumber returns the number the next submission will get. It
// does not consume it.
func (s *Store) NextMeasurementNumber(ctx context.Context) (string, error) {
	var last int64
	err := s.db.QueryRowContext(ctx, `SELECT last_value FROM measurement_seq WHERE id = 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("store: read measurement sequence: %w", err)
	}
	return measurementNumber(last + 1), nil
}

// AddParty stores a party and returns its id.
func (s *Store) AddParty(ctx context.Context, p model.Party) (int64, error) {
	persons, err := json.Marshal(nonNil(p.ContactPersons))
	if err != nil {
		return 0, fmt.Errorf("store: encode contact persons: %w", err)
	}
	sites, err := json.Marshal(nonNil(p.SiteAddresses))
	if err != nil {
		return 0, fmt.Errorf("store: encode site addresses: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO parties (name, contact_person, email, phone, contact_persons, site_addresses)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.ContactPerson, p.Email, p.Phone, string(persons), string(sites))
	if err != nil {
		return 0, fmt.Errorf("store: add party: %w", err)
	}
	return res.LastInsertId()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Parties returns every party ordered by name.
func (s *Store) Parties(ctx context.Context) ([]model.Party, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact_person, email, phone, contact_persons, site_addresses
		FROM parties ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list parties: %w", err)
	}
	defer rows.Close()

	var parties []model.Party
	for rows.Next() {
		var (
			p              model.Party
			persons, sites string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ContactPerson, &p.Email, &p.Phone, &persons, &sites); err != nil {
			return nil, fmt.Errorf("store: scan party: %w", err)
		}
		if err := json.Unmarshal([]byte(persons), &p.ContactPersons); err != nil {
			return nil, fmt.Errorf("store: party %d contact persons: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(sites), &p.SiteAddresses); err != nil {
			return nil, fmt.Errorf("store: party %d site addresses: %w", p.ID, err)
		}
		if len(p.ContactPersons) == 0 {
			p.ContactPersons = nil
		}
		if len(p.SiteAddresses) == 0 {
			p.SiteAddresses = nil
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

// AddProduct stores a product and returns its id.
func (s *Store) AddProduct(ctx context.Context, p model.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO products (name, category) VALUES (?, ?)`, p.Name, p.Category)
	if err != nil {
		return 0, fmt.Errorf("store: add product: %w", err)
	}
	return res.LastInsertId()
}

// Products returns the products of a category; an empty category lists all.
func (s *Store) Products(ctx context.Context, category string) ([]model.Product, error) {
	q := `SELECT id, name, category FROM products`
	var args []any
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, fmt.Errorf("store: scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AddDesign stores a design and returns its id.
func (s *Store) AddDesign(ctx context.Context, d model.Design) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO designs (name, code, is_active) VALUES (?, ?, ?)`,
		d.Name, d.Code, d.IsActive)
	if err != nil {
		return 0, fmt.Errorf("store: add design: %w", err)
	}
	return res.LastInsertId()
}

// Designs returns the active designs.
func (s *Store) Designs(ctx context.Context) ([]model.Design, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, code, is_active FROM designs WHERE is_active = 1 ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list designs: %w", err)
	}
	defer rows.Close()

	var designs []model.Design
	for rows.Next() {
		var d model.Design
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.IsActive); err != nil {
			return nil, fmt.Errorf("store: scan design: %w", err)
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

// SubmitMeasurement stores a measurement and returns its id. A measurement
// without a number takes the next one from the sequence.
func (s *Store) SubmitMeasurement(ctx context.Context, m model.Measurement) (int64, error) {
	if !m.Type.Valid() {
		return 0, fmt.Errorf("store: invalid measurement type %q", m.Type)
	}
	if m.PartyID == 0 {
		return 0, errors.New("store: measurement has no party")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var last int64
	err = tx.QueryRowContext(ctx, `SELECT last_value FROM measurement_seq WHERE id = 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("store: read measurement sequence: %w", err)
	}
	if m.MeasurementNumber == "" {
		m.MeasurementNumber = measurementNumber(last + 1)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO measurement_seq (id, last_value) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_value = excluded.last_value`, last+1)
	if err != nil {
		return 0, fmt.Errorf("store: bump measurement sequence: %w", err)
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("store: encode measurement: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO measurements (measurement_number, measurement_type, party_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.MeasurementNumber, string(m.Type), m.PartyID, string(payload), s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("store: insert measurement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: measurement id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit measurement: %w", err)
	}

	s.logger.Info("measurement stored",
		zap.Int64("id", id),
		zap.String("number", m.MeasurementNumber),
		zap.Int("items", len(m.Items)))
	return id, nil
}

// Measurement returns a stored measurement.
func (s *Store) Measurement(ctx context.Context, id int64) (model.Measurement, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM measurements WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Measurement{}, fmt.Errorf("measurement %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Measurement{}, fmt.Errorf("store: read measurement %d: %w", id, err)
	}
	var m model.Measurement
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return model.Measurement{}, fmt.Errorf("store: decode measurement %d: %w", id, err)
	}
	return m, nil
}
