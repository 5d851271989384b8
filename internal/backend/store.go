// Package backend is a local stand-in for the provider backend: the same
// endpoints and acknowledgement messages, persisted in a single sqlite file.
package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/tekus/provider-console/internal/api"
)

var (
	// ErrNotFound is returned when no provider has the requested id.
	ErrNotFound = errors.New("provider not found")
	// ErrDuplicateNIT is returned when another provider already uses the NIT.
	ErrDuplicateNIT = errors.New("nit already registered")
)

// Store keeps each provider as a JSON blob and the country directory as rows.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS providers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nit TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS countries (
	isocode TEXT PRIMARY KEY,
	id INTEGER NOT NULL,
	name TEXT NOT NULL,
	flag_image TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS sequences (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

// NewStore opens (or creates) the database at path. ":memory:" is accepted.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "tekus.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// ListProviders returns every provider ordered by id.
func (s *Store) ListProviders(ctx context.Context) ([]api.Provider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM providers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select providers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []api.Provider{}
	for rows.Next() {
		var (
			id      int
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var p api.Provider
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode provider %d: %w", id, err)
		}
		p.ID = id
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProvider returns one provider.
func (s *Store) GetProvider(ctx context.Context, id int) (api.Provider, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM providers WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Provider{}, ErrNotFound
	}
	if err != nil {
		return api.Provider{}, fmt.Errorf("select provider: %w", err)
	}
	var p api.Provider
	if err := json.Unmarshal(payload, &p); err != nil {
		return api.Provider{}, fmt.Errorf("decode provider %d: %w", id, err)
	}
	p.ID = id
	return p, nil
}

// CreateProvider inserts p and returns it with every id assigned.
func (s *Store) CreateProvider(ctx context.Context, p api.Provider) (api.Provider, error) {
	var created api.Provider
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkNIT(ctx, tx, p.NIT, 0); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO providers(nit, payload) VALUES(?, '{}')`, normalizeNIT(p.NIT))
		if err != nil {
			return fmt.Errorf("insert provider: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert provider: %w", err)
		}
		created = p.Clone()
		created.ID = int(id)
		if err := assignIDs(ctx, tx, &created); err != nil {
			return err
		}
		return writePayload(ctx, tx, created)
	})
	return created, err
}

// UpdateProvider replaces the stored provider with the same id.
func (s *Store) UpdateProvider(ctx context.Context, p api.Provider) (api.Provider, error) {
	updated := p.Clone()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM providers WHERE id = ?`, p.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("select provider: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		if err := checkNIT(ctx, tx, p.NIT, p.ID); err != nil {
			return err
		}
		if err := assignIDs(ctx, tx, &updated); err != nil {
			return err
		}
		return writePayload(ctx, tx, updated)
	})
	return updated, err
}

// DeleteProvider removes the provider with id.
func (s *Store) DeleteProvider(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM providers WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete provider: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete provider: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListCountries returns the directory ordered by id.
func (s *Store) ListCountries(ctx context.Context) ([]api.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, isocode, name, flag_image FROM countries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select countries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []api.Country{}
	for rows.Next() {
		var c api.Country
		if err := rows.Scan(&c.ID, &c.ISOCode, &c.Name, &c.FlagImage); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCountries merges entries into the directory by ISO code and returns
// how many rows were written.
func (s *Store) UpsertCountries(ctx context.Context, entries []api.Country) (int, error) {
	written := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range entries {
			key := c.Key()
			if key == "" {
				continue
			}
			id := c.ID
			if id == 0 {
				next, err := nextID(ctx, tx, "country")
				if err != nil {
					return err
				}
				id = next
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO countries(isocode, id, name, flag_image) VALUES(?,?,?,?)
				ON CONFLICT(isocode) DO UPDATE SET name=excluded.name, flag_image=excluded.flag_image`,
				key, id, c.Name, c.FlagImage)
			if err != nil {
				return fmt.Errorf("upsert country %s: %w", key, err)
			}
			written++
		}
		return nil
	})
	return written, err
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func normalizeNIT(nit string) string {
	return strings.TrimSpace(nit)
}

func checkNIT(ctx context.Context, tx *sql.Tx, nit string, selfID int) error {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM providers WHERE nit = ? AND id != ?`, normalizeNIT(nit), selfID).Scan(&n)
	if err != nil {
		return fmt.Errorf("check nit: %w", err)
	}
	if n > 0 {
		return ErrDuplicateNIT
	}
	return nil
}

func writePayload(ctx context.Context, tx *sql.Tx, p api.Provider) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode provider: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE providers SET nit = ?, payload = ? WHERE id = ?`, normalizeNIT(p.NIT), data, p.ID); err != nil {
		return fmt.Errorf("write provider %d: %w", p.ID, err)
	}
	return nil
}

// assignIDs gives every new child row (id 0) a fresh id.
func assignIDs(ctx context.Context, tx *sql.Tx, p *api.Provider) error {
	if p.CustomFields == nil {
		p.CustomFields = []api.CustomField{}
	}
	if p.Services == nil {
		p.Services = []api.Service{}
	}
	for i := range p.CustomFields {
		if p.CustomFields[i].ID != 0 {
			continue
		}
		id, err := nextID(ctx, tx, "custom_field")
		if err != nil {
			return err
		}
		p.CustomFields[i].ID = id
	}
	for i := range p.Services {
		if p.Services[i].Countries == nil {
			p.Services[i].Countries = []api.Country{}
		}
		if p.Services[i].ID != 0 {
			continue
		}
		id, err := nextID(ctx, tx, "service")
		if err != nil {
			return err
		}
		p.Services[i].ID = id
	}
	return nil
}

func nextID(ctx context.Context, tx *sql.Tx, name string) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx, `INSERT INTO sequences(name, value) VALUES(?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return id, nil
}
