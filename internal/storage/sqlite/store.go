// Package sqlite persists the flight data repository: checklists, routes
// and aerodromes, plus the active-route pointer.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

const activeRouteKey = "active_route_id"

// Store is the SQLite-backed flight data repository. List order is the
// stored position, which is insertion order unless an editor reorders.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open opens (creating if needed) the database at path, initializes the
// schema and seeds default data when the store is empty.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{
		db:     db,
		logger: log.Named("sqlite-store"),
	}
	if err := store.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	if err := store.seedIfEmpty(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// initDB initializes the database tables
func (s *Store) initDB() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS checklists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checklist_items (
			id TEXT PRIMARY KEY,
			checklist_id TEXT NOT NULL,
			text TEXT NOT NULL,
			position INTEGER NOT NULL,
			FOREIGN KEY (checklist_id) REFERENCES checklists(id)
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS waypoints (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			name TEXT NOT NULL,
			place TEXT NOT NULL DEFAULT '',
			heading INTEGER NOT NULL DEFAULT 0,
			altitude TEXT NOT NULL DEFAULT '',
			ceiling TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			FOREIGN KEY (route_id) REFERENCES routes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS aerodromes (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			elevation TEXT NOT NULL DEFAULT '',
			observations TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runways (
			id TEXT PRIMARY KEY,
			aerodrome_id TEXT NOT NULL,
			number TEXT NOT NULL,
			circuit TEXT NOT NULL DEFAULT '',
			length TEXT NOT NULL DEFAULT '',
			width TEXT NOT NULL DEFAULT '',
			slope TEXT NOT NULL DEFAULT '',
			material TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			FOREIGN KEY (aerodrome_id) REFERENCES aerodromes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS aerodrome_frequencies (
			aerodrome_id TEXT NOT NULL,
			frequency TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (aerodrome_id, position),
			FOREIGN KEY (aerodrome_id) REFERENCES aerodromes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checklist_items_checklist ON checklist_items(checklist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_waypoints_route ON waypoints(route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runways_aerodrome ON runways(aerodrome_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// seedIfEmpty loads the default flight data into empty tables so the voice
// interpreter always has something to read.
func (s *Store) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM checklists`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count checklists: %w", err)
	}
	if count == 0 {
		for _, cl := range flightdata.SeedChecklists() {
			if err := s.UpsertChecklist(cl); err != nil {
				return err
			}
		}
		s.logger.Info("Seeded default checklists")
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM routes`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count routes: %w", err)
	}
	if count == 0 {
		for _, route := range flightdata.SeedRoutes() {
			if err := s.UpsertRoute(route); err != nil {
				return err
			}
		}
		s.logger.Info("Seeded default routes")
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM aerodromes`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count aerodromes: %w", err)
	}
	if count == 0 {
		for _, aerodrome := range flightdata.SeedAerodromes() {
			if err := s.UpsertAerodrome(aerodrome); err != nil {
				return err
			}
		}
		s.logger.Info("Seeded default aerodromes")
	}
	return nil
}

// nextPosition returns the stored position for id, or one past the current
// maximum when the row does not exist yet. Runs inside the caller's
// transaction.
func nextPosition(tx *sql.Tx, table, id string) (int, error) {
	var position int
	err := tx.QueryRow(`SELECT position FROM `+table+` WHERE id = ?`, id).Scan(&position)
	if err == nil {
		return position, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query %s position: %w", table, err)
	}
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position)+1, 0) FROM ` + table).Scan(&position); err != nil {
		return 0, fmt.Errorf("failed to compute %s position: %w", table, err)
	}
	return position, nil
}

func (s *Store) getSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}
