package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
)

// Aerodromes returns all aerodromes with runways and frequencies, in
// stored order.
func (s *Store) Aerodromes() ([]flightdata.Aerodrome, error) {
	rows, err := s.db.Query(
		`SELECT id, code, name, elevation, observations FROM aerodromes ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query aerodromes: %w", err)
	}
	defer rows.Close()

	var aerodromes []flightdata.Aerodrome
	for rows.Next() {
		var a flightdata.Aerodrome
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Elevation, &a.Observations); err != nil {
			return nil, fmt.Errorf("failed to scan aerodrome: %w", err)
		}
		aerodromes = append(aerodromes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aerodromes: %w", err)
	}

	for i := range aerodromes {
		runways, err := s.aerodromeRunways(aerodromes[i].ID)
		if err != nil {
			return nil, err
		}
		aerodromes[i].Runways = runways

		frequencies, err := s.aerodromeFrequencies(aerodromes[i].ID)
		if err != nil {
			return nil, err
		}
		aerodromes[i].Frequencies = frequencies
	}
	return aerodromes, nil
}

func (s *Store) aerodromeRunways(aerodromeID string) ([]flightdata.Runway, error) {
	rows, err := s.db.Query(
		`SELECT id, number, circuit, length, width, slope, material
		FROM runways WHERE aerodrome_id = ? ORDER BY position`,
		aerodromeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runways: %w", err)
	}
	defer rows.Close()

	var runways []flightdata.Runway
	for rows.Next() {
		var rwy flightdata.Runway
		if err := rows.Scan(&rwy.ID, &rwy.Number, &rwy.Circuit, &rwy.Length, &rwy.Width, &rwy.Slope, &rwy.Material); err != nil {
			return nil, fmt.Errorf("failed to scan runway: %w", err)
		}
		runways = append(runways, rwy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runways: %w", err)
	}
	return runways, nil
}

func (s *Store) aerodromeFrequencies(aerodromeID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT frequency FROM aerodrome_frequencies WHERE aerodrome_id = ? ORDER BY position`,
		aerodromeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query frequencies: %w", err)
	}
	defer rows.Close()

	var frequencies []string
	for rows.Next() {
		var frequency string
		if err := rows.Scan(&frequency); err != nil {
			return nil, fmt.Errorf("failed to scan frequency: %w", err)
		}
		frequencies = append(frequencies, frequency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate frequencies: %w", err)
	}
	return frequencies, nil
}

// UpsertAerodrome inserts or replaces an aerodrome with its runways and
// frequencies. An existing aerodrome keeps its position in the list.
func (s *Store) UpsertAerodrome(a flightdata.Aerodrome) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := nextPosition(tx, "aerodromes", a.ID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO aerodromes (id, code, name, elevation, observations, position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			elevation = excluded.elevation,
			observations = excluded.observations`,
		a.ID, a.Code, a.Name, a.Elevation, a.Observations, position,
	); err != nil {
		return fmt.Errorf("failed to upsert aerodrome: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM runways WHERE aerodrome_id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to clear runways: %w", err)
	}
	for i, rwy := range a.Runways {
		if _, err := tx.Exec(
			`INSERT INTO runways (id, aerodrome_id, number, circuit, length, width, slope, material, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rwy.ID, a.ID, rwy.Number, rwy.Circuit, rwy.Length, rwy.Width, rwy.Slope, rwy.Material, i,
		); err != nil {
			return fmt.Errorf("failed to insert runway: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM aerodrome_frequencies WHERE aerodrome_id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to clear frequencies: %w", err)
	}
	for i, frequency := range a.Frequencies {
		if _, err := tx.Exec(
			`INSERT INTO aerodrome_frequencies (aerodrome_id, frequency, position) VALUES (?, ?, ?)`,
			a.ID, frequency, i,
		); err != nil {
			return fmt.Errorf("failed to insert frequency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aerodrome: %w", err)
	}
	return nil
}

// DeleteAerodrome removes an aerodrome with its runways and frequencies.
func (s *Store) DeleteAerodrome(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM runways WHERE aerodrome_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete runways: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM aerodrome_frequencies WHERE aerodrome_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete frequencies: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM aerodromes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete aerodrome: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aerodrome delete: %w", err)
	}
	return nil
}
