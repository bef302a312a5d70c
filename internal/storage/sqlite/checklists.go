package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
)

// Checklists returns all checklists with their items, in stored order.
func (s *Store) Checklists() ([]flightdata.Checklist, error) {
	rows, err := s.db.Query(
		`SELECT id, name FROM checklists ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklists: %w", err)
	}
	defer rows.Close()

	var checklists []flightdata.Checklist
	for rows.Next() {
		var cl flightdata.Checklist
		if err := rows.Scan(&cl.ID, &cl.Name); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		checklists = append(checklists, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklists: %w", err)
	}

	for i := range checklists {
		items, err := s.checklistItems(checklists[i].ID)
		if err != nil {
			return nil, err
		}
		checklists[i].Items = items
	}
	return checklists, nil
}

func (s *Store) checklistItems(checklistID string) ([]flightdata.ChecklistItem, error) {
	rows, err := s.db.Query(
		`SELECT id, text FROM checklist_items WHERE checklist_id = ? ORDER BY position`,
		checklistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist items: %w", err)
	}
	defer rows.Close()

	var items []flightdata.ChecklistItem
	for rows.Next() {
		var item flightdata.ChecklistItem
		if err := rows.Scan(&item.ID, &item.Text); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklist items: %w", err)
	}
	return items, nil
}

// UpsertChecklist inserts or replaces a checklist and its items. An
// existing checklist keeps its position in the list.
func (s *Store) UpsertChecklist(cl flightdata.Checklist) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := nextPosition(tx, "checklists", cl.ID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO checklists (id, name, position) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		cl.ID, cl.Name, position,
	); err != nil {
		return fmt.Errorf("failed to upsert checklist: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM checklist_items WHERE checklist_id = ?`, cl.ID); err != nil {
		return fmt.Errorf("failed to clear checklist items: %w", err)
	}
	for i, item := range cl.Items {
		if _, err := tx.Exec(
			`INSERT INTO checklist_items (id, checklist_id, text, position) VALUES (?, ?, ?, ?)`,
			item.ID, cl.ID, item.Text, i,
		); err != nil {
			return fmt.Errorf("failed to insert checklist item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checklist: %w", err)
	}
	return nil
}

// DeleteChecklist removes a checklist and its items.
func (s *Store) DeleteChecklist(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM checklist_items WHERE checklist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete checklist items: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM checklists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checklist delete: %w", err)
	}
	return nil
}
