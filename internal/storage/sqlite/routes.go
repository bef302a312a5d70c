package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
)

// Routes returns all routes with their waypoints, in stored order.
func (s *Store) Routes() ([]flightdata.Route, error) {
	rows, err := s.db.Query(
		`SELECT id, name FROM routes ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []flightdata.Route
	for rows.Next() {
		var route flightdata.Route
		if err := rows.Scan(&route.ID, &route.Name); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate routes: %w", err)
	}

	for i := range routes {
		waypoints, err := s.routeWaypoints(routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Waypoints = waypoints
	}
	return routes, nil
}

func (s *Store) routeWaypoints(routeID string) ([]flightdata.Waypoint, error) {
	rows, err := s.db.Query(
		`SELECT id, name, place, heading, altitude, ceiling, notes
		FROM waypoints WHERE route_id = ? ORDER BY position`,
		routeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query waypoints: %w", err)
	}
	defer rows.Close()

	var waypoints []flightdata.Waypoint
	for rows.Next() {
		var wp flightdata.Waypoint
		if err := rows.Scan(&wp.ID, &wp.Name, &wp.Place, &wp.Heading, &wp.Altitude, &wp.Ceiling, &wp.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan waypoint: %w", err)
		}
		waypoints = append(waypoints, wp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate waypoints: %w", err)
	}
	return waypoints, nil
}

// ActiveRoute returns the route the active-route pointer targets. When the
// pointer is unset or stale it falls back to the first stored route.
func (s *Store) ActiveRoute() (flightdata.Route, error) {
	routes, err := s.Routes()
	if err != nil {
		return flightdata.Route{}, err
	}
	if len(routes) == 0 {
		return flightdata.Route{}, fmt.Errorf("no routes stored")
	}

	id, err := s.getSetting(activeRouteKey)
	if err != nil {
		return flightdata.Route{}, err
	}
	for _, route := range routes {
		if route.ID == id {
			return route, nil
		}
	}
	return routes[0], nil
}

// SetActiveRoute points the voice queries at the given route.
func (s *Store) SetActiveRoute(id string) error {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM routes WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check route: %w", err)
	}
	if exists == 0 {
		return sql.ErrNoRows
	}
	return s.setSetting(activeRouteKey, id)
}

// UpsertRoute inserts or replaces a route and its waypoints. An existing
// route keeps its position in the list.
func (s *Store) UpsertRoute(route flightdata.Route) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := nextPosition(tx, "routes", route.ID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO routes (id, name, position) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		route.ID, route.Name, position,
	); err != nil {
		return fmt.Errorf("failed to upsert route: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM waypoints WHERE route_id = ?`, route.ID); err != nil {
		return fmt.Errorf("failed to clear waypoints: %w", err)
	}
	for i, wp := range route.Waypoints {
		if _, err := tx.Exec(
			`INSERT INTO waypoints (id, route_id, name, place, heading, altitude, ceiling, notes, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			wp.ID, route.ID, wp.Name, wp.Place, wp.Heading, wp.Altitude, wp.Ceiling, wp.Notes, i,
		); err != nil {
			return fmt.Errorf("failed to insert waypoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit route: %w", err)
	}
	return nil
}

// DeleteRoute removes a route and its waypoints. A stale active-route
// pointer is left in place; reads fall back to the first route.
func (s *Store) DeleteRoute(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM waypoints WHERE route_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete waypoints: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit route delete: %w", err)
	}
	return nil
}
