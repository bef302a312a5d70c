package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// CSV import endpoints for bulk editing. Both expect a header row matching
// the fixed column schema; extra columns are rejected rather than guessed.

var (
	waypointColumns  = []string{"name", "place", "heading", "altitude", "ceiling", "notes"}
	aerodromeColumns = []string{"code", "name", "elevation", "frequencies", "observations"}
)

func readCSV(r *http.Request, columns []string) ([][]string, error) {
	reader := csv.NewReader(r.Body)
	reader.FieldsPerRecord = len(columns)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV")
	}

	header := records[0]
	for i, column := range columns {
		if strings.TrimSpace(strings.ToLower(header[i])) != column {
			return nil, fmt.Errorf("expected column %d to be %q, got %q", i+1, column, header[i])
		}
	}
	return records[1:], nil
}

// ImportWaypoints replaces the waypoints of the route given by the "route"
// query parameter with the uploaded CSV rows.
func (h *Handler) ImportWaypoints(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("route")
	if routeID == "" {
		h.respondError(w, http.StatusBadRequest, "route query parameter is required")
		return
	}

	routes, err := h.repo.Routes()
	if err != nil {
		h.logger.Error("Failed to load routes", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load routes")
		return
	}
	var route *flightdata.Route
	for i := range routes {
		if routes[i].ID == routeID {
			route = &routes[i]
			break
		}
	}
	if route == nil {
		h.respondError(w, http.StatusNotFound, "route not found")
		return
	}

	rows, err := readCSV(r, waypointColumns)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	waypoints := make([]flightdata.Waypoint, 0, len(rows))
	for n, row := range rows {
		heading, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("row %d: invalid heading %q", n+2, row[2]))
			return
		}
		waypoints = append(waypoints, flightdata.Waypoint{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(row[0]),
			Place:    strings.TrimSpace(row[1]),
			Heading:  heading,
			Altitude: strings.TrimSpace(row[3]),
			Ceiling:  strings.TrimSpace(row[4]),
			Notes:    strings.TrimSpace(row[5]),
		})
	}

	route.Waypoints = waypoints
	if err := h.repo.UpsertRoute(*route); err != nil {
		h.logger.Error("Failed to store imported waypoints", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to store waypoints")
		return
	}
	h.respondJSON(w, http.StatusOK, route)
}

// ImportAerodromes upserts one aerodrome per CSV row. Frequencies are
// semicolon-separated within their column; runways are edited separately.
func (h *Handler) ImportAerodromes(w http.ResponseWriter, r *http.Request) {
	rows, err := readCSV(r, aerodromeColumns)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	imported := make([]flightdata.Aerodrome, 0, len(rows))
	for _, row := range rows {
		var frequencies []string
		for _, frequency := range strings.Split(row[3], ";") {
			if frequency = strings.TrimSpace(frequency); frequency != "" {
				frequencies = append(frequencies, frequency)
			}
		}
		aerodrome := flightdata.Aerodrome{
			ID:           uuid.NewString(),
			Code:         strings.TrimSpace(row[0]),
			Name:         strings.TrimSpace(row[1]),
			Elevation:    strings.TrimSpace(row[2]),
			Frequencies:  frequencies,
			Observations: strings.TrimSpace(row[4]),
		}
		if err := h.repo.UpsertAerodrome(aerodrome); err != nil {
			h.logger.Error("Failed to store imported aerodrome", logger.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to store aerodromes")
			return
		}
		imported = append(imported, aerodrome)
	}
	h.respondJSON(w, http.StatusOK, imported)
}
