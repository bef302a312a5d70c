// Package flightdata holds the domain model for the cockpit assistant:
// checklists, flight routes with waypoints, and aerodrome reference data.
package flightdata

// ChecklistItem is a single actionable line in a checklist.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Checklist is an ordered list of items. The name is the voice-match key.
type Checklist struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Items []ChecklistItem `json:"items"`
}

// Clone returns a deep copy of the checklist. The items slice is not shared
// with the receiver.
func (c Checklist) Clone() Checklist {
	out := c
	out.Items = append([]ChecklistItem(nil), c.Items...)
	return out
}

// Waypoint is a named point in a flight route. Order within a route is the
// spoken 1-based position; it carries no other meaning.
type Waypoint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Place    string `json:"place"`
	Heading  int    `json:"heading"`
	Altitude string `json:"altitude"`
	Ceiling  string `json:"ceiling"`
	Notes    string `json:"notes"`
}

// Route is a flight plan: an ordered sequence of waypoints.
type Route struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Waypoints []Waypoint `json:"waypoints"`
}

// Runway describes a single runway of an aerodrome. Length, width, slope and
// material are optional; empty means not specified.
type Runway struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Circuit  string `json:"circuit"` // "Izquierda" or "Derecha"
	Length   string `json:"length,omitempty"`
	Width    string `json:"width,omitempty"`
	Slope    string `json:"slope,omitempty"`
	Material string `json:"material,omitempty"`
}

// Aerodrome holds reference data for an airfield. Frequencies are ordered.
type Aerodrome struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Elevation    string   `json:"elevation"`
	Runways      []Runway `json:"runways"`
	Frequencies  []string `json:"frequencies"`
	Observations string   `json:"observations"`
}

// Repository is the domain data store. List order is insertion order; voice
// matching documents "first match wins" against that order. The command
// interpreter only calls the read methods; mutations belong to the editors.
type Repository interface {
	Checklists() ([]Checklist, error)
	Routes() ([]Route, error)
	// ActiveRoute returns the route the voice queries target. When the
	// stored pointer is invalid it falls back to the first route; a route
	// always exists because the store seeds defaults.
	ActiveRoute() (Route, error)
	Aerodromes() ([]Aerodrome, error)

	UpsertChecklist(Checklist) error
	DeleteChecklist(id string) error
	UpsertRoute(Route) error
	DeleteRoute(id string) error
	SetActiveRoute(id string) error
	UpsertAerodrome(Aerodrome) error
	DeleteAerodrome(id string) error
}
