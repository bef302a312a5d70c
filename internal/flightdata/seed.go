package flightdata

// Seed data loaded when the repository is empty or unreadable. The voice
// interpreter assumes at least one route exists.

// SeedChecklists returns the default checklists.
func SeedChecklists() []Checklist {
	return []Checklist{
		{
			ID:   "chk-prevuelo",
			Name: "Prevuelo",
			Items: []ChecklistItem{
				{ID: "pre-1", Text: "Documentación a bordo"},
				{ID: "pre-2", Text: "Combustible verificado"},
				{ID: "pre-3", Text: "Aceite verificado"},
				{ID: "pre-4", Text: "Superficies de mando libres"},
				{ID: "pre-5", Text: "Paracaídas balístico con pasador quitado"},
			},
		},
		{
			ID:   "chk-despegue",
			Name: "Antes de despegue",
			Items: []ChecklistItem{
				{ID: "des-1", Text: "Cinturones abrochados"},
				{ID: "des-2", Text: "Puertas cerradas"},
				{ID: "des-3", Text: "Flaps en posición de despegue"},
				{ID: "des-4", Text: "Presión y temperatura en verde"},
				{ID: "des-5", Text: "Pista libre y final libre"},
			},
		},
		{
			ID:   "chk-aterrizaje",
			Name: "Aterrizaje",
			Items: []ChecklistItem{
				{ID: "ate-1", Text: "Cinturones abrochados"},
				{ID: "ate-2", Text: "Mezcla rica"},
				{ID: "ate-3", Text: "Flaps según viento"},
				{ID: "ate-4", Text: "Velocidad de aproximación estabilizada"},
			},
		},
	}
}

// SeedRoutes returns the default flight plan.
func SeedRoutes() []Route {
	return []Route{
		{
			ID:   "rta-sierra",
			Name: "Sierra",
			Waypoints: []Waypoint{
				{
					ID: "wp-salida", Name: "Salida", Place: "Campo base",
					Heading: 270, Altitude: "1500 ft", Ceiling: "3000 ft",
					Notes: "Viraje a rumbo tras sobrevolar el campo",
				},
				{
					ID: "wp-embalse", Name: "Embalse", Place: "Embalse de Santillana",
					Heading: 310, Altitude: "2500 ft", Ceiling: "4000 ft",
					Notes: "Notificar paso por el embalse",
				},
				{
					ID: "wp-puerto", Name: "Puerto", Place: "Puerto de la Morcuera",
					Heading: 350, Altitude: "4500 ft", Ceiling: "6000 ft",
					Notes: "Posible turbulencia de ladera con viento norte",
				},
			},
		},
	}
}

// SeedAerodromes returns the default aerodrome reference data.
func SeedAerodromes() []Aerodrome {
	return []Aerodrome{
		{
			ID:        "aer-soto",
			Code:      "LEMS",
			Name:      "Soto del Real",
			Elevation: "2950 ft",
			Runways: []Runway{
				{ID: "rwy-soto-09", Number: "09", Circuit: "Derecha", Length: "450 m", Width: "20 m", Material: "hierba"},
				{ID: "rwy-soto-27", Number: "27", Circuit: "Izquierda", Length: "450 m", Width: "20 m", Slope: "-1.5%", Material: "hierba"},
			},
			Frequencies:  []string{"123.500"},
			Observations: "Circuito al sur del campo. Evitar sobrevolar el pueblo.",
		},
		{
			ID:        "aer-camarenilla",
			Code:      "LECM",
			Name:      "Camarenilla",
			Elevation: "1800 ft",
			Runways: []Runway{
				{ID: "rwy-cam-13", Number: "13", Circuit: "Izquierda", Length: "800 m", Width: "25 m", Material: "asfalto"},
				{ID: "rwy-cam-31", Number: "31", Circuit: "Derecha", Length: "800 m", Width: "25 m", Material: "asfalto"},
			},
			Frequencies:  []string{"130.125", "123.500"},
			Observations: "Combustible disponible previa llamada.",
		},
	}
}
