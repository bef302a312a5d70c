package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/phonetics"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

var (
	advanceWords  = []string{"check", "hecho", "siguiente"}
	restartWords  = []string{"reiniciar", "empezar de nuevo"}
	routeTriggers = []string{"plan de vuelo", "punto de ruta", "punto ruta", "ruta", "punto"}
	loadWords     = []string{"cargar", "seleccionar", "activar"}
	stopWords     = []string{"cancelar", "parar", "silencio"}
)

const helpText = "Puedes decir: leer checklist seguido del nombre, siguiente, reiniciar, " +
	"plan de vuelo, punto seguido de un número o nombre, aeródromo, repetir, o cancelar."

// --- a. Checklist selection ---

func (i *Interpreter) matchChecklistSelect(text string) bool {
	return strings.Contains(text, "checklist")
}

func (i *Interpreter) handleChecklistSelect(text string) {
	checklists, err := i.repo.Checklists()
	if err != nil {
		i.logger.Error("Failed to load checklists", logger.Error(err))
		i.reply("No he podido acceder a las checklists.")
		return
	}

	for _, cl := range checklists {
		if cl.Name == "" || !strings.Contains(text, strings.ToLower(cl.Name)) {
			continue
		}
		if len(cl.Items) == 0 {
			i.reply(fmt.Sprintf("La checklist %s no tiene puntos.", cl.Name))
			return
		}
		i.state.BeginChecklist(cl)
		i.reply(fmt.Sprintf("Iniciando checklist %s. Primer punto: %s", cl.Name, cl.Items[0].Text))
		return
	}

	names := make([]string, 0, len(checklists))
	for _, cl := range checklists {
		names = append(names, cl.Name)
	}
	i.reply(fmt.Sprintf("Checklist no encontrada. Las disponibles son: %s", strings.Join(names, ", ")))
}

// --- b. Checklist progression ---

func (i *Interpreter) matchChecklistStep(text string) bool {
	if i.state.Mode() != session.ModeChecklist {
		return false
	}
	return containsAny(text, advanceWords) || containsAny(text, restartWords)
}

func (i *Interpreter) handleChecklistStep(text string) {
	cl, index := i.state.ActiveChecklist()
	if cl == nil {
		return
	}

	if containsAny(text, advanceWords) {
		next := index + 1
		if next < len(cl.Items) {
			i.state.SetChecklistIndex(next)
			i.reply(cl.Items[next].Text)
			return
		}
		i.state.EndChecklist()
		i.reply(fmt.Sprintf("Checklist %s completada.", cl.Name))
		return
	}

	i.state.SetChecklistIndex(0)
	i.reply(fmt.Sprintf("Reiniciando checklist. Primer punto: %s", cl.Items[0].Text))
}

// --- c. Route and waypoint queries ---

func (i *Interpreter) matchRoute(text string) bool {
	return containsAny(text, routeTriggers)
}

func (i *Interpreter) handleRoute(text string) {
	if containsAny(text, loadWords) {
		routes, err := i.repo.Routes()
		if err != nil {
			i.logger.Error("Failed to load routes", logger.Error(err))
			i.reply("No he podido acceder a los planes de vuelo.")
			return
		}
		for _, route := range routes {
			if route.Name == "" || !strings.Contains(text, strings.ToLower(route.Name)) {
				continue
			}
			if err := i.repo.SetActiveRoute(route.ID); err != nil {
				i.logger.Error("Failed to set active route", logger.Error(err))
				i.reply("No he podido cargar el plan de vuelo.")
				return
			}
			i.reply(fmt.Sprintf("Plan de vuelo %s cargado. Tiene %d puntos de ruta.",
				route.Name, len(route.Waypoints)))
			return
		}
		// No route name in the text: fall through to waypoint resolution.
	}

	route, err := i.repo.ActiveRoute()
	if err != nil {
		i.logger.Error("Failed to load active route", logger.Error(err))
		i.reply("No hay ningún plan de vuelo cargado.")
		return
	}

	if wp, ok := i.resolveWaypoint(route, text); ok {
		i.reply(fmt.Sprintf("Punto de ruta %s. Rumbo %d grados, Altitud %s, Techo %s. Notas: %s",
			wp.Name, wp.Heading, wp.Altitude, wp.Ceiling, wp.Notes))
		return
	}

	var b strings.Builder
	for idx, wp := range route.Waypoints {
		fmt.Fprintf(&b, "%d: %s. ", idx+1, wp.Name)
	}
	b.WriteString("¿De cuál quieres detalles?")
	i.reply(b.String())
}

// resolveWaypoint tries an explicit ordinal after "punto" first, then a
// waypoint name substring against the cleaned or original command.
func (i *Interpreter) resolveWaypoint(route flightdata.Route, text string) (flightdata.Waypoint, bool) {
	if m := i.ordinalRE.FindStringSubmatch(text); m != nil {
		token := m[1]
		n, err := strconv.Atoi(token)
		if err != nil {
			if word, ok := phonetics.WordToNumber(token); ok {
				n = word
			}
		}
		if n >= 1 && n <= len(route.Waypoints) {
			return route.Waypoints[n-1], true
		}
	}

	cleaned := stripWaypointPrefix(text)
	for _, wp := range route.Waypoints {
		name := strings.ToLower(wp.Name)
		if name == "" {
			continue
		}
		if strings.Contains(cleaned, name) || strings.Contains(text, name) {
			return wp, true
		}
	}
	return flightdata.Waypoint{}, false
}

func stripWaypointPrefix(text string) string {
	for _, prefix := range []string{"punto de ruta", "punto ruta", "punto"} {
		if idx := strings.Index(text, prefix); idx >= 0 {
			return strings.TrimSpace(text[idx+len(prefix):])
		}
	}
	return text
}

// --- d. Aerodrome queries ---

func (i *Interpreter) matchAerodrome(text string) bool {
	return strings.Contains(text, "aeródromo") ||
		strings.Contains(text, "aerodromo") ||
		strings.Contains(text, "pistas")
}

func (i *Interpreter) handleAerodrome(text string) {
	aerodromes, err := i.repo.Aerodromes()
	if err != nil {
		i.logger.Error("Failed to load aerodromes", logger.Error(err))
		i.reply("No he podido acceder a los aeródromos.")
		return
	}
	if len(aerodromes) == 0 {
		i.reply("No hay aeródromos registrados.")
		return
	}

	normalized := phonetics.StripAccents(text)
	target := aerodromes[0]
	for _, a := range aerodromes {
		if (a.Name != "" && strings.Contains(normalized, phonetics.StripAccents(a.Name))) ||
			(a.Code != "" && strings.Contains(normalized, strings.ToLower(a.Code))) {
			target = a
			break
		}
	}
	i.reply(describeAerodrome(target))
}

func describeAerodrome(a flightdata.Aerodrome) string {
	elevation := phonetics.NormalizeUnits(a.Elevation)
	if elevation == "" {
		elevation = "no especificada"
	}

	runways := make([]string, 0, len(a.Runways))
	for _, rwy := range a.Runways {
		runways = append(runways, describeRunway(rwy))
	}

	frequencies := make([]string, 0, len(a.Frequencies))
	for _, f := range a.Frequencies {
		frequencies = append(frequencies, phonetics.ReadFrequency(f))
	}

	return fmt.Sprintf("Aeródromo %s, código %s. Elevación %s. %s. Frecuencias %s. %s",
		a.Name,
		phonetics.SpellOut(a.Code),
		elevation,
		strings.Join(runways, ". "),
		strings.Join(frequencies, " y "),
		a.Observations,
	)
}

func describeRunway(rwy flightdata.Runway) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pista %s circuito a %s", phonetics.SpellOut(rwy.Number), strings.ToLower(rwy.Circuit))
	if rwy.Length != "" {
		fmt.Fprintf(&b, ", longitud %s", phonetics.NormalizeUnits(rwy.Length))
	}
	if rwy.Width != "" {
		fmt.Fprintf(&b, ", ancho %s", phonetics.NormalizeUnits(rwy.Width))
	}
	if rwy.Material != "" {
		fmt.Fprintf(&b, ", superficie de %s", rwy.Material)
	}
	if rwy.Slope != "" {
		fmt.Fprintf(&b, ", inclinación %s", phonetics.ReadSlope(rwy.Slope))
	}
	return b.String()
}

// --- e. Help ---

func (i *Interpreter) matchHelp(text string) bool {
	return strings.Contains(text, "opciones") || strings.Contains(text, "ayuda")
}

func (i *Interpreter) handleHelp(string) {
	i.reply(helpText)
}

// --- f. Cancel and stop ---

func (i *Interpreter) matchCancel(text string) bool {
	return containsAny(text, stopWords)
}

func (i *Interpreter) handleCancel(text string) {
	i.speaker.Stop()
	if strings.Contains(text, "cancelar") {
		i.state.EndChecklist()
		i.reply("Operación cancelada")
		return
	}
	// Plain stop or silence: log only, mode unchanged.
	i.voicelog.AppendSystem("Lectura detenida")
}

// --- g. Repeat ---

func (i *Interpreter) matchRepeat(text string) bool {
	return strings.Contains(text, "repetir") || strings.Contains(text, "repite")
}

func (i *Interpreter) handleRepeat(string) {
	last := i.speaker.LastSpoken()
	if last == "" {
		i.reply("No hay nada que repetir.")
		return
	}
	i.voicelog.AppendSystem("Repitiendo: " + last)
	i.speaker.Speak(last)
}
