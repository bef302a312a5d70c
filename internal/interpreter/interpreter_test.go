package interpreter

import (
	"strings"
	"testing"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// fakeRepo serves the seed data from memory.
type fakeRepo struct {
	checklists []flightdata.Checklist
	routes     []flightdata.Route
	aerodromes []flightdata.Aerodrome
	activeID   string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		checklists: flightdata.SeedChecklists(),
		routes:     flightdata.SeedRoutes(),
		aerodromes: flightdata.SeedAerodromes(),
	}
}

func (r *fakeRepo) Checklists() ([]flightdata.Checklist, error) { return r.checklists, nil }
func (r *fakeRepo) Routes() ([]flightdata.Route, error)         { return r.routes, nil }
func (r *fakeRepo) Aerodromes() ([]flightdata.Aerodrome, error) { return r.aerodromes, nil }

func (r *fakeRepo) ActiveRoute() (flightdata.Route, error) {
	for _, route := range r.routes {
		if route.ID == r.activeID {
			return route, nil
		}
	}
	return r.routes[0], nil
}

func (r *fakeRepo) UpsertChecklist(flightdata.Checklist) error { return nil }
func (r *fakeRepo) DeleteChecklist(string) error               { return nil }
func (r *fakeRepo) UpsertRoute(flightdata.Route) error         { return nil }
func (r *fakeRepo) DeleteRoute(string) error                   { return nil }
func (r *fakeRepo) SetActiveRoute(id string) error             { r.activeID = id; return nil }
func (r *fakeRepo) UpsertAerodrome(flightdata.Aerodrome) error { return nil }
func (r *fakeRepo) DeleteAerodrome(string) error               { return nil }

// fakeSpeaker records utterances synchronously.
type fakeSpeaker struct {
	spoken []string
	stops  int
}

func (s *fakeSpeaker) Speak(text string) { s.spoken = append(s.spoken, text) }
func (s *fakeSpeaker) Stop()             { s.stops++ }

func (s *fakeSpeaker) LastSpoken() string {
	if len(s.spoken) == 0 {
		return ""
	}
	return s.spoken[len(s.spoken)-1]
}

func (s *fakeSpeaker) last(t *testing.T) string {
	t.Helper()
	if len(s.spoken) == 0 {
		t.Fatal("nothing was spoken")
	}
	return s.spoken[len(s.spoken)-1]
}

func newTestInterpreter(t *testing.T) (*Interpreter, *fakeRepo, *session.State, *session.VoiceLog, *fakeSpeaker) {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	repo := newFakeRepo()
	state := session.NewState(session.ListeningHeadphones)
	voicelog := session.NewVoiceLog()
	speaker := &fakeSpeaker{}
	i := New(repo, state, voicelog, speaker, "copiloto", log)
	return i, repo, state, voicelog, speaker
}

func TestBareWakeWordFromIdle(t *testing.T) {
	i, _, state, voicelog, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto")

	if state.Mode() != session.ModeListening {
		t.Errorf("mode = %s, want listening", state.Mode())
	}
	if got := speaker.last(t); got != "Copiloto a la escucha" {
		t.Errorf("spoke %q", got)
	}
	entries := voicelog.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected user + system log entries, got %d", len(entries))
	}
	if entries[0].Type != session.EntryUser || entries[1].Type != session.EntrySystem {
		t.Errorf("unexpected entry types: %s, %s", entries[0].Type, entries[1].Type)
	}
}

func TestIdleUtteranceWithoutWakeWordIgnored(t *testing.T) {
	i, _, state, voicelog, speaker := newTestInterpreter(t)

	i.HandleTranscript("leer checklist prevuelo")

	if state.Mode() != session.ModeIdle {
		t.Errorf("mode = %s, want idle", state.Mode())
	}
	if len(speaker.spoken) != 0 {
		t.Errorf("expected silence, spoke %v", speaker.spoken)
	}
	if len(voicelog.Entries()) != 0 {
		t.Errorf("expected empty log, got %d entries", len(voicelog.Entries()))
	}
}

func TestChecklistSelection(t *testing.T) {
	i, _, state, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto leer checklist prevuelo")

	if state.Mode() != session.ModeChecklist {
		t.Fatalf("mode = %s, want checklist", state.Mode())
	}
	cl, index := state.ActiveChecklist()
	if cl == nil || cl.Name != "Prevuelo" || index != 0 {
		t.Fatalf("active checklist = %v at %d", cl, index)
	}
	want := "Iniciando checklist Prevuelo. Primer punto: " + cl.Items[0].Text
	if got := speaker.last(t); got != want {
		t.Errorf("spoke %q, want %q", got, want)
	}
}

func TestChecklistSelectionRejectionEnumeratesNames(t *testing.T) {
	i, _, state, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto leer checklist inexistente")

	if state.Mode() != session.ModeIdle {
		t.Errorf("mode = %s, want idle", state.Mode())
	}
	got := speaker.last(t)
	for _, name := range []string{"Prevuelo", "Antes de despegue", "Aterrizaje"} {
		if !strings.Contains(got, name) {
			t.Errorf("rejection %q does not mention %q", got, name)
		}
	}
}

func TestChecklistRunsToCompletion(t *testing.T) {
	i, repo, state, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto leer checklist aterrizaje")
	items := repo.checklists[2].Items

	for n := 1; n < len(items); n++ {
		i.HandleTranscript("siguiente")
		if got := speaker.last(t); got != items[n].Text {
			t.Errorf("step %d spoke %q, want %q", n, got, items[n].Text)
		}
	}

	// One more advance past the end completes the checklist.
	i.HandleTranscript("siguiente")
	if got := speaker.last(t); got != "Checklist Aterrizaje completada." {
		t.Errorf("completion spoke %q", got)
	}
	if state.Mode() != session.ModeIdle {
		t.Errorf("mode = %s, want idle", state.Mode())
	}
	if cl, index := state.ActiveChecklist(); cl != nil || index != -1 {
		t.Errorf("checklist not cleared: %v at %d", cl, index)
	}
}

func TestChecklistRestart(t *testing.T) {
	i, _, state, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto leer checklist prevuelo")
	i.HandleTranscript("hecho")
	i.HandleTranscript("hecho")

	i.HandleTranscript("reiniciar")

	cl, index := state.ActiveChecklist()
	if cl == nil || index != 0 {
		t.Fatalf("index after restart = %d, want 0", index)
	}
	want := "Reiniciando checklist. Primer punto: " + cl.Items[0].Text
	if got := speaker.last(t); got != want {
		t.Errorf("spoke %q, want %q", got, want)
	}
	if state.Mode() != session.ModeChecklist {
		t.Errorf("mode = %s, want checklist", state.Mode())
	}
}

func TestCancelDuringChecklist(t *testing.T) {
	i, _, state, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto leer checklist prevuelo")
	i.HandleTranscript("copiloto cancelar")

	if speaker.stops == 0 {
		t.Error("expected in-progress speech to be stopped")
	}
	if got := speaker.last(t); got != "Operación cancelada" {
		t.Errorf("spoke %q", got)
	}
	if state.Mode() != session.ModeIdle {
		t.Errorf("mode = %s, want idle", state.Mode())
	}
	if cl, _ := state.ActiveChecklist(); cl != nil {
		t.Error("checklist not cleared")
	}
}

func TestStopLogsWithoutReply(t *testing.T) {
	i, _, state, voicelog, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto leer checklist prevuelo")
	spokenBefore := len(speaker.spoken)

	i.HandleTranscript("parar")

	if speaker.stops == 0 {
		t.Error("expected speech to be stopped")
	}
	if len(speaker.spoken) != spokenBefore {
		t.Errorf("expected no spoken reply, got %q", speaker.last(t))
	}
	entry, ok := voicelog.LastSystem()
	if !ok || entry.Text != "Lectura detenida" {
		t.Errorf("last system entry = %v", entry)
	}
	if state.Mode() != session.ModeChecklist {
		t.Errorf("mode = %s, want checklist unchanged", state.Mode())
	}
}

func TestCancelarChecklistSelectsNotCancels(t *testing.T) {
	// "cancelar checklist" contains "checklist" and the selection predicate
	// runs first; the cascade order is part of the contract.
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto cancelar checklist")

	got := speaker.last(t)
	if got == "Operación cancelada" {
		t.Error("cancel handled before checklist selection; cascade order broken")
	}
	if !strings.Contains(got, "Checklist no encontrada") {
		t.Errorf("spoke %q, want a checklist rejection", got)
	}
}

func TestWaypointOrdinalResolution(t *testing.T) {
	i, repo, _, _, speaker := newTestInterpreter(t)
	waypoints := repo.routes[0].Waypoints

	tests := []struct {
		utterance string
		want      flightdata.Waypoint
	}{
		{"copiloto punto 1", waypoints[0]},
		{"copiloto punto dos", waypoints[1]},
		{"copiloto punto de ruta tres", waypoints[2]},
		{"copiloto punto de ruta 2", waypoints[1]},
	}
	for _, tt := range tests {
		i.HandleTranscript(tt.utterance)
		got := speaker.last(t)
		if !strings.HasPrefix(got, "Punto de ruta "+tt.want.Name+".") {
			t.Errorf("%q resolved to %q, want waypoint %s", tt.utterance, got, tt.want.Name)
		}
	}
}

func TestWaypointByName(t *testing.T) {
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto punto embalse")

	got := speaker.last(t)
	if !strings.HasPrefix(got, "Punto de ruta Embalse. Rumbo 310 grados") {
		t.Errorf("spoke %q", got)
	}
}

func TestWaypointEnumerationFallback(t *testing.T) {
	i, repo, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto punto desconocido")

	got := speaker.last(t)
	for idx, wp := range repo.routes[0].Waypoints {
		if !strings.Contains(got, wp.Name) {
			t.Errorf("enumeration %q missing waypoint %d (%s)", got, idx+1, wp.Name)
		}
	}
	if !strings.HasSuffix(got, "¿De cuál quieres detalles?") {
		t.Errorf("enumeration %q missing prompt", got)
	}
}

func TestRouteLoad(t *testing.T) {
	i, repo, _, _, speaker := newTestInterpreter(t)
	repo.routes = append(repo.routes, flightdata.Route{
		ID:   "rta-llanura",
		Name: "Llanura",
		Waypoints: []flightdata.Waypoint{
			{ID: "wp-rio", Name: "Río", Heading: 180},
		},
	})

	i.HandleTranscript("copiloto cargar plan de vuelo llanura")

	if got := speaker.last(t); got != "Plan de vuelo Llanura cargado. Tiene 1 puntos de ruta." {
		t.Errorf("spoke %q", got)
	}
	if repo.activeID != "rta-llanura" {
		t.Errorf("active route = %q", repo.activeID)
	}
}

func TestAerodromeByCode(t *testing.T) {
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto aeródromo lecm")

	got := speaker.last(t)
	if !strings.HasPrefix(got, "Aeródromo Camarenilla, código lima eco charlie mike.") {
		t.Errorf("spoke %q", got)
	}
	// Two frequencies joined with "y", each read digit by digit.
	if !strings.Contains(got, "uno tres cero decimal uno dos cinco y uno dos tres decimal cinco cero cero") {
		t.Errorf("frequencies not spelled out: %q", got)
	}
}

func TestAerodromeByAccentStrippedName(t *testing.T) {
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto aerodromo camarenilla")

	if got := speaker.last(t); !strings.HasPrefix(got, "Aeródromo Camarenilla") {
		t.Errorf("spoke %q", got)
	}
}

func TestAerodromeDefaultsToFirst(t *testing.T) {
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto pistas")

	got := speaker.last(t)
	if !strings.HasPrefix(got, "Aeródromo Soto del Real, código lima eco mike sierra.") {
		t.Errorf("spoke %q", got)
	}
	// Runway 27 carries the optional slope field.
	if !strings.Contains(got, "inclinación menos uno punto cinco porciento") {
		t.Errorf("slope not read out: %q", got)
	}
}

func TestHelp(t *testing.T) {
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto ayuda")

	if got := speaker.last(t); !strings.Contains(got, "Puedes decir") {
		t.Errorf("spoke %q", got)
	}
}

func TestRepeat(t *testing.T) {
	i, _, _, voicelog, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto ayuda")
	help := speaker.last(t)

	i.HandleTranscript("copiloto repite")

	if got := speaker.last(t); got != help {
		t.Errorf("repeat spoke %q, want %q", got, help)
	}
	entry, ok := voicelog.LastSystem()
	if !ok || entry.Text != "Repitiendo: "+help {
		t.Errorf("last system entry = %v", entry)
	}
}

func TestRepeatWithNothingSpoken(t *testing.T) {
	i, _, _, _, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto repetir")

	if got := speaker.last(t); got != "No hay nada que repetir." {
		t.Errorf("spoke %q", got)
	}
}

func TestUnrecognizedCommandIsSilentButLogged(t *testing.T) {
	i, _, _, voicelog, speaker := newTestInterpreter(t)

	i.HandleTranscript("copiloto")
	spokenBefore := len(speaker.spoken)

	i.HandleTranscript("háblame del tiempo")

	if len(speaker.spoken) != spokenBefore {
		t.Errorf("expected silence, spoke %q", speaker.last(t))
	}
	entries := voicelog.Entries()
	last := entries[len(entries)-1]
	if last.Type != session.EntryUser || last.Text != "háblame del tiempo" {
		t.Errorf("last entry = %v, want the raw user utterance", last)
	}
}

func TestSpeakerModeGuardDropsTranscripts(t *testing.T) {
	i, _, state, voicelog, speaker := newTestInterpreter(t)
	state.SetListeningMode(session.ListeningSpeaker)
	state.SetSpeaking(true)

	i.HandleTranscript("copiloto leer checklist prevuelo")

	if len(speaker.spoken) != 0 {
		t.Errorf("expected no dispatch while speaking, spoke %v", speaker.spoken)
	}
	if len(voicelog.Entries()) != 0 {
		t.Errorf("expected no log entries, got %d", len(voicelog.Entries()))
	}
}
