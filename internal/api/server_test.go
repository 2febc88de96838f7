package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sif-medellin/sifgpt/internal/conversation"
	"github.com/sif-medellin/sifgpt/internal/historico"
	"github.com/sif-medellin/sifgpt/internal/intake"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticSource struct {
	snap *historico.Snapshot
}

func (s staticSource) Snapshot() *historico.Snapshot { return s.snap }

type fakeProcessor struct {
	result intake.TurnResult
	calls  int
	last   intake.TurnInput
}

func (f *fakeProcessor) ProcessTurn(_ context.Context, in intake.TurnInput) intake.TurnResult {
	f.calls++
	f.last = in
	return f.result
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, _ io.Reader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func apiSnapshot() *historico.Snapshot {
	records := []historico.Record{
		{
			Radicado:       "202501150001",
			FullName:       "Juan Pérez",
			FiledAt:        "2025-01-15",
			Filed:          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Subject:        "Hueco en la calzada de la carrera 70",
			Classification: "QUEJA",
			Status:         "En proceso",
			Unit:           "Unidad de Mantenimiento",
			Neighborhood:   "Laureles",
		},
		{
			Radicado:       "202502200002",
			FullName:       "María Gómez",
			FiledAt:        "2025-02-20",
			Filed:          time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
			Subject:        "Solicitud de poda de árboles en el separador",
			Classification: "SOLICITUD-INTERÉS GENERAL",
			Status:         "Cerrado",
			Unit:           "Unidad de Obras",
			Neighborhood:   "El Poblado",
		},
		{
			Radicado:       "202503050003",
			FullName:       "Carlos Ruiz",
			FiledAt:        "2025-03-05",
			Filed:          time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			Subject:        "Reclamo por obra inconclusa en el parque",
			Classification: "RECLAMO",
			Status:         "En proceso",
			Unit:           "Unidad de Obras",
			Neighborhood:   "Manrique",
		},
	}
	return &historico.Snapshot{
		Records: records,
		Columns: map[string]bool{
			"numero_radicado":  true,
			"nombre_completo":  true,
			"fecha_radicacion": true,
			"texto_pqrs":       true,
			"clasificacion":    true,
			"estado_pqrs":      true,
			"unidad":           true,
			"barrio":           true,
		},
	}
}

func testServer(proc TurnProcessor, tr Transcriber) *Server {
	engine := historico.New(staticSource{snap: apiSnapshot()}, testLogger())
	return NewServer(8080, proc, engine, tr, conversation.NewMemoryStore(), testLogger())
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
	if body["service"] != "sifgpt" {
		t.Errorf("expected service sifgpt, got %q", body["service"])
	}
	if body["version"] == "" {
		t.Error("expected a version")
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	req := httptest.NewRequest("GET", "/api/v1/pqrs/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["service"] != "sifgpt" {
		t.Errorf("expected service sifgpt, got %q", body["service"])
	}
	if body["registros_historico"] != float64(3) {
		t.Errorf("expected 3 archive records, got %v", body["registros_historico"])
	}
	if body["sesiones_activas"] != float64(0) {
		t.Errorf("expected 0 active sessions, got %v", body["sesiones_activas"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestProcessText(t *testing.T) {
	proc := &fakeProcessor{result: intake.TurnResult{
		Success:  true,
		Response: "Su petición fue registrada.",
		Route:    intake.RouteClassify,
	}}
	srv := testServer(proc, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/pqrs/process-text",
		`{"texto":"Necesito reparación del andén frente a mi casa","session_id":"s-1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	if body["session_id"] != "s-1" {
		t.Errorf("expected session s-1, got %q", body["session_id"])
	}
	if body["respuesta"] != "Su petición fue registrada." {
		t.Errorf("unexpected respuesta: %q", body["respuesta"])
	}
	if body["ruta"] != intake.RouteClassify {
		t.Errorf("expected ruta %q, got %q", intake.RouteClassify, body["ruta"])
	}
	if proc.last.FromAudio {
		t.Error("text input should not be flagged as audio")
	}
	if proc.last.Text != "Necesito reparación del andén frente a mi casa" {
		t.Errorf("processor received wrong text: %q", proc.last.Text)
	}
}

func TestProcessTextGeneratesSessionID(t *testing.T) {
	proc := &fakeProcessor{result: intake.TurnResult{Success: true, Response: "ok"}}
	srv := testServer(proc, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/pqrs/process-text", `{"texto":"Se cayó un muro de contención"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	id, _ := body["session_id"].(string)
	if id == "" {
		t.Fatal("expected a generated session id")
	}
	if proc.last.SessionID != id {
		t.Errorf("processor saw session %q, response says %q", proc.last.SessionID, id)
	}
}

func TestProcessTextLegacyMessageKey(t *testing.T) {
	proc := &fakeProcessor{result: intake.TurnResult{Success: true, Response: "ok"}}
	srv := testServer(proc, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/pqrs/process-text", `{"message":"Se inundó la quebrada del barrio"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if proc.last.Text != "Se inundó la quebrada del barrio" {
		t.Errorf("processor received wrong text: %q", proc.last.Text)
	}
}

func TestProcessTextValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"texto":`},
		{"missing text", `{"session_id":"s-1"}`},
		{"blank text", `{"texto":"   ","message":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			srv := testServer(proc, &fakeTranscriber{})

			w := postJSON(t, srv, "/api/v1/pqrs/process-text", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if proc.calls != 0 {
				t.Errorf("processor should not run, got %d calls", proc.calls)
			}
		})
	}
}

func audioRequest(t *testing.T, path, sessionID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "voice.ogg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte("fake-audio-bytes")); err != nil {
		t.Fatalf("failed to write audio part: %v", err)
	}
	if sessionID != "" {
		if err := mw.WriteField("session_id", sessionID); err != nil {
			t.Fatalf("failed to write session field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProcessAudio(t *testing.T) {
	proc := &fakeProcessor{result: intake.TurnResult{Success: true, Response: "Entendido."}}
	tr := &fakeTranscriber{text: "necesito arreglo de la vía"}
	srv := testServer(proc, tr)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, audioRequest(t, "/api/v1/pqrs/process-audio", "s-audio"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["transcripcion"] != "necesito arreglo de la vía" {
		t.Errorf("unexpected transcripcion: %q", body["transcripcion"])
	}
	if body["session_id"] != "s-audio" {
		t.Errorf("expected session s-audio, got %q", body["session_id"])
	}
	if !proc.last.FromAudio {
		t.Error("audio input should be flagged as audio")
	}
	if proc.last.Text != "necesito arreglo de la vía" {
		t.Errorf("processor received wrong text: %q", proc.last.Text)
	}
}

func TestProcessAudioMissingFile(t *testing.T) {
	proc := &fakeProcessor{}
	srv := testServer(proc, &fakeTranscriber{text: "hola"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("session_id", "s-1"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/v1/pqrs/process-audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if proc.calls != 0 {
		t.Errorf("processor should not run, got %d calls", proc.calls)
	}
}

func TestTranscribeAudio(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{text: "radicado dos cero dos cinco"}
	srv := testServer(proc, tr)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, audioRequest(t, "/api/v1/pqrs/transcribe-audio", "s-2"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	if body["transcripcion"] != "radicado dos cero dos cinco" {
		t.Errorf("unexpected transcripcion: %q", body["transcripcion"])
	}
	if proc.calls != 0 {
		t.Error("transcribe-audio must not run the intake pipeline")
	}
}

func TestTranscribeAudioFailure(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("upstream unavailable")}
	srv := testServer(&fakeProcessor{}, tr)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, audioRequest(t, "/api/v1/pqrs/transcribe-audio", ""))

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Errorf("expected success false, got %v", body["success"])
	}
}

func TestConsultaByRadicado(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/consulta", `{"consulta":"202501150001"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	if body["tipo_consulta"] != historico.SmartKindRadicado {
		t.Errorf("expected tipo %q, got %q", historico.SmartKindRadicado, body["tipo_consulta"])
	}
	info, ok := body["informacion"].(map[string]any)
	if !ok {
		t.Fatalf("expected informacion object, got %T", body["informacion"])
	}
	if info["numero_radicado"] != "202501150001" {
		t.Errorf("unexpected radicado in detail: %q", info["numero_radicado"])
	}
	if info["solicitante"] != "Juan Pérez" {
		t.Errorf("unexpected solicitante: %q", info["solicitante"])
	}
}

func TestConsultaStatistics(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/consulta", `{"consulta":"estadisticas"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["tipo_consulta"] != historico.SmartKindStatistics {
		t.Errorf("expected tipo %q, got %q", historico.SmartKindStatistics, body["tipo_consulta"])
	}
	datos, ok := body["datos"].(map[string]any)
	if !ok {
		t.Fatalf("expected datos object, got %T", body["datos"])
	}
	if datos["total_registros"] != float64(3) {
		t.Errorf("expected total 3, got %v", datos["total_registros"])
	}
}

func TestConsultaExplicitTipo(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/consulta", `{"tipo_consulta":"estadisticas"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["tipo_consulta"] != historico.SmartKindStatistics {
		t.Errorf("expected tipo %q, got %q", historico.SmartKindStatistics, body["tipo_consulta"])
	}
	if _, ok := body["datos"].(map[string]any); !ok {
		t.Fatalf("expected datos object, got %T", body["datos"])
	}
}

func TestConsultaHelp(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/consulta", `{"consulta":"ayuda"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["tipo_consulta"] != historico.SmartKindHelp {
		t.Errorf("expected tipo %q, got %q", historico.SmartKindHelp, body["tipo_consulta"])
	}
	datos, ok := body["datos"].(map[string]any)
	if !ok {
		t.Fatalf("expected datos object, got %T", body["datos"])
	}
	if _, ok := datos["consulta_avanzada"]; !ok {
		t.Error("help payload should describe the advanced query")
	}
}

func TestConsultaByName(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/consulta", `{"consulta":"María Gómez"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["tipo_consulta"] != historico.SmartKindName {
		t.Errorf("expected tipo %q, got %q", historico.SmartKindName, body["tipo_consulta"])
	}
	if body["total_resultados"] != float64(1) {
		t.Errorf("expected 1 result, got %v", body["total_resultados"])
	}
	datos, ok := body["datos"].([]any)
	if !ok || len(datos) != 1 {
		t.Fatalf("expected one record in datos, got %v", body["datos"])
	}
}

func TestConsultaMissingQuery(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/consulta", `{"consulta":"  "}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestConsultaAvanzada(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/avanzada", `{"estado":"En proceso","ordenar_por":"fecha_radicacion","orden":"desc"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	if body["total_resultados"] != float64(2) {
		t.Errorf("expected 2 results, got %v", body["total_resultados"])
	}
	datos, ok := body["datos"].([]any)
	if !ok || len(datos) != 2 {
		t.Fatalf("expected two records, got %v", body["datos"])
	}
	first, _ := datos[0].(map[string]any)
	if first["numero_radicado"] != "202503050003" {
		t.Errorf("expected newest record first, got %q", first["numero_radicado"])
	}
	applied, _ := body["filtros_aplicados"].([]any)
	found := false
	for _, f := range applied {
		if f == "estado" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected estado among applied filters, got %v", applied)
	}
}

func TestConsultaAvanzadaExplicitUnlimited(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/avanzada", `{"estado":"En proceso","limit":0}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total_resultados"] != float64(2) {
		t.Errorf("expected 2 records, got %v", body["total_resultados"])
	}
}

func TestConsultaAvanzadaValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"estado":`},
		{"no filters", `{}`},
		{"only default limit", `{"limit":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

			w := postJSON(t, srv, "/api/v1/historico/avanzada", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestConsultaAvanzadaLimitAloneIsAFilter(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/avanzada", `{"limit":2}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total_resultados"] != float64(2) {
		t.Errorf("expected 2 records, got %v", body["total_resultados"])
	}
}

func TestSugerencias(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/sugerencias", `{"texto":"obras"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	sug, ok := body["sugerencias"].([]any)
	if !ok || len(sug) != 1 {
		t.Fatalf("expected one suggestion, got %v", body["sugerencias"])
	}
	if sug[0] != "Unidad: Unidad de Obras" {
		t.Errorf("unexpected suggestion: %q", sug[0])
	}
	if body["texto_busqueda"] != "obras" {
		t.Errorf("expected texto_busqueda obras, got %q", body["texto_busqueda"])
	}
	if body["total_sugerencias"] != float64(1) {
		t.Errorf("expected total 1, got %v", body["total_sugerencias"])
	}
}

func TestSugerenciasTooShort(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/sugerencias", `{"texto":"q"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFiltros(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	req := httptest.NewRequest("GET", "/api/v1/historico/filtros", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total_registros"] != float64(3) {
		t.Errorf("expected 3 records, got %v", body["total_registros"])
	}
	filtros, ok := body["filtros_disponibles"].(map[string]any)
	if !ok {
		t.Fatalf("expected filtros object, got %T", body["filtros_disponibles"])
	}
	campos, _ := filtros["campos_ordenamiento"].([]any)
	if len(campos) != len(historico.SortFields) {
		t.Errorf("expected %d sort fields, got %d", len(historico.SortFields), len(campos))
	}
	estados, _ := filtros["estados"].([]any)
	if len(estados) != 2 {
		t.Errorf("expected 2 distinct statuses, got %v", estados)
	}
}

func TestEstadisticas(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	req := httptest.NewRequest("GET", "/api/v1/historico/estadisticas", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	stats, ok := body["estadisticas"].(map[string]any)
	if !ok {
		t.Fatalf("expected estadisticas object, got %T", body["estadisticas"])
	}
	if stats["total_registros"] != float64(3) {
		t.Errorf("expected total 3, got %v", stats["total_registros"])
	}
	porAno, ok := stats["por_año"].(map[string]any)
	if !ok {
		t.Fatalf("expected por_año object, got %T", stats["por_año"])
	}
	if porAno["2025"] != float64(3) {
		t.Errorf("expected 3 filings in 2025, got %v", porAno["2025"])
	}
}

func TestExportarJSON(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/exportar", `{"filtros":{"estado":"En proceso"}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["formato"] != "json" {
		t.Errorf("expected formato json, got %q", body["formato"])
	}
	if body["total_registros"] != float64(2) {
		t.Errorf("expected 2 records, got %v", body["total_registros"])
	}
	datos, ok := body["datos"].([]any)
	if !ok || len(datos) != 2 {
		t.Fatalf("expected two records, got %v", body["datos"])
	}
}

func TestExportarCSV(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/exportar", `{"filtros":{"radicado":"202501150001"},"formato":"csv"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "numero_radicado,") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "202501150001,") {
		t.Errorf("unexpected row: %q", lines[1])
	}
}

func TestExportarMissingFiltros(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	w := postJSON(t, srv, "/api/v1/historico/exportar", `{"formato":"csv"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDashboard(t *testing.T) {
	srv := testServer(&fakeProcessor{}, &fakeTranscriber{})

	req := httptest.NewRequest("GET", "/api/v1/historico/dashboard", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	dash, ok := body["dashboard"].(map[string]any)
	if !ok {
		t.Fatalf("expected dashboard object, got %T", body["dashboard"])
	}
	metricas, ok := dash["metricas"].(map[string]any)
	if !ok {
		t.Fatalf("expected metricas object, got %T", dash["metricas"])
	}
	if metricas["total_pqrs"] != float64(3) {
		t.Errorf("expected 3 total, got %v", metricas["total_pqrs"])
	}
	if dash["ultima_actualizacion"] == "" {
		t.Error("expected a timestamp")
	}
}
