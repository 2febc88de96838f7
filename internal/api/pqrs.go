package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sif-medellin/sifgpt/internal/classifier"
	"github.com/sif-medellin/sifgpt/internal/intake"
)

// maxAudioUpload caps in-memory parsing of audio uploads at 32 MiB.
const maxAudioUpload = 32 << 20

// processTextRequest accepts both the legacy "message" key and the
// newer "texto" one; texto wins when both are present.
type processTextRequest struct {
	Texto     string `json:"texto"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (r processTextRequest) text() string {
	if t := strings.TrimSpace(r.Texto); t != "" {
		return t
	}
	return strings.TrimSpace(r.Message)
}

type turnResponse struct {
	Success       bool                       `json:"success"`
	Respuesta     string                     `json:"respuesta"`
	SessionID     string                     `json:"session_id"`
	Ruta          string                     `json:"ruta"`
	Clasificacion *classifier.Classification `json:"clasificacion,omitempty"`
	Transcripcion string                     `json:"transcripcion,omitempty"`
	Error         string                     `json:"error,omitempty"`
}

func (s *Server) processText(w http.ResponseWriter, r *http.Request) {
	var req processTextRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	text := req.text()
	if text == "" {
		s.writeError(w, http.StatusBadRequest, "Mensaje no proporcionado")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result := s.processor.ProcessTurn(r.Context(), intake.TurnInput{
		SessionID: sessionID,
		Text:      text,
	})

	s.writeJSON(w, http.StatusOK, turnResponseFrom(result, sessionID, ""))
}

func (s *Server) processAudio(w http.ResponseWriter, r *http.Request) {
	transcript, sessionID, ok := s.transcribeUpload(w, r)
	if !ok {
		return
	}

	result := s.processor.ProcessTurn(r.Context(), intake.TurnInput{
		SessionID: sessionID,
		Text:      transcript,
		FromAudio: true,
	})

	s.writeJSON(w, http.StatusOK, turnResponseFrom(result, sessionID, transcript))
}

func (s *Server) transcribeAudio(w http.ResponseWriter, r *http.Request) {
	transcript, sessionID, ok := s.transcribeUpload(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"session_id":    sessionID,
		"transcripcion": transcript,
	})
}

// transcribeUpload pulls the "audio" part out of a multipart request
// and runs it through the transcriber. It writes the error response
// itself and reports ok=false when the caller should stop.
func (s *Server) transcribeUpload(w http.ResponseWriter, r *http.Request) (transcript, sessionID string, ok bool) {
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		s.writeError(w, http.StatusBadRequest, "se esperaba un formulario multipart con el archivo 'audio'")
		return "", "", false
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "el archivo 'audio' es requerido")
		return "", "", false
	}
	defer file.Close()

	sessionID = r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	transcript, err = s.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		s.logger.Error("transcription failed", "filename", header.Filename, "error", err)
		s.writeError(w, http.StatusBadGateway, "no fue posible transcribir el audio")
		return "", "", false
	}
	return transcript, sessionID, true
}

func turnResponseFrom(result intake.TurnResult, sessionID, transcript string) turnResponse {
	resp := turnResponse{
		Success:       result.Success,
		Respuesta:     result.Response,
		SessionID:     sessionID,
		Ruta:          result.Route,
		Clasificacion: result.Classification,
		Transcripcion: transcript,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	return resp
}
