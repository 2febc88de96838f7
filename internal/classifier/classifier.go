package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sif-medellin/sifgpt/internal/openai"
)

// Service turns free-form citizen messages into Classifications through the
// LLM oracle.
type Service struct {
	llm    *openai.Client
	logger *slog.Logger
}

func New(llm *openai.Client, logger *slog.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// wirePayload mirrors the JSON the oracle is prompted to return. es_faq
// travels as "Sí"/"No" on the wire and becomes a bool on Classification.
type wirePayload struct {
	Nombre          string `json:"nombre"`
	Telefono        string `json:"telefono"`
	Cedula          string `json:"cedula"`
	Clase           string `json:"clase"`
	TipoSolicitud   string `json:"tipo_solicitud"`
	TemaPrincipal   string `json:"tema_principal"`
	EntidadResponde string `json:"entidad_responde"`
	Barrio          string `json:"barrio"`
	Explicacion     string `json:"explicacion"`
	Radicado        string `json:"radicado"`
	EsFAQ           string `json:"es_faq"`
}

// Classify runs a full classification of one message.
func (s *Service) Classify(ctx context.Context, text string) (*Classification, error) {
	messages := []openai.Message{
		{Role: "user", Content: fmt.Sprintf(classificationUserPrompt, text)},
	}

	s.logger.Info("classifying message", "text_len", len(text))

	raw, err := s.llm.CompleteJSON(ctx, classificationSystemPrompt, messages, 1024)
	if err != nil {
		return nil, fmt.Errorf("llm classification: %w", err)
	}

	var resp wirePayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		s.logger.Error("failed to parse classification response",
			"error", err,
			"raw", raw,
		)
		return nil, fmt.Errorf("parse classification: %w", err)
	}

	c := &Classification{
		Name:         strings.TrimSpace(resp.Nombre),
		Phone:        strings.TrimSpace(resp.Telefono),
		IDDocument:   strings.TrimSpace(resp.Cedula),
		Clase:        strings.TrimSpace(resp.Clase),
		RequestType:  strings.TrimSpace(resp.TipoSolicitud),
		Topic:        strings.TrimSpace(resp.TemaPrincipal),
		Unit:         strings.TrimSpace(resp.EntidadResponde),
		Neighborhood: strings.TrimSpace(resp.Barrio),
		Explanation:  strings.TrimSpace(resp.Explicacion),
		Radicado:     strings.TrimSpace(resp.Radicado),
		IsFAQ:        isAffirmative(resp.EsFAQ),
	}
	c.applyDefaults()

	s.logger.Info("message classified",
		"clase", c.Clase,
		"es_faq", c.IsFAQ,
		"has_radicado", c.Radicado != "",
	)

	return c, nil
}

// stripFences removes markdown code fences some models wrap around JSON
// even in JSON mode.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isAffirmative(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sí", "si", "yes", "true":
		return true
	}
	return false
}
