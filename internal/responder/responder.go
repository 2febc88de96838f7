package responder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sif-medellin/sifgpt/internal/classifier"
	"github.com/sif-medellin/sifgpt/internal/conversation"
	"github.com/sif-medellin/sifgpt/internal/openai"
)

// fallbackName addresses citizens who have not given a name yet.
const fallbackName = "Ciudadano/a"

// Service drafts citizen-facing replies through the LLM oracle, one path
// for FAQ questions and one for classified requests.
type Service struct {
	llm    *openai.Client
	logger *slog.Logger
}

func New(llm *openai.Client, logger *slog.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Generate produces the reply for a classified turn. Prior turns ride along
// as chat history so follow-ups stay coherent.
func (s *Service) Generate(ctx context.Context, c *classifier.Classification, text string, conv *conversation.Context) (string, error) {
	var system, user string
	if c.IsFAQ {
		system = fmt.Sprintf(faqSystemPrompt, faqKnowledge)
		user = fmt.Sprintf(faqUserPrompt, text)
	} else {
		system = fmt.Sprintf(standardSystemPrompt, faqKnowledge)
		user = fmt.Sprintf(standardUserPrompt,
			requesterName(c, conv),
			time.Now().Format("02/01/2006"),
			c.Clase,
			orDefault(c.RequestType, c.Clase),
			c.Unit,
			orDefault(c.Topic, "Infraestructura física"),
			text,
		)
	}

	messages := append(historyMessages(conv), openai.Message{Role: "user", Content: user})

	s.logger.Info("generating reply",
		"es_faq", c.IsFAQ,
		"history_turns", len(messages)-1,
	)

	reply, err := s.llm.Complete(ctx, system, messages, 1024)
	if err != nil {
		return "", fmt.Errorf("llm generation: %w", err)
	}
	return reply, nil
}

// historyMessages converts stored turns into chat messages. The window is
// already capped by the conversation package.
func historyMessages(conv *conversation.Context) []openai.Message {
	if conv == nil || len(conv.Turns) == 0 {
		return nil
	}
	msgs := make([]openai.Message, 0, len(conv.Turns))
	for _, t := range conv.Turns {
		role := t.Role
		if role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, openai.Message{Role: role, Content: t.Text})
	}
	return msgs
}

func requesterName(c *classifier.Classification, conv *conversation.Context) string {
	if c.Name != "" {
		return c.Name
	}
	if conv != nil && conv.User.Name != "" {
		return conv.User.Name
	}
	return fallbackName
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
