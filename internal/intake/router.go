// Package intake drives one conversation turn through sanitization,
// case id extraction, the classification gate, the oracles and the
// per-session context bookkeeping.
package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sif-medellin/sifgpt/internal/caseid"
	"github.com/sif-medellin/sifgpt/internal/classifier"
	"github.com/sif-medellin/sifgpt/internal/conversation"
	"github.com/sif-medellin/sifgpt/internal/historico"
	"github.com/sif-medellin/sifgpt/internal/transcript"
)

// Routes a turn can take through the pipeline.
const (
	RouteCaseLookup = "case_lookup"
	RouteClassify   = "classify"
	RouteContextual = "contextual_reply"
	RouteRejected   = "rejected"
)

// contextualClase marks turns answered without any prior classification.
const contextualClase = "conversación"

// Classifier is the classification oracle.
type Classifier interface {
	Classify(ctx context.Context, text string) (*classifier.Classification, error)
}

// Responder is the generation oracle.
type Responder interface {
	Generate(ctx context.Context, c *classifier.Classification, text string, conv *conversation.Context) (string, error)
}

// RecordFinder resolves radicados against the archive.
type RecordFinder interface {
	FindByRadicado(radicado string) (historico.Record, bool)
}

// EventSink receives a notification per processed turn. Nil disables
// publishing.
type EventSink interface {
	TurnProcessed(ctx context.Context, e TurnEvent)
}

// TurnEvent describes one processed turn for downstream consumers.
type TurnEvent struct {
	SessionID string `json:"session_id"`
	Route     string `json:"route"`
	Clase     string `json:"clase,omitempty"`
	Radicado  string `json:"radicado,omitempty"`
	FromAudio bool   `json:"from_audio"`
}

// TurnInput is one raw citizen message.
type TurnInput struct {
	SessionID string
	Text      string
	FromAudio bool
}

// TurnResult is the router's answer for one turn. Success stays true
// through oracle failures so the citizen always gets a reply; Err
// carries the diagnostic when a degraded reply was substituted.
type TurnResult struct {
	Success        bool
	Response       string
	Route          string
	Context        *conversation.Context
	Classification *classifier.Classification
	Err            error
}

// Router processes turns. It holds no per-session state itself; the
// caller must serialize turns within a session.
type Router struct {
	sanitizer *transcript.Sanitizer
	extractor *caseid.Extractor
	sessions  conversation.Store
	oracle    Classifier
	generator Responder
	records   RecordFinder
	events    EventSink
	logger    *slog.Logger
}

func New(
	sanitizer *transcript.Sanitizer,
	extractor *caseid.Extractor,
	sessions conversation.Store,
	oracle Classifier,
	generator Responder,
	records RecordFinder,
	events EventSink,
	logger *slog.Logger,
) *Router {
	return &Router{
		sanitizer: sanitizer,
		extractor: extractor,
		sessions:  sessions,
		oracle:    oracle,
		generator: generator,
		records:   records,
		events:    events,
		logger:    logger,
	}
}

// ProcessTurn handles exactly one turn: audio transcripts are cleaned
// first, then a mentioned radicado short-circuits into a lookup, and
// everything else either goes to the classification oracle or reuses
// the session's last classification before the reply is generated.
func (r *Router) ProcessTurn(ctx context.Context, in TurnInput) TurnResult {
	conv := r.load(ctx, in.SessionID)

	text := strings.TrimSpace(in.Text)
	if in.FromAudio {
		cleaned, err := r.sanitizer.Sanitize(text)
		if err != nil {
			r.logger.Warn("transcript rejected",
				"session_id", in.SessionID, "error", err)
			return TurnResult{Response: replyRepeat, Route: RouteRejected, Context: conv, Err: err}
		}
		text = cleaned
	}

	if radicado, ok := r.extractor.Extract(text); ok {
		return r.lookupCase(ctx, conv, in, text, radicado)
	}

	route := RouteContextual
	var result *classifier.Classification
	if requiresFullClassification(text, conv) {
		route = RouteClassify
		classified, err := r.oracle.Classify(ctx, text)
		if err != nil {
			return r.degraded(ctx, conv, in, text, route, err)
		}
		result = classified
		conv.AddClassification(conversation.ClassificationSummary{
			Clase:       result.Clase,
			RequestType: result.RequestType,
			Topic:       result.Topic,
		})
		conv.AbsorbUserInfo(conversation.UserInfo{
			Name:         result.Name,
			Phone:        result.Phone,
			IDDocument:   result.IDDocument,
			Neighborhood: result.Neighborhood,
		})
	} else {
		result = contextualClassification(conv, text)
	}

	reply, err := r.generator.Generate(ctx, result, text, conv)
	if err != nil {
		return r.degraded(ctx, conv, in, text, route, err)
	}

	conv.AddTurn("user", text)
	conv.AddTurn("assistant", reply)
	r.save(ctx, conv)
	r.publish(ctx, in, route, result.Clase, conv.CurrentRadicado)

	r.logger.Info("turn processed",
		"session_id", in.SessionID,
		"route", route,
		"clase", result.Clase)

	return TurnResult{
		Success:        true,
		Response:       reply,
		Route:          route,
		Context:        conv,
		Classification: result,
	}
}

func (r *Router) lookupCase(ctx context.Context, conv *conversation.Context, in TurnInput, text, radicado string) TurnResult {
	conv.CurrentRadicado = radicado

	rec, found := r.records.FindByRadicado(radicado)
	var reply string
	if found {
		reply = caseFoundReply(rec)
	} else {
		r.logger.Info("radicado not in archive",
			"session_id", in.SessionID, "radicado", radicado)
		reply = caseNotFoundReply(radicado)
	}

	conv.AddTurn("user", text)
	conv.AddTurn("assistant", reply)
	r.save(ctx, conv)
	r.publish(ctx, in, RouteCaseLookup, "", radicado)

	r.logger.Info("turn processed",
		"session_id", in.SessionID,
		"route", RouteCaseLookup,
		"radicado", radicado,
		"found", found)

	return TurnResult{Success: true, Response: reply, Route: RouteCaseLookup, Context: conv}
}

// degraded substitutes the fixed apology after an oracle failure. The
// turn is still recorded so the session keeps its shape, and Success
// stays true: continuity for the citizen outranks surfacing internals.
func (r *Router) degraded(ctx context.Context, conv *conversation.Context, in TurnInput, text, route string, err error) TurnResult {
	r.logger.Error("oracle call failed, substituting degraded reply",
		"session_id", in.SessionID, "route", route, "error", err)

	conv.AddTurn("user", text)
	conv.AddTurn("assistant", replyDegraded)
	r.save(ctx, conv)

	return TurnResult{Success: true, Response: replyDegraded, Route: route, Context: conv, Err: err}
}

// contextualClassification reuses the last full classification for a
// follow-up turn, falling back to a plain conversational class when
// nothing has been classified yet.
func contextualClassification(conv *conversation.Context, text string) *classifier.Classification {
	c := &classifier.Classification{Clase: contextualClase, Explanation: text}
	if last, ok := conv.LastClassification(); ok {
		c.Clase = last.Clase
		c.RequestType = last.RequestType
		c.Topic = last.Topic
	}
	return c
}

func (r *Router) load(ctx context.Context, sessionID string) *conversation.Context {
	conv, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, conversation.ErrNotFound) {
			r.logger.Error("failed to load conversation context",
				"session_id", sessionID, "error", err)
		}
		return conversation.NewContext(sessionID)
	}
	return conv
}

func (r *Router) save(ctx context.Context, conv *conversation.Context) {
	if err := r.sessions.Put(ctx, conv); err != nil {
		r.logger.Error("failed to save conversation context",
			"session_id", conv.SessionID, "error", err)
	}
}

func (r *Router) publish(ctx context.Context, in TurnInput, route, clase, radicado string) {
	if r.events == nil {
		return
	}
	r.events.TurnProcessed(ctx, TurnEvent{
		SessionID: in.SessionID,
		Route:     route,
		Clase:     clase,
		Radicado:  radicado,
		FromAudio: in.FromAudio,
	})
}
