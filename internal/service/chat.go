package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/chat"
	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/prompt"
)

// ErrUnknownIncident is returned when a chat references an incident that has
// no persisted prediction.
var ErrUnknownIncident = errors.New("no prediction found for incident")

// Answer shown when the text backend cannot produce a chat reply.
const chatFallback = "Désolé, je ne peux pas traiter votre demande pour le moment."

// PredictionGetter loads the persisted prediction row grounding a chat.
type PredictionGetter interface {
	GetPrediction(ctx context.Context, incidentID string) (*model.Prediction, error)
}

// ChatGenerator is the conversational text backend.
type ChatGenerator interface {
	GenerateChat(ctx context.Context, system string, history []model.ChatMessage, question string) (string, error)
}

// ChatService answers discussion questions about a classified incident,
// grounded on its stored analysis and the cached zone-impact summary.
type ChatService struct {
	predictions PredictionGetter
	llm         ChatGenerator
	store       *chat.Store
	impact      *chat.ImpactCache
	log         zerolog.Logger
}

func NewChatService(predictions PredictionGetter, llm ChatGenerator, store *chat.Store, impact *chat.ImpactCache, log zerolog.Logger) *ChatService {
	return &ChatService{
		predictions: predictions,
		llm:         llm,
		store:       store,
		impact:      impact,
		log:         log.With().Str("component", "chat").Logger(),
	}
}

// Answer resolves the incident context, generates a reply from the session
// history and records the new turn. A text-backend failure degrades to a
// fixed apology that is still recorded, so the session stays consistent.
func (s *ChatService) Answer(ctx context.Context, cmd model.ChatCommand) (string, error) {
	p, err := s.predictions.GetPrediction(ctx, cmd.IncidentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrUnknownIncident, cmd.IncidentID)
		}
		return "", fmt.Errorf("failed to load prediction for %s: %w", cmd.IncidentID, err)
	}

	incidentCtx := model.IncidentContext{
		IncidentType:  p.IncidentType,
		Analysis:      p.Analysis,
		PisteSolution: p.PisteSolution,
	}
	if impact, ok := s.impact.Get(cmd.IncidentID); ok {
		incidentCtx.ImpactSummary = impact
	}

	key := chat.SessionKey(cmd.SessionID, cmd.IncidentID)
	history, err := s.store.History(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to load chat history: %w", err)
	}

	answer, err := s.llm.GenerateChat(ctx, prompt.ChatSystem(incidentCtx), history, cmd.Question)
	if err != nil {
		s.log.Error().Err(err).Str("session_key", key).Msg("chat generation failed")
		answer = chatFallback
	}

	s.store.AppendTurn(key, cmd.Question, answer)
	return answer, nil
}

// DeleteChat removes a session from store and database.
func (s *ChatService) DeleteChat(ctx context.Context, sessionID, incidentID string) error {
	return s.store.Delete(ctx, chat.SessionKey(sessionID, incidentID))
}

// History returns the recorded messages for one composite session key.
func (s *ChatService) History(ctx context.Context, key string) ([]model.ChatMessage, error) {
	return s.store.History(ctx, key)
}
