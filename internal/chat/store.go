// Package chat keeps per-session conversation state: an in-process message
// cache hydrated from the chathistory table, plus a TTL cache of computed
// impact summaries. The database stays the source of truth; everything here
// is per-process state.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/model"
)

// HistoryRepo is the persistence behind the store.
type HistoryRepo interface {
	GetChatHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
	InsertChatTurn(ctx context.Context, turn model.ChatTurn) error
	DeleteChatHistory(ctx context.Context, sessionID string) error
}

// SessionKey builds the composite session identifier. The delimiter keeps
// ("1","23") and ("12","3") distinct.
func SessionKey(sessionID, incidentID string) string {
	return sessionID + ":" + incidentID
}

type Store struct {
	mu       sync.Mutex
	sessions map[string][]model.ChatMessage
	repo     HistoryRepo
	log      zerolog.Logger
	wg       sync.WaitGroup
}

func NewStore(repo HistoryRepo, log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string][]model.ChatMessage),
		repo:     repo,
		log:      log.With().Str("component", "chat-store").Logger(),
	}
}

// History returns the session messages oldest first, hydrating from the
// database on first access for the key.
func (s *Store) History(ctx context.Context, key string) ([]model.ChatMessage, error) {
	s.mu.Lock()
	if msgs, ok := s.sessions[key]; ok {
		out := make([]model.ChatMessage, len(msgs))
		copy(out, msgs)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	turns, err := s.repo.GetChatHistory(ctx, key)
	if err != nil {
		return nil, err
	}
	msgs := make([]model.ChatMessage, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs,
			model.ChatMessage{Role: model.RoleUser, Content: t.Question},
			model.ChatMessage{Role: model.RoleAssistant, Content: t.Answer},
		)
	}

	s.mu.Lock()
	// Another goroutine may have hydrated meanwhile; keep its copy.
	if existing, ok := s.sessions[key]; ok {
		msgs = existing
	} else {
		s.sessions[key] = msgs
	}
	out := make([]model.ChatMessage, len(msgs))
	copy(out, msgs)
	s.mu.Unlock()
	return out, nil
}

// AppendTurn records one question/answer exchange in memory and persists it
// asynchronously. A failed write is logged; the database copy catches up on
// the next hydration.
func (s *Store) AppendTurn(key, question, answer string) {
	s.mu.Lock()
	s.sessions[key] = append(s.sessions[key],
		model.ChatMessage{Role: model.RoleUser, Content: question},
		model.ChatMessage{Role: model.RoleAssistant, Content: answer},
	)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		turn := model.ChatTurn{SessionID: key, Question: question, Answer: answer}
		if err := s.repo.InsertChatTurn(ctx, turn); err != nil {
			s.log.Error().Err(err).Str("session", key).Msg("failed to persist chat turn")
		}
	}()
}

// Delete removes the session from the database and from memory. Deleting a
// session that has no history succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.repo.DeleteChatHistory(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	return nil
}

// Flush waits for pending asynchronous persists; used at shutdown.
func (s *Store) Flush() {
	s.wg.Wait()
}
