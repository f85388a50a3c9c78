package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/chat"
	"github.com/223MapAction/Model-deploy/internal/model"
)

type fakePredictions struct {
	rows map[string]*model.Prediction
}

func (f *fakePredictions) GetPrediction(ctx context.Context, incidentID string) (*model.Prediction, error) {
	p, ok := f.rows[incidentID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type fakeChatGenerator struct {
	fail       bool
	lastSystem string
	history    []model.ChatMessage
}

func (g *fakeChatGenerator) GenerateChat(ctx context.Context, system string, history []model.ChatMessage, question string) (string, error) {
	if g.fail {
		return "", errors.New("backend unavailable")
	}
	g.lastSystem = system
	g.history = history
	return "réponse à " + question, nil
}

type memHistoryRepo struct {
	mu    sync.Mutex
	turns map[string][]model.ChatTurn
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{turns: make(map[string][]model.ChatTurn)}
}

func (r *memHistoryRepo) GetChatHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turns[sessionID], nil
}

func (r *memHistoryRepo) InsertChatTurn(ctx context.Context, turn model.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[turn.SessionID] = append(r.turns[turn.SessionID], turn)
	return nil
}

func (r *memHistoryRepo) DeleteChatHistory(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.turns, sessionID)
	return nil
}

func newChatService(gen *fakeChatGenerator) (*ChatService, *memHistoryRepo, *chat.Store) {
	predictions := &fakePredictions{rows: map[string]*model.Prediction{
		"inc-1": {
			IncidentID:    "inc-1",
			IncidentType:  "Déchets",
			Analysis:      "analyse stockée",
			PisteSolution: "piste stockée",
		},
	}}
	repo := newMemHistoryRepo()
	store := chat.NewStore(repo, zerolog.Nop())
	impact := chat.NewImpactCache(time.Hour)
	impact.Put("inc-1", "NDVI moyen 0.5")
	svc := NewChatService(predictions, gen, store, impact, zerolog.Nop())
	return svc, repo, store
}

func TestChatAnswer(t *testing.T) {
	gen := &fakeChatGenerator{}
	svc, _, store := newChatService(gen)

	cmd := model.ChatCommand{IncidentID: "inc-1", SessionID: "s1", Question: "Quel est l'impact ?"}
	answer, err := svc.Answer(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "réponse à Quel est l'impact ?" {
		t.Errorf("answer = %q", answer)
	}
	if gen.lastSystem == "" {
		t.Error("system prompt empty")
	}

	store.Flush()
	history, err := svc.History(context.Background(), chat.SessionKey("s1", "inc-1"))
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	if history[0].Role != model.RoleUser || history[1].Role != model.RoleAssistant {
		t.Errorf("roles = %q, %q", history[0].Role, history[1].Role)
	}
}

func TestChatAnswerUnknownIncident(t *testing.T) {
	svc, _, _ := newChatService(&fakeChatGenerator{})

	_, err := svc.Answer(context.Background(), model.ChatCommand{IncidentID: "nope", SessionID: "s1", Question: "?"})
	if !errors.Is(err, ErrUnknownIncident) {
		t.Fatalf("err = %v, want ErrUnknownIncident", err)
	}
}

func TestChatAnswerBackendFailureFallsBack(t *testing.T) {
	svc, repo, store := newChatService(&fakeChatGenerator{fail: true})

	cmd := model.ChatCommand{IncidentID: "inc-1", SessionID: "s9", Question: "Bonjour"}
	answer, err := svc.Answer(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != chatFallback {
		t.Errorf("answer = %q, want fallback", answer)
	}

	// The fallback turn is still recorded.
	store.Flush()
	key := chat.SessionKey("s9", "inc-1")
	repo.mu.Lock()
	turns := repo.turns[key]
	repo.mu.Unlock()
	if len(turns) != 1 || turns[0].Answer != chatFallback {
		t.Errorf("persisted turns = %+v", turns)
	}
}

func TestDeleteChat(t *testing.T) {
	gen := &fakeChatGenerator{}
	svc, _, store := newChatService(gen)

	cmd := model.ChatCommand{IncidentID: "inc-1", SessionID: "s1", Question: "Q"}
	if _, err := svc.Answer(context.Background(), cmd); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	store.Flush()

	if err := svc.DeleteChat(context.Background(), "s1", "inc-1"); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
	history, err := svc.History(context.Background(), chat.SessionKey("s1", "inc-1"))
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history not empty after delete: %v", history)
	}
}
