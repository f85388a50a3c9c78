package db

import (
	"context"

	"github.com/223MapAction/Model-deploy/internal/model"
)

// EnsureChatHistorySchema creates the chat history table if absent. The
// serial id preserves insertion order for history reconstruction.
func (db *Postgres) EnsureChatHistorySchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS "Mapapi_chathistory" (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL
		)
		`,
		`CREATE INDEX IF NOT EXISTS chathistory_session_idx ON "Mapapi_chathistory"(session_id, id)`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertChatTurn appends one question/answer pair to the session history.
func (db *Postgres) InsertChatTurn(ctx context.Context, turn model.ChatTurn) error {
	query := `
		INSERT INTO "Mapapi_chathistory" (session_id, question, answer)
		VALUES ($1, $2, $3)
	`
	_, err := db.Pool.Exec(ctx, query, turn.SessionID, turn.Question, turn.Answer)
	return err
}

// GetChatHistory returns the persisted turns of a session in insertion order.
func (db *Postgres) GetChatHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	query := `
		SELECT session_id, question, answer
		FROM "Mapapi_chathistory"
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []model.ChatTurn
	for rows.Next() {
		var t model.ChatTurn
		if err := rows.Scan(&t.SessionID, &t.Question, &t.Answer); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if turns == nil {
		turns = []model.ChatTurn{}
	}
	return turns, rows.Err()
}

// DeleteChatHistory removes every turn of a session. Deleting a session with
// no history is a no-op, not an error.
func (db *Postgres) DeleteChatHistory(ctx context.Context, sessionID string) error {
	query := `
		DELETE FROM "Mapapi_chathistory"
		WHERE session_id = $1
	`
	_, err := db.Pool.Exec(ctx, query, sessionID)
	return err
}
