package model

// ChatCommand is one client frame on the /ws/chat socket. Action is empty for
// a normal question and "delete_chat" to drop the session history.
type ChatCommand struct {
	Action     string `json:"action"`
	IncidentID string `json:"incident_id"`
	SessionID  string `json:"session_id"`
	Question   string `json:"question"`
}

// ChatAnswer is the server reply to a question frame.
type ChatAnswer struct {
	IncidentID string `json:"incident_id"`
	SessionID  string `json:"session_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ChatMessage is one turn of a session history, oldest first.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one persisted question/answer pair of "Mapapi_chathistory".
type ChatTurn struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// IncidentContext is the stored prediction context handed to the chat model.
type IncidentContext struct {
	IncidentType  string `json:"type_incident"`
	Analysis      string `json:"analysis"`
	PisteSolution string `json:"piste_solution"`
	ImpactSummary string `json:"impact_summary,omitempty"`
}
