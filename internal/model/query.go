package model

// ChatRequest represents a chat turn request
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
	AIMode    bool   `json:"ai_mode,omitempty"`
	Model     string `json:"model,omitempty"`
}

// ChatResponse represents the response to a chat turn
type ChatResponse struct {
	SessionID   string       `json:"session_id"`
	Reply       string       `json:"reply"`
	SideEffects []SideEffect `json:"side_effects,omitempty"`
	AIMode      bool         `json:"ai_mode"`
	Took        int64        `json:"took_ms"`
}

// ResetRequest represents a session reset request
type ResetRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// ResetResponse represents the response to a session reset
type ResetResponse struct {
	SessionID string `json:"session_id"`
	Success   bool   `json:"success"`
}
