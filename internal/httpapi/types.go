package httpapi

import "encoding/json"

// GameRequest is the body shared by the game endpoints. Fields are
// optional per endpoint.
type GameRequest struct {
	Guess        string `json:"guess"`
	SessionToken string `json:"sessionToken"`
	Email        string `json:"email"`
	KeepScore    *bool  `json:"keepScore,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type CheckResponse struct {
	Colours []string `json:"colours"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type AnswerResponse struct {
	Word string `json:"word"`
}

type ScoreResponse struct {
	Score string `json:"score"`
}

type GUIDResponse struct {
	GUID string `json:"guid"`
}

type ClientIDResponse struct {
	ClientID string `json:"clientID"`
}

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// GuessPayload incoming
type GuessPayload struct {
	Guess string `json:"guess"`
}

// FeedbackPayload outgoing
type FeedbackPayload struct {
	Guess   string   `json:"guess"`
	Colours []string `json:"colours"`
	Valid   bool     `json:"valid"`
	Solved  bool     `json:"solved"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
