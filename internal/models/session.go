package models

type CreateSessionRequest struct {
	Fragment string `json:"fragment"`
}

type CreateSessionResponse struct {
	Token   string      `json:"token"`
	Session interface{} `json:"session"`
}

type NavigateRequest struct {
	Target string `json:"target"`
}

type FragmentRequest struct {
	Fragment string `json:"fragment"`
}

type VisibilityEntry struct {
	SectionID      string  `json:"section_id"`
	IsIntersecting bool    `json:"is_intersecting"`
	Ratio          float64 `json:"ratio"`
}

type VisibilityRequest struct {
	Entries []VisibilityEntry `json:"entries"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
