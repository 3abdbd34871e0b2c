package models

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply. Accepted is false when the
// submission was ignored (blank input or a reply already in flight).
type ChatResponse struct {
	Accepted  bool        `json:"accepted"`
	Reply     string      `json:"reply,omitempty"`
	ReplyHTML string      `json:"reply_html,omitempty"`
	Session   interface{} `json:"session"`
}

type DraftRequest struct {
	Text string `json:"text"`
}
