package models

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse is rendered by the frontend as a transient notification.
type ContactResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
