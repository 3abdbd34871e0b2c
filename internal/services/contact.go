package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"portfolio-backend/internal/log"
	"portfolio-backend/internal/models"
)

const (
	formspreeBaseURL = "https://formspree.io/f/"
	maxMessageLength = 5000
)

// ContactService delivers contact form submissions. Formspree takes priority
// when a form ID is configured; otherwise mail goes out through EmailService.
type ContactService struct {
	formspreeURL string
	httpClient   *http.Client
	email        *EmailService
	to           string
}

func NewContactService(formspreeFormID string, email *EmailService, to string) *ContactService {
	s := &ContactService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		email:      email,
		to:         to,
	}
	if formspreeFormID != "" {
		s.formspreeURL = formspreeBaseURL + formspreeFormID
	}
	return s
}

func (s *ContactService) Send(ctx context.Context, req models.ContactRequest) error {
	req = trimContact(req)
	if err := validateContact(req); err != nil {
		return err
	}

	if s.formspreeURL != "" {
		return s.sendFormspree(ctx, req)
	}
	if err := s.email.SendContactMessage(s.to, req); err != nil {
		log.Error("Contact email failed", err)
		return &DeliveryError{Message: "Failed to send message. Please try again."}
	}
	return nil
}

type formspreePayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	// Formspree control fields
	MailSubject string `json:"_subject"`
	ReplyTo     string `json:"_reply"`
}

type formspreeResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *ContactService) sendFormspree(ctx context.Context, req models.ContactRequest) error {
	body, err := json.Marshal(formspreePayload{
		Name:        req.Name,
		Email:       req.Email,
		Subject:     req.Subject,
		Message:     req.Message,
		MailSubject: fmt.Sprintf("New Portfolio Message from %s: %s", req.Name, req.Subject),
		ReplyTo:     req.Email,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal contact payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.formspreeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create contact request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.Error("Formspree request failed", err)
		return &DeliveryError{Message: "An unexpected error occurred. Please try again."}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("Formspree returned status %d", resp.StatusCode)
		return &DeliveryError{Message: fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)}
	}

	var out formspreeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &DeliveryError{Message: "Failed to send message. Please try again."}
	}
	if !out.OK {
		if out.Error != "" {
			return &DeliveryError{Message: out.Error}
		}
		return &DeliveryError{Message: "Failed to send message. Please try again."}
	}
	return nil
}

func trimContact(req models.ContactRequest) models.ContactRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	return req
}

func validateContact(req models.ContactRequest) error {
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "Name is required"
	}
	if req.Email == "" {
		fields["email"] = "Email is required"
	} else if !looksLikeEmail(req.Email) {
		fields["email"] = "Email is invalid"
	}
	if req.Subject == "" {
		fields["subject"] = "Subject is required"
	}
	if req.Message == "" {
		fields["message"] = "Message is required"
	} else if utf8.RuneCountInString(req.Message) > maxMessageLength {
		fields["message"] = fmt.Sprintf("Message must be at most %d characters", maxMessageLength)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func looksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at <= 0 || strings.ContainsAny(s, " \r\n") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
