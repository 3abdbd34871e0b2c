package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/models"
)

func validContact() models.ContactRequest {
	return models.ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Collaboration",
		Message: "Let's build something.",
	}
}

func TestValidateContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*models.ContactRequest)
		wantField string
	}{
		{"missing name", func(r *models.ContactRequest) { r.Name = "" }, "name"},
		{"missing email", func(r *models.ContactRequest) { r.Email = "" }, "email"},
		{"email without at", func(r *models.ContactRequest) { r.Email = "ada.example.com" }, "email"},
		{"email without dot", func(r *models.ContactRequest) { r.Email = "ada@example" }, "email"},
		{"missing subject", func(r *models.ContactRequest) { r.Subject = "" }, "subject"},
		{"missing message", func(r *models.ContactRequest) { r.Message = "" }, "message"},
		{"message too long", func(r *models.ContactRequest) { r.Message = strings.Repeat("x", maxMessageLength+1) }, "message"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := validContact()
			tc.mutate(&req)

			err := validateContact(req)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Fields, tc.wantField)
		})
	}

	assert.NoError(t, validateContact(validContact()))
}

func TestSendFormspree(t *testing.T) {
	t.Parallel()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	svc := NewContactService("", NewEmailService("", "", "", "", ""), "")
	svc.formspreeURL = srv.URL

	require.NoError(t, svc.Send(context.Background(), validContact()))
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, "ada@example.com", got["_reply"])
	assert.Equal(t, "New Portfolio Message from Ada: Collaboration", got["_subject"])
}

func TestSendFormspreeFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"http error", http.StatusInternalServerError, `{}`, "HTTP error! status: 500"},
		{"not ok with error", http.StatusOK, `{"ok":false,"error":"spam detected"}`, "spam detected"},
		{"not ok without error", http.StatusOK, `{"ok":false}`, "Failed to send message. Please try again."},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			svc := NewContactService("", nil, "")
			svc.formspreeURL = srv.URL

			err := svc.Send(context.Background(), validContact())
			var dErr *DeliveryError
			require.True(t, errors.As(err, &dErr))
			assert.Equal(t, tc.wantMsg, dErr.Message)
		})
	}
}

func TestSendFallsBackToEmail(t *testing.T) {
	t.Parallel()

	email := NewEmailService("smtp.example.com", "587", "user", "pass", "site@example.com")
	var sentTo []string
	var sentMsg string
	email.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		sentTo = to
		sentMsg = string(msg)
		return nil
	}

	svc := NewContactService("", email, "owner@example.com")
	req := validContact()
	req.Subject = "Hi\r\nBcc: victim@example.com"
	req.Message = "<b>bold</b>"

	require.NoError(t, svc.Send(context.Background(), req))
	assert.Equal(t, []string{"owner@example.com"}, sentTo)
	headers, _, found := strings.Cut(sentMsg, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, headers, "Reply-To: ada@example.com")
	assert.NotContains(t, headers, "\r\nBcc:")
	assert.Contains(t, sentMsg, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestSendEmailFailureIsDeliveryError(t *testing.T) {
	t.Parallel()

	email := NewEmailService("smtp.example.com", "587", "user", "pass", "site@example.com")
	email.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := NewContactService("", email, "owner@example.com").Send(context.Background(), validContact())
	var dErr *DeliveryError
	assert.True(t, errors.As(err, &dErr))
}

func TestEmailDevModeDoesNotSend(t *testing.T) {
	t.Parallel()

	email := NewEmailService("", "587", "", "", "site@example.com")
	email.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("dev mode must not dial SMTP")
		return nil
	}
	assert.NoError(t, email.SendContactMessage("owner@example.com", validContact()))
}
