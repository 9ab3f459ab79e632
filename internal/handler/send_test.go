package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/inboxinvader/inboxinvader/internal/config"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/mailer"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/service"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]string
}

func (f *fakeSender) Send(ctx context.Context, acct mailer.Account, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if reason, ok := f.failFor[msg.To]; ok {
		return &smtpError{reason}
	}
	return nil
}

type smtpError struct{ reason string }

func (e *smtpError) Error() string { return e.reason }

func newTestHandler(t *testing.T, sender mailer.Sender) *Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.SMTP.DefaultServer = "smtp.gmail.com"
	cfg.SMTP.DefaultPort = 587
	log := logger.New("error", "json")
	dispatchSvc := service.NewDispatchService(sender, log)
	return New(nil, nil, log, cfg, nil, nil, dispatchSvc, nil)
}

type sendForm struct {
	fields      map[string]string
	attachments map[string][]byte
}

func postSend(t *testing.T, h *Handler, form sendForm) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range form.fields {
		mw.WriteField(name, value)
	}
	for name, data := range form.attachments {
		part, err := mw.CreateFormFile("attachments", name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/send", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Send(rec, req)
	return rec
}

func TestSendValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{
			name:   "missing sender credentials",
			fields: map[string]string{"recipients": "a@x.com"},
		},
		{
			name: "empty recipient list",
			fields: map[string]string{
				"sender_email":    "me@example.com",
				"sender_password": "pw",
				"recipients":      " , ; ",
			},
		},
		{
			name: "bad port",
			fields: map[string]string{
				"sender_email":    "me@example.com",
				"sender_password": "pw",
				"recipients":      "a@x.com",
				"smtp_port":       "not-a-port",
			},
		},
		{
			name: "negative delay",
			fields: map[string]string{
				"sender_email":    "me@example.com",
				"sender_password": "pw",
				"recipients":      "a@x.com",
				"delay_seconds":   "-1",
			},
		},
		{
			name: "malformed variables",
			fields: map[string]string{
				"sender_email":    "me@example.com",
				"sender_password": "pw",
				"recipients":      "a@x.com",
				"variables":       "{not json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := &fakeSender{}
			h := newTestHandler(t, sender)

			rec := postSend(t, h, sendForm{fields: tt.fields})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(sender.sent) != 0 {
				t.Error("validation failure still dispatched mail")
			}
		})
	}
}

func TestSendBatch(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{failFor: map[string]string{"b@x.com": "mailbox unavailable"}}
	h := newTestHandler(t, sender)

	rec := postSend(t, h, sendForm{
		fields: map[string]string{
			"sender_email":    "me@example.com",
			"sender_password": "pw",
			"recipients":      "a@x.com, b@x.com; c@x.com",
			"subject":         "Hi {{name}}",
			"body":            "Hello {{name}}, this is for {{email}}",
			"variables":       `{"name":"Bob"}`,
		},
		attachments: map[string][]byte{"notes.txt": []byte("hello")},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Success bool               `json:"success"`
		Message string             `json:"message"`
		Results []model.SendResult `json:"results"`
		Summary model.SendSummary  `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.Success {
		t.Error("success should be false on partial failure")
	}
	if resp.Message != "Sent 2/3 emails successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Summary.Total != 3 || resp.Summary.Successful != 2 || resp.Summary.Failed != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	// Results stay in recipient order and carry the failure message.
	wantOrder := []string{"a@x.com", "b@x.com", "c@x.com"}
	for i, want := range wantOrder {
		if resp.Results[i].Email != want {
			t.Errorf("results[%d] = %q, want %q", i, resp.Results[i].Email, want)
		}
	}
	if resp.Results[1].Message != "mailbox unavailable" {
		t.Errorf("failure message = %q", resp.Results[1].Message)
	}

	// Each delivery is rendered per recipient, with the shared map
	// overlaid by that recipient's own address.
	if len(sender.sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sender.sent))
	}
	if sender.sent[0].Subject != "Hi Bob" {
		t.Errorf("subject = %q", sender.sent[0].Subject)
	}
	if !strings.Contains(sender.sent[2].Body, "for c@x.com") {
		t.Errorf("body = %q", sender.sent[2].Body)
	}
	for _, msg := range sender.sent {
		if len(msg.Attachments) != 1 || msg.Attachments[0].Name != "notes.txt" {
			t.Errorf("attachments = %+v", msg.Attachments)
		}
	}
}

func TestSendAllSuccessful(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	h := newTestHandler(t, sender)

	rec := postSend(t, h, sendForm{
		fields: map[string]string{
			"sender_email":    "me@example.com",
			"sender_password": "pw",
			"recipients":      "a@x.com\nb@x.com",
			"subject":         "Hello",
			"body":            "World",
		},
	})

	var resp struct {
		Success bool              `json:"success"`
		Summary model.SendSummary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Summary.Failed != 0 {
		t.Errorf("response = %+v", resp)
	}
}
