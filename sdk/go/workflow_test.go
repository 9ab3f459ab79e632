package invader

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestWorkflow(t *testing.T, handler http.Handler) *Workflow {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL})
	client.Session().establish("test-token", "tester")
	return NewWorkflow(client)
}

func fillDraft(w *Workflow, recipients string) {
	w.SetSender("me@example.com", "app-password")
	w.SetMessage("Hi {{name}}", "Hello {{name}} at {{email}}")
	w.SetRecipients(recipients)
}

func sendOK(results []SendResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := Summarize(results)
		json.NewEncoder(w).Encode(SendResponse{
			Success: summary.Failed == 0,
			Message: "done",
			Results: results,
			Summary: summary,
		})
	}
}

func TestWorkflowPreviewValidation(t *testing.T) {
	t.Parallel()

	t.Run("missing sender", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkflow(t, http.NotFoundHandler())
		w.SetRecipients("a@x.com")

		_, err := w.RequestPreview()
		var ve ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if got := w.State(); got != StateIdle {
			t.Errorf("state = %v, want idle", got)
		}
	})

	t.Run("no recipients", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkflow(t, http.NotFoundHandler())
		w.SetSender("me@example.com", "pw")
		w.SetRecipients(" , ; \n ")

		if _, err := w.RequestPreview(); err == nil {
			t.Fatal("expected validation error for empty recipient list")
		}
		if got := w.State(); got != StateIdle {
			t.Errorf("state = %v, want idle", got)
		}
	})

	t.Run("renders first recipient", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkflow(t, http.NotFoundHandler())
		fillDraft(w, "a@x.com, b@x.com")
		w.AddVariable("name", "Bob")

		p, err := w.RequestPreview()
		if err != nil {
			t.Fatal(err)
		}
		if p.Subject != "Hi Bob" {
			t.Errorf("subject = %q", p.Subject)
		}
		if p.Body != "Hello Bob at a@x.com" {
			t.Errorf("body = %q", p.Body)
		}
		if p.Recipients != 2 {
			t.Errorf("recipients = %d, want 2", p.Recipients)
		}
		if got := w.State(); got != StatePreviewing {
			t.Errorf("state = %v, want previewing", got)
		}
	})
}

func TestWorkflowConfirmRequiresPreview(t *testing.T) {
	t.Parallel()
	w := newTestWorkflow(t, http.NotFoundHandler())
	fillDraft(w, "a@x.com")

	if _, err := w.ConfirmSend(); !errors.Is(err, ErrNotPreviewing) {
		t.Fatalf("expected ErrNotPreviewing, got %v", err)
	}
	if got := w.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestWorkflowCancelPreview(t *testing.T) {
	t.Parallel()
	w := newTestWorkflow(t, http.NotFoundHandler())
	fillDraft(w, "a@x.com")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	w.CancelPreview()
	if got := w.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestWorkflowPartialFailureCompletes(t *testing.T) {
	t.Parallel()
	results := []SendResult{
		{Email: "a@x.com", Success: true, Message: "Sent"},
		{Email: "b@x.com", Success: false, Message: "mailbox full"},
		{Email: "c@x.com", Success: true, Message: "Sent"},
	}
	w := newTestWorkflow(t, sendOK(results))
	fillDraft(w, "a@x.com, b@x.com, c@x.com")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	ch, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}

	outcome := <-ch
	if outcome.Err != nil {
		t.Fatal(outcome.Err)
	}
	if got := w.State(); got != StateCompleted {
		t.Errorf("state = %v, want completed", got)
	}

	summary := w.Summary()
	if summary.Total != 3 || summary.Successful != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	// Order must be exactly what the backend returned.
	got := w.Results()
	for i, r := range results {
		if got[i].Email != r.Email {
			t.Errorf("results[%d] = %q, want %q", i, got[i].Email, r.Email)
		}
	}
}

func TestWorkflowDoubleConfirmSendsOnce(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		sendOK(nil)(w, r)
	})

	w := newTestWorkflow(t, handler)
	fillDraft(w, "a@x.com")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	first, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}

	// Wait for the request to be in flight before confirming again.
	deadline := time.After(2 * time.Second)
	for requests.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("request never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	second, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second confirm created a new dispatch channel")
	}

	close(release)
	<-first

	if n := requests.Load(); n != 1 {
		t.Errorf("backend saw %d requests, want 1", n)
	}
}

func TestWorkflowBackendErrorFails(t *testing.T) {
	t.Parallel()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "smtp relay unreachable",
			"trace":   "dial tcp: connection refused",
		})
	})

	w := newTestWorkflow(t, handler)
	fillDraft(w, "a@x.com")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	ch, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}

	outcome := <-ch
	if outcome.Err == nil {
		t.Fatal("expected failure outcome")
	}
	if got := w.State(); got != StateFailed {
		t.Errorf("state = %v, want failed", got)
	}

	apiErr, ok := IsAPIError(outcome.Err)
	if !ok {
		t.Fatalf("expected APIError, got %v", outcome.Err)
	}
	if apiErr.Message != "smtp relay unreachable" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Trace != "dial tcp: connection refused" {
		t.Errorf("trace = %q", apiErr.Trace)
	}
}

func TestWorkflowTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	// The handler must also give up when the client abandons the
	// request, or the test server cannot shut down. The server only
	// watches for the client going away once the body is drained.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	w := newTestWorkflow(t, handler)
	w.timeout = 50 * time.Millisecond
	fillDraft(w, "a@x.com")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	ch, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}

	select {
	case outcome := <-ch:
		if outcome.Err == nil {
			t.Fatal("expected timeout failure")
		}
		if !strings.Contains(outcome.Err.Error(), "timed out") {
			t.Errorf("err = %v, want timeout message", outcome.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("workflow hung in sending")
	}

	if got := w.State(); got != StateFailed {
		t.Errorf("state = %v, want failed", got)
	}
}

func TestWorkflowReset(t *testing.T) {
	t.Parallel()
	w := newTestWorkflow(t, sendOK([]SendResult{{Email: "a@x.com", Success: true}}))
	fillDraft(w, "a@x.com")
	w.AddVariable("name", "Bob")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	ch, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}
	<-ch

	if err := w.Reset(); err != nil {
		t.Fatal(err)
	}
	if got := w.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
	if len(w.Recipients()) != 0 || len(w.Variables()) != 0 || w.Results() != nil {
		t.Error("reset did not clear the draft")
	}
	// The session survives a reset.
	if !w.client.Session().IsActive() {
		t.Error("reset cleared the session")
	}
}

func TestWorkflowResetRefusedWhileSending(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		sendOK(nil)(w, r)
	})

	w := newTestWorkflow(t, handler)
	fillDraft(w, "a@x.com")

	if _, err := w.RequestPreview(); err != nil {
		t.Fatal(err)
	}
	ch, err := w.ConfirmSend()
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Reset(); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected ErrSendInFlight, got %v", err)
	}

	close(release)
	<-ch
}

func TestWorkflowLoadTemplate(t *testing.T) {
	t.Parallel()
	w := newTestWorkflow(t, http.NotFoundHandler())
	w.SetSender("me@example.com", "pw")
	w.SetRecipients("a@x.com")
	w.AddVariable("name", "Bob")

	w.LoadTemplate(Template{
		Name:      "Intro",
		Subject:   "Hi",
		Body:      "Hello {{name}}",
		Variables: map[string]string{"company": "Acme"},
	})

	p, err := w.RequestPreview()
	if err != nil {
		t.Fatal(err)
	}
	// Loaded subject and body render exactly as saved.
	if p.Subject != "Hi" {
		t.Errorf("subject = %q", p.Subject)
	}
	if p.Body != "Hello Bob" {
		t.Errorf("body = %q", p.Body)
	}
	if got := w.Variables()["company"]; got != "Acme" {
		t.Errorf("template variables not merged, company = %q", got)
	}
}

func TestWorkflowAddVariable(t *testing.T) {
	t.Parallel()
	w := newTestWorkflow(t, http.NotFoundHandler())

	if err := w.AddVariable("  ", "x"); err == nil {
		t.Error("expected validation error for blank key")
	}
	if err := w.AddVariable("name", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := w.AddVariable("name", "Bob"); err != nil {
		t.Fatal(err)
	}
	if got := w.Variables()["name"]; got != "Bob" {
		t.Errorf("name = %q, want overwrite to Bob", got)
	}

	w.RemoveVariable("name")
	if _, ok := w.Variables()["name"]; ok {
		t.Error("remove left the key behind")
	}
}
