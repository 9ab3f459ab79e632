package invader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State is the dispatch workflow state.
type State int

const (
	// StateIdle means the draft is editable and nothing is in flight.
	StateIdle State = iota
	// StatePreviewing means a rendered preview awaits confirmation.
	StatePreviewing
	// StateSending means exactly one batch request is in flight.
	StateSending
	// StateCompleted means the batch request returned; individual
	// recipients may still have failed.
	StateCompleted
	// StateFailed means the batch request itself could not be
	// completed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateSending:
		return "sending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultSendTimeout bounds how long a batch may stay in flight before
// the workflow resolves to failed.
const DefaultSendTimeout = 300 * time.Second

// Workflow state errors.
var (
	// ErrNotPreviewing is returned when confirm is issued without a
	// pending preview.
	ErrNotPreviewing = errors.New("invader: no preview awaiting confirmation")

	// ErrSendInFlight is returned when reset is attempted while a
	// batch is still in flight.
	ErrSendInFlight = errors.New("invader: a batch is still in flight")
)

// Preview is a non-committing render of the draft against the current
// variable map, shown before a batch is confirmed.
type Preview struct {
	Recipient  string
	Subject    string
	Body       string
	Recipients int
}

// Outcome is delivered on the channel returned by ConfirmSend once the
// in-flight batch resolves. Exactly one of Response and Err is set.
type Outcome struct {
	Response *SendResponse
	Err      error
}

// Workflow drives a single user's compose-preview-send cycle. It owns
// the editable draft and enforces that at most one batch is in flight;
// the state machine itself is the guard, there is no separate send
// lock. One Workflow serves one user session.
type Workflow struct {
	client  *Client
	timeout time.Duration

	mu    sync.Mutex
	state State

	smtpServer     string
	smtpPort       int
	senderEmail    string
	senderPassword string
	subject        string
	body           string
	delaySeconds   float64
	recipients     []string
	variables      map[string]string
	attachments    []Attachment

	outcome      chan Outcome
	lastResponse *SendResponse
	lastErr      error
}

// NewWorkflow creates an idle workflow bound to the given client.
func NewWorkflow(client *Client) *Workflow {
	return &Workflow{
		client:    client,
		timeout:   DefaultSendTimeout,
		state:     StateIdle,
		variables: make(map[string]string),
	}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SetSMTP sets the relay the batch will be sent through. Zero values
// fall back to the server defaults.
func (w *Workflow) SetSMTP(server string, port int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.smtpServer = server
	w.smtpPort = port
}

// SetSender sets the account the batch is sent from.
func (w *Workflow) SetSender(email, password string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.senderEmail = email
	w.senderPassword = password
}

// SetMessage sets the subject and body templates.
func (w *Workflow) SetMessage(subject, body string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subject = subject
	w.body = body
}

// SetDelay sets the pause between consecutive deliveries.
func (w *Workflow) SetDelay(seconds float64) error {
	if seconds < 0 {
		return ValidationError("delay must not be negative")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delaySeconds = seconds
	return nil
}

// SetRecipients parses raw recipient text into the ordered list the
// batch will target. Duplicates and malformed addresses pass through;
// the transport reports failure per recipient.
func (w *Workflow) SetRecipients(raw string) []string {
	parsed := ParseRecipients(raw)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recipients = parsed
	return parsed
}

// Recipients returns the current parsed recipient list.
func (w *Workflow) Recipients() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.recipients...)
}

// AddVariable sets one substitution variable. Adding an existing key
// overwrites its value.
func (w *Workflow) AddVariable(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ValidationError("variable name must not be empty")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.variables[key] = value
	return nil
}

// RemoveVariable deletes one substitution variable.
func (w *Workflow) RemoveVariable(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.variables, key)
}

// Variables returns a copy of the current variable map.
func (w *Workflow) Variables() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	vars := make(map[string]string, len(w.variables))
	for k, v := range w.variables {
		vars[k] = v
	}
	return vars
}

// AddAttachment appends a file carried with every message of the batch.
func (w *Workflow) AddAttachment(name string, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attachments = append(w.attachments, Attachment{Name: name, Data: data})
}

// LoadTemplate fills the draft from a saved template. Template
// variables are merged into the current map, overwriting on conflict.
func (w *Workflow) LoadTemplate(t Template) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subject = t.Subject
	w.body = t.Body
	for k, v := range t.Variables {
		w.variables[k] = v
	}
}

// RequestPreview validates the draft and renders it for the first
// recipient. On success the workflow moves to previewing; on a
// validation error it stays idle.
func (w *Workflow) RequestPreview() (*Preview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateIdle, StatePreviewing:
	default:
		return nil, ValidationError("reset the workflow before previewing again")
	}

	if w.senderEmail == "" || w.senderPassword == "" {
		return nil, ValidationError("sender email and password are required")
	}
	if len(w.recipients) == 0 {
		return nil, ValidationError("at least one recipient is required")
	}

	vars := make(map[string]string, len(w.variables)+1)
	for k, v := range w.variables {
		vars[k] = v
	}
	vars["email"] = w.recipients[0]

	w.state = StatePreviewing
	return &Preview{
		Recipient:  w.recipients[0],
		Subject:    Substitute(w.subject, vars),
		Body:       Substitute(w.body, vars),
		Recipients: len(w.recipients),
	}, nil
}

// CancelPreview returns to the editable draft without side effects.
func (w *Workflow) CancelPreview() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StatePreviewing {
		w.state = StateIdle
	}
}

// ConfirmSend snapshots the draft into an immutable batch request and
// dispatches it. The returned channel delivers exactly one Outcome.
// Confirming while a batch is already in flight returns the in-flight
// batch's channel without issuing a second request.
func (w *Workflow) ConfirmSend() (<-chan Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSending {
		return w.outcome, nil
	}
	if w.state != StatePreviewing {
		return nil, ErrNotPreviewing
	}

	req := SendRequest{
		SMTPServer:     w.smtpServer,
		SMTPPort:       w.smtpPort,
		SenderEmail:    w.senderEmail,
		SenderPassword: w.senderPassword,
		Recipients:     append([]string(nil), w.recipients...),
		Subject:        w.subject,
		Body:           w.body,
		DelaySeconds:   w.delaySeconds,
		Variables:      make(map[string]string, len(w.variables)),
		Attachments:    append([]Attachment(nil), w.attachments...),
	}
	for k, v := range w.variables {
		req.Variables[k] = v
	}

	ch := make(chan Outcome, 1)
	w.state = StateSending
	w.outcome = ch
	w.lastResponse = nil
	w.lastErr = nil

	go w.dispatch(req, ch)
	return ch, nil
}

// dispatch runs the single in-flight batch call and resolves the state
// machine when it returns or times out.
func (w *Workflow) dispatch(req SendRequest, ch chan Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	resp, err := w.client.Send(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("invader: send timed out after %s", w.timeout)
		}
		w.state = StateFailed
		w.lastErr = err
		ch <- Outcome{Err: err}
		return
	}

	w.state = StateCompleted
	w.lastResponse = resp
	ch <- Outcome{Response: resp}
}

// Reset clears the draft and results and returns to idle. The session
// is untouched. Resetting while a batch is in flight is refused.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSending {
		return ErrSendInFlight
	}

	w.state = StateIdle
	w.smtpServer = ""
	w.smtpPort = 0
	w.senderEmail = ""
	w.senderPassword = ""
	w.subject = ""
	w.body = ""
	w.delaySeconds = 0
	w.recipients = nil
	w.variables = make(map[string]string)
	w.attachments = nil
	w.outcome = nil
	w.lastResponse = nil
	w.lastErr = nil
	return nil
}

// Results returns the per-recipient outcomes of the last completed
// batch, in the order the backend delivered them.
func (w *Workflow) Results() []SendResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastResponse == nil {
		return nil
	}
	return append([]SendResult(nil), w.lastResponse.Results...)
}

// Summary recomputes the counts from the last completed batch.
func (w *Workflow) Summary() SendSummary {
	return Summarize(w.Results())
}

// LastError returns the batch-level failure of the last dispatch, nil
// when the batch completed.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}
