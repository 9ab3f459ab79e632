package invader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the InboxInvader client.
type Config struct {
	// BaseURL is the root URL of the InboxInvader server.
	// Example: "http://localhost:5000"
	BaseURL string

	// Storage persists the session credentials. If nil, an in-memory
	// store is used and the session does not survive the process.
	Storage Storage

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with a 5 minute timeout is used; the
	// timeout is generous because a paced batch is delivered
	// synchronously within one request.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.Storage == nil {
		c.Storage = NewMemoryStorage()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Client is the InboxInvader SDK client. It carries the session token
// on every authenticated call and invalidates the session when the
// backend rejects it.
type Client struct {
	cfg     Config
	session *Session
}

// NewClient creates a new client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		cfg:     cfg,
		session: NewSession(cfg.Storage),
	}
}

// Session exposes the credential state shared by all calls.
func (c *Client) Session() *Session {
	return c.session
}

// Login authenticates and establishes the session on success.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body, err := c.postJSON(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invader: failed to parse login response: %w", err)
	}
	c.session.establish(resp.Token, resp.Username)
	return &resp, nil
}

// Signup creates a new account. It does not log in.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	_, err := c.postJSON(ctx, "/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, false)
	return err
}

// Logout clears the local session. The backend keeps no server-side
// session state for bearer tokens.
func (c *Client) Logout() {
	c.session.Logout()
}

// ListTemplates fetches the template catalog in the order the backend
// delivers it.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	body, err := c.get(ctx, "/templates")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Templates []Template `json:"templates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invader: failed to parse templates response: %w", err)
	}
	return resp.Templates, nil
}

// SaveTemplate stores a template in the catalog.
func (c *Client) SaveTemplate(ctx context.Context, name, subject, tmplBody string) (*Template, error) {
	body, err := c.postJSON(ctx, "/templates", map[string]string{
		"name":    name,
		"subject": subject,
		"body":    tmplBody,
	}, true)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Template Template `json:"template"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invader: failed to parse template response: %w", err)
	}
	return &resp.Template, nil
}

// DeleteTemplate removes a template from the catalog.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.BaseURL+"/templates/"+id, nil)
	if err != nil {
		return fmt.Errorf("invader: failed to create request: %w", err)
	}
	_, err = c.do(req, true)
	if apiErr, ok := IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
		return ErrTemplateNotFound
	}
	return err
}

// SendRequest is one immutable dispatch batch. Build it once, submit
// it once; edits produce a new request.
type SendRequest struct {
	SMTPServer     string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string
	Recipients     []string
	Subject        string
	Body           string
	DelaySeconds   float64
	Variables      map[string]string
	Attachments    []Attachment
}

// Send submits a batch and blocks until every recipient has been
// attempted. A non-nil response with Summary.Failed > 0 is a partial
// failure, not an error.
func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"smtp_server":     req.SMTPServer,
		"smtp_port":       strconv.Itoa(req.SMTPPort),
		"sender_email":    req.SenderEmail,
		"sender_password": req.SenderPassword,
		"recipients":      strings.Join(req.Recipients, ", "),
		"subject":         req.Subject,
		"body":            req.Body,
		"delay_seconds":   strconv.FormatFloat(req.DelaySeconds, 'f', -1, 64),
	}
	if req.SMTPPort == 0 {
		delete(fields, "smtp_port")
	}
	if len(req.Variables) > 0 {
		vars, err := json.Marshal(req.Variables)
		if err != nil {
			return nil, fmt.Errorf("invader: failed to encode variables: %w", err)
		}
		fields["variables"] = string(vars)
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("invader: failed to build form: %w", err)
		}
	}
	for _, att := range req.Attachments {
		part, err := mw.CreateFormFile("attachments", att.Name)
		if err != nil {
			return nil, fmt.Errorf("invader: failed to attach %s: %w", att.Name, err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, fmt.Errorf("invader: failed to attach %s: %w", att.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("invader: failed to build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/send", &buf)
	if err != nil {
		return nil, fmt.Errorf("invader: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(httpReq, true)
	if err != nil {
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invader: failed to parse send response: %w", err)
	}
	return &resp, nil
}

// ExportCSV renders a finished batch's results as a CSV document.
func (c *Client) ExportCSV(ctx context.Context, results []SendResult) ([]byte, error) {
	payload, err := json.Marshal(map[string]interface{}{"results": results})
	if err != nil {
		return nil, fmt.Errorf("invader: failed to marshal results: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/export-csv", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("invader: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, true)
}

// postJSON sends a JSON POST request to the API.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, authed bool) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invader: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invader: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, authed)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("invader: failed to create request: %w", err)
	}
	return c.do(req, true)
}

// do executes the request, attaching the bearer token when authed. A
// 401 response invalidates the session before the error is returned.
func (c *Client) do(req *http.Request, authed bool) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.session.Token())
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invader: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("invader: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.invalidate()
		}
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}
