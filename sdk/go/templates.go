package invader

import (
	"context"
	"strings"
	"sync"
)

// Templates is a thin facade over the remote template catalog. It keeps
// the last successful listing so callers can show something between
// refreshes; every mutation refreshes through the backend.
type Templates struct {
	client *Client

	mu   sync.Mutex
	last []Template
}

// NewTemplates creates a catalog facade bound to the given client.
func NewTemplates(client *Client) *Templates {
	return &Templates{client: client}
}

// List fetches the catalog and replaces the cached listing. Order is
// whatever the backend delivered.
func (t *Templates) List(ctx context.Context) ([]Template, error) {
	templates, err := t.client.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.last = templates
	t.mu.Unlock()
	return templates, nil
}

// Cached returns the last successful listing without a network call.
func (t *Templates) Cached() []Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Save validates and stores a template. Name and subject are required;
// the body may be empty.
func (t *Templates) Save(ctx context.Context, name, subject, body string) (*Template, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(subject) == "" {
		return nil, ValidationError("template name and subject are required")
	}

	tmpl, err := t.client.SaveTemplate(ctx, name, subject, body)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.last = append([]Template{*tmpl}, t.last...)
	t.mu.Unlock()
	return tmpl, nil
}

// Delete removes a template and drops it from the cached listing.
func (t *Templates) Delete(ctx context.Context, id string) error {
	if err := t.client.DeleteTemplate(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	kept := t.last[:0]
	for _, tmpl := range t.last {
		if tmpl.ID != id {
			kept = append(kept, tmpl)
		}
	}
	t.last = kept
	t.mu.Unlock()
	return nil
}
