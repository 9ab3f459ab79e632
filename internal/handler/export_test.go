package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExportCSV(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, &fakeSender{})

	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC).Format(time.RFC3339)
	body := `{"results":[
		{"email":"a@x.com","success":true,"message":"Sent","timestamp":"` + ts + `"},
		{"email":"b@x.com","success":false,"message":"mailbox full"}
	]}`

	req := httptest.NewRequest(http.MethodPost, "/export-csv", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ExportCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Errorf("content disposition = %q", got)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "Email,Status,Message,Time" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "a@x.com,Success,Sent,") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "b@x.com,Failed,mailbox full,") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/export-csv", strings.NewReader(`{"results":[]}`))
	rec := httptest.NewRecorder()
	h.ExportCSV(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
