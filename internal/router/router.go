package router

import (
	"net/http"
	"time"

	"github.com/inboxinvader/inboxinvader/internal/handler"
	"github.com/inboxinvader/inboxinvader/internal/middleware"
)

// New builds the HTTP routing table with all middleware applied
func New(h *handler.Handler, mw *middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	loginLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  5,
		Window: 15 * time.Minute,
		KeyFn:  func(r *http.Request) string { return "login:" + middleware.IPKey(r) },
	})
	signupLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  3,
		Window: time.Hour,
		KeyFn:  func(r *http.Request) string { return "signup:" + middleware.IPKey(r) },
	})
	sendLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  10,
		Window: time.Minute,
		KeyFn:  func(r *http.Request) string { return "send:" + middleware.IPKey(r) },
	})

	// Public endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(h.Login)))
	mux.Handle("POST /signup", signupLimit(http.HandlerFunc(h.Signup)))

	// Authenticated endpoints
	mux.Handle("GET /templates", mw.Authenticate(http.HandlerFunc(h.ListTemplates)))
	mux.Handle("POST /templates", mw.Authenticate(http.HandlerFunc(h.SaveTemplate)))
	mux.Handle("DELETE /templates/{id}", mw.Authenticate(http.HandlerFunc(h.DeleteTemplate)))
	mux.Handle("POST /send", mw.Authenticate(sendLimit(http.HandlerFunc(h.Send))))
	mux.Handle("POST /export-csv", mw.Authenticate(http.HandlerFunc(h.ExportCSV)))
	mux.Handle("GET /history", mw.Authenticate(http.HandlerFunc(h.History)))

	// Middleware chain, outermost first. RequestID and Timing run
	// before Logger so the access log carries both.
	var root http.Handler = mux
	root = mw.Recover(root)
	root = mw.Logger(root)
	root = mw.Timing(root)
	root = mw.RequestID(root)
	root = mw.CORS(root)

	return root
}
