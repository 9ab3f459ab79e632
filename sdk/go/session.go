package invader

import "sync"

// Storage is the persistent key-value capability backing a Session.
// Implementations map onto whatever the host environment offers; tests
// and CLIs can use MemoryStorage.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Storage keys. They survive reloads until explicit logout.
const (
	storageKeyToken    = "token"
	storageKeyUsername = "username"
	storageKeyDarkMode = "darkMode"
)

// Session holds the current bearer token and username. It is set by
// Login, cleared by Logout, and invalidated when any request comes back
// unauthorized. The token is read by every outgoing call.
type Session struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    string
}

// NewSession loads any persisted credentials from storage.
func NewSession(storage Storage) *Session {
	s := &Session{storage: storage}
	if token, ok := storage.Get(storageKeyToken); ok {
		s.token = token
	}
	if user, ok := storage.Get(storageKeyUsername); ok {
		s.user = user
	}
	return s
}

// IsActive reports whether a token is currently held.
func (s *Session) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Username returns the logged-in username, empty when logged out.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// DarkMode returns the persisted display preference.
func (s *Session) DarkMode() bool {
	v, _ := s.storage.Get(storageKeyDarkMode)
	return v == "true"
}

// SetDarkMode persists the display preference. It is independent of the
// credential lifecycle and survives logout.
func (s *Session) SetDarkMode(enabled bool) {
	if enabled {
		s.storage.Set(storageKeyDarkMode, "true")
	} else {
		s.storage.Set(storageKeyDarkMode, "false")
	}
}

// Logout clears the credentials from memory and storage.
func (s *Session) Logout() {
	s.invalidate()
}

func (s *Session) establish(token, username string) {
	s.mu.Lock()
	s.token = token
	s.user = username
	s.mu.Unlock()
	s.storage.Set(storageKeyToken, token)
	s.storage.Set(storageKeyUsername, username)
}

// invalidate drops the credentials. Called by Logout and by the client
// when a request is rejected as unauthorized.
func (s *Session) invalidate() {
	s.mu.Lock()
	s.token = ""
	s.user = ""
	s.mu.Unlock()
	s.storage.Remove(storageKeyToken)
	s.storage.Remove(storageKeyUsername)
}

// MemoryStorage is an in-memory Storage, useful for tests and
// short-lived tools.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStorage) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
