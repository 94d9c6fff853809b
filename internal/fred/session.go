package fred

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var errSessionClosed = errors.New("session closed")

// Session is one reusable HTTP connection pool. A closed session refuses
// further requests.
type Session struct {
	http      *http.Client
	transport *http.Transport
	closed    atomic.Bool
}

func newSession(timeout time.Duration) *Session {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Session{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		transport: transport,
	}
}

// Do sends req over the session.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.Closed() {
		return nil, errSessionClosed
	}
	return s.http.Do(req)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close drops pooled connections. Calling it twice is harmless.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.transport.CloseIdleConnections()
	}
}

// SessionManager hands out at most one open Session at a time, creating it
// on first use and again after Release.
type SessionManager struct {
	mu      sync.Mutex
	current *Session
	timeout time.Duration
	logger  *slog.Logger
}

// NewSessionManager builds a manager whose sessions apply timeout to every
// request.
func NewSessionManager(timeout time.Duration, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionManager{timeout: timeout, logger: logger}
}

// Acquire returns the open session, creating one if needed.
func (m *SessionManager) Acquire() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.Closed() {
		m.current = newSession(m.timeout)
		m.logger.Debug("http session opened")
	}
	return m.current
}

// Release closes the current session if there is one.
func (m *SessionManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.Closed() {
		return
	}
	m.current.Close()
	m.logger.Debug("http session closed")
}
