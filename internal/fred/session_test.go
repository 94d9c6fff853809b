package fred

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestSessionManager_ReusesUntilRelease(t *testing.T) {
	m := NewSessionManager(time.Second, nil)

	first := m.Acquire()
	second := m.Acquire()
	if first != second {
		t.Fatalf("Acquire returned different sessions without Release")
	}
	if first.Closed() {
		t.Fatalf("acquired session is closed")
	}

	m.Release()
	if !first.Closed() {
		t.Fatalf("Release did not close the session")
	}

	third := m.Acquire()
	if third == first {
		t.Fatalf("Acquire after Release returned the closed session")
	}
	if third.Closed() {
		t.Fatalf("fresh session is closed")
	}
}

func TestSessionManager_ReleaseIsIdempotent(t *testing.T) {
	m := NewSessionManager(time.Second, nil)
	m.Release()
	m.Acquire()
	m.Release()
	m.Release()
	if m.current == nil || !m.current.Closed() {
		t.Fatalf("session should stay closed after repeated Release")
	}
}

func TestSession_ClosedRefusesRequests(t *testing.T) {
	s := newSession(time.Second)
	s.Close()
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1/", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if _, err := s.Do(req); !errors.Is(err, errSessionClosed) {
		t.Fatalf("Do error = %v, want errSessionClosed", err)
	}
}

func TestSession_TimeoutApplied(t *testing.T) {
	s := newSession(3 * time.Second)
	if s.http.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s", s.http.Timeout)
	}
}
