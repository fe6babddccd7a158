package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/hyper/pkg/protocol"
)

// SessionManager manages all active sessions.
// It handles session creation, lookup, idle cleanup, and lifecycle callbacks.
type SessionManager struct {
	// Sessions map protected by RWMutex
	sessions map[string]*Session
	mu       sync.RWMutex

	config      *SessionConfig
	maxSessions int
	closing     bool

	// Cleanup
	cleanupInterval time.Duration
	done            chan struct{}
	cleanupDone     chan struct{}
	shutdownOnce    sync.Once

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	// Callbacks
	onSessionCreate func(*Session)
	onSessionClose  func(*Session)

	logger *slog.Logger
}

// ManagerStats summarizes the manager's sessions.
type ManagerStats struct {
	Active       int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}

// NewSessionManager creates a SessionManager and starts its idle cleanup
// loop. maxSessions 0 means no limit.
func NewSessionManager(config *SessionConfig, maxSessions int, cleanupInterval time.Duration, logger *slog.Logger) *SessionManager {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	sm := &SessionManager{
		sessions:        make(map[string]*Session),
		config:          config,
		maxSessions:     maxSessions,
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
		cleanupDone:     make(chan struct{}),
		logger:          logger.With("component", "session_manager"),
	}

	go sm.cleanupLoop()

	return sm
}

// Create creates a new session for the given WebSocket connection.
func (sm *SessionManager) Create(conn *websocket.Conn, ip string) (*Session, error) {
	sm.mu.Lock()

	if sm.closing {
		sm.mu.Unlock()
		return nil, ErrShuttingDown
	}
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}

	session := newSession(conn, ip, sm.config, sm.logger)
	session.onClose = sm.remove

	sm.sessions[session.ID] = session
	sm.totalCreated.Add(1)
	if len(sm.sessions) > sm.peakSessions {
		sm.peakSessions = len(sm.sessions)
	}
	active := len(sm.sessions)
	onCreate := sm.onSessionCreate
	sm.mu.Unlock()

	if onCreate != nil {
		onCreate(session)
	}

	sm.logger.Info("session created",
		"session_id", session.ID,
		"remote_addr", ip,
		"active_sessions", active)

	return session, nil
}

// remove forgets a closed session. It runs from Session.Close.
func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	if sm.sessions[s.ID] == s {
		delete(sm.sessions, s.ID)
	}
	onClose := sm.onSessionClose
	sm.mu.Unlock()

	sm.totalClosed.Add(1)
	if onClose != nil {
		onClose(s)
	}
}

// Get returns the session with the given ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Close closes the session with the given ID if it exists.
func (sm *SessionManager) Close(id string) {
	if s := sm.Get(id); s != nil {
		s.Close()
	}
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ForEach calls fn for each session until fn returns false.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	for _, s := range sm.snapshot() {
		if !fn(s) {
			return
		}
	}
}

func (sm *SessionManager) snapshot() []*Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		out = append(out, s)
	}
	return out
}

// Stats returns aggregated session statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		Peak:         sm.peakSessions,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
	}
}

// SetOnSessionCreate sets a callback run after each session is created.
func (sm *SessionManager) SetOnSessionCreate(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onSessionCreate = fn
}

// SetOnSessionClose sets a callback run after each session is closed.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onSessionClose = fn
}

// cleanupLoop periodically closes idle sessions.
func (sm *SessionManager) cleanupLoop() {
	defer close(sm.cleanupDone)

	ticker := time.NewTicker(sm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.cleanupExpired()
		case <-sm.done:
			return
		}
	}
}

// cleanupExpired closes sessions that have exceeded their idle timeout.
func (sm *SessionManager) cleanupExpired() {
	now := time.Now()
	var expired []*Session
	for _, s := range sm.snapshot() {
		if now.Sub(s.LastActive()) > sm.config.IdleTimeout {
			expired = append(expired, s)
		}
	}

	for _, s := range expired {
		s.SendClose(protocol.CloseGoingAway, "idle timeout")
		s.Close()
	}

	if len(expired) > 0 {
		sm.logger.Info("cleaned up expired sessions",
			"count", len(expired),
			"remaining", sm.Count())
	}
}

// Shutdown closes every session and waits for their loops to exit or for
// ctx to end.
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	sm.shutdownOnce.Do(func() {
		close(sm.done)
	})
	<-sm.cleanupDone

	sm.mu.Lock()
	sm.closing = true
	sm.mu.Unlock()
	sessions := sm.snapshot()

	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.SendClose(protocol.CloseServerShutdown, "server shutting down")
			s.Close()
			s.Wait()
		}(session)
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-ctx.Done():
		return ctx.Err()
	}

	sm.logger.Info("session manager shutdown",
		"closed_sessions", len(sessions))

	return nil
}
