package websocket

import (
	"sync"

	"bidding-system/pkg/logger"
)

// SessionRegistry tracks live sessions so the server can close them on
// shutdown. Fan-out itself goes through the bus, never through the registry.
type SessionRegistry struct {
	sessions map[int64]map[string]*Session // productID -> sessionID -> session
	mutex    sync.RWMutex
	log      logger.Logger
}

func NewSessionRegistry(log logger.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[int64]map[string]*Session),
		log:      log,
	}
}

func (sr *SessionRegistry) Register(session *Session) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()

	productID := session.ProductID()
	if sr.sessions[productID] == nil {
		sr.sessions[productID] = make(map[string]*Session)
	}
	sr.sessions[productID][session.ID()] = session

	sr.log.Debug("Session registered", "session_id", session.ID(), "product_id", productID)
}

func (sr *SessionRegistry) Unregister(session *Session) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()

	productID := session.ProductID()
	if productSessions, exists := sr.sessions[productID]; exists {
		delete(productSessions, session.ID())
		if len(productSessions) == 0 {
			delete(sr.sessions, productID)
		}
	}

	sr.log.Debug("Session unregistered", "session_id", session.ID(), "product_id", productID)
}

// Count returns the number of live sessions for a product.
func (sr *SessionRegistry) Count(productID int64) int {
	sr.mutex.RLock()
	defer sr.mutex.RUnlock()

	return len(sr.sessions[productID])
}

// CloseAll closes every registered session and waits for each to finish.
func (sr *SessionRegistry) CloseAll() {
	sr.mutex.RLock()
	var sessions []*Session
	for _, productSessions := range sr.sessions {
		for _, session := range productSessions {
			sessions = append(sessions, session)
		}
	}
	sr.mutex.RUnlock()

	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(session)
	}
	wg.Wait()

	sr.log.Info("Closed notification sessions", "count", len(sessions))
}
