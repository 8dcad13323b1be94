package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"matchcore/app/models"
)

// Emitter delivers one event to one connected socket
type Emitter func(socketID, event string, data interface{}) error

// SocketService tracks which sockets belong to which user and delivers match
// events to them
type SocketService struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
	byID   map[string]string

	emit Emitter
	log  *zap.Logger
	now  func() time.Time
}

// NewSocketService creates a new socket service instance
func NewSocketService(log *zap.Logger) *SocketService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SocketService{
		byUser: make(map[string]map[string]struct{}),
		byID:   make(map[string]string),
		log:    log.Named("sockets"),
		now:    time.Now,
	}
}

// SetEmitter installs the transport used by Deliver
func (s *SocketService) SetEmitter(emit Emitter) {
	s.mu.Lock()
	s.emit = emit
	s.mu.Unlock()
}

// Register binds socketID to userID, replacing any previous binding of the socket
func (s *SocketService) Register(userID, socketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byID[socketID]; ok {
		s.removeLocked(prev, socketID)
	}
	set, ok := s.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		s.byUser[userID] = set
	}
	set[socketID] = struct{}{}
	s.byID[socketID] = userID
}

// Unregister forgets socketID and returns the user it was bound to
func (s *SocketService) Unregister(socketID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.byID[socketID]
	if !ok {
		return ""
	}
	s.removeLocked(userID, socketID)
	return userID
}

func (s *SocketService) removeLocked(userID, socketID string) {
	delete(s.byID, socketID)
	if set, ok := s.byUser[userID]; ok {
		delete(set, socketID)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}

// SocketsFor returns the sockets currently bound to userID
func (s *SocketService) SocketsFor(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byUser[userID]))
	for id := range s.byUser[userID] {
		ids = append(ids, id)
	}
	return ids
}

func (s *SocketService) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Deliver emits evt to every socket of every recipient and returns how many
// sockets it reached
func (s *SocketService) Deliver(evt models.MatchEvent) int {
	s.mu.RLock()
	emit := s.emit
	s.mu.RUnlock()
	if emit == nil {
		return 0
	}

	sent := 0
	for _, userID := range evt.Recipients {
		for _, socketID := range s.SocketsFor(userID) {
			if err := emit(socketID, evt.Type, evt); err != nil {
				s.log.Warn("failed to emit event",
					zap.String("event", evt.Type),
					zap.String("user_id", userID),
					zap.String("socket_id", socketID),
					zap.Error(err),
				)
				continue
			}
			sent++
		}
	}
	return sent
}

// HandleBusMessage decodes a published MatchEvent and delivers it locally
func (s *SocketService) HandleBusMessage(payload []byte) {
	var evt models.MatchEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		s.log.Warn("dropping malformed bus message", zap.Error(err))
		return
	}
	s.Deliver(evt)
}

// NotifyMatch delivers directly to local sockets when no event bus is running
func (s *SocketService) NotifyMatch(_ context.Context, userA, userB string) {
	s.Deliver(models.NewMatchEvent(userA, userB, s.now().UTC()))
}

func (s *SocketService) NotifyLike(_ context.Context, actorID, targetID string, kind models.LikeKind) {
	s.Deliver(models.NewLikeEvent(actorID, targetID, kind, s.now().UTC()))
}
