package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	// EventAnswerCounts carries fresh per-option counts for one question.
	EventAnswerCounts = "answer_counts"
)

// CountsEvent is the payload of EventAnswerCounts.
type CountsEvent struct {
	QuestionID int64                `json:"question_id"`
	Counts     []models.AnswerCount `json:"counts"`
}

// Hub maintains question_id -> set of connections and broadcasts count updates.
// With Redis configured, events are published only and each instance's subscription
// delivers them to its local clients.
type Hub struct {
	rooms    map[int64]map[string]*Client
	subs     map[int64]func()
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishQuestionEvent(ctx context.Context, questionID int64, event string, payload []byte) error
}

// RedisSubscriber subscribes to question channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeQuestion(questionID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. Both Redis arguments may be nil.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[int64]map[string]*Client),
		subs:     make(map[int64]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a question room. The room's Redis subscription is started
// when missing, so a failed subscribe is retried by the next client that joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.QuestionID] == nil {
		h.rooms[c.QuestionID] = make(map[string]*Client)
	}
	h.rooms[c.QuestionID][c.ID] = c
	h.subscribeLocked(c.QuestionID)
	h.mu.Unlock()
	h.logger.Debug("client joined question", zap.String("client_id", c.ID), zap.Int64("question_id", c.QuestionID))
}

func (h *Hub) subscribeLocked(questionID int64) {
	if h.redisSub == nil || h.subs[questionID] != nil {
		return
	}
	cancel, err := h.redisSub.SubscribeQuestion(questionID, func(event string, payload []byte) {
		h.Broadcast(questionID, event, json.RawMessage(payload))
	})
	if err != nil {
		h.logger.Warn("redis subscribe failed", zap.Int64("question_id", questionID), zap.Error(err))
		return
	}
	h.subs[questionID] = cancel
}

// Unregister removes a client from its room. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.QuestionID]; ok {
		if _, present := m[c.ID]; present {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.rooms, c.QuestionID)
			if cancel, ok := h.subs[c.QuestionID]; ok {
				cancel()
				delete(h.subs, c.QuestionID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left question", zap.String("client_id", c.ID), zap.Int64("question_id", c.QuestionID))
}

// Broadcast sends a message to all local clients watching a question.
func (h *Hub) Broadcast(questionID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal broadcast payload", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[questionID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("client buffer full, dropping event", zap.String("client_id", c.ID))
		}
	}
}

// PublishCounts announces fresh counts for a question. With Redis the local broadcast
// happens through the subscription, so every instance delivers exactly once. A room
// whose subscription could not be started is served locally instead.
func (h *Hub) PublishCounts(ctx context.Context, questionID int64, counts []models.AnswerCount) error {
	ev := CountsEvent{QuestionID: questionID, Counts: counts}
	if h.redis == nil || !h.subscribed(questionID) {
		h.Broadcast(questionID, EventAnswerCounts, ev)
	}
	if h.redis == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return h.redis.PublishQuestionEvent(ctx, questionID, EventAnswerCounts, data)
}

func (h *Hub) subscribed(questionID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.redisSub != nil && h.subs[questionID] != nil
}

// Watchers returns the number of connected clients for a question.
func (h *Hub) Watchers(questionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[questionID])
}

// Close cancels every Redis subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cancel := range h.subs {
		cancel()
		delete(h.subs, id)
	}
}
