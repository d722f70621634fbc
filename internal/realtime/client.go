package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/middleware"
	"github.com/aura-survey/backend/internal/models"
	"github.com/aura-survey/backend/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CountsSource returns the current counts for a question, failing for unknown questions.
type CountsSource interface {
	Counts(ctx context.Context, questionID int64) ([]models.AnswerCount, error)
}

// Client represents a single WebSocket connection watching one question.
type Client struct {
	ID         string
	QuestionID int64
	hub        *Hub
	conn       *websocket.Conn
	send       chan WSMessage
	logger     *zap.Logger
}

// ServeWs handles GET /api/ws?question_id=ID. The first message is a snapshot of the current counts.
func ServeWs(hub *Hub, counts CountsSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		questionID, err := strconv.ParseInt(c.Query("question_id"), 10, 64)
		if err != nil || questionID <= 0 {
			response.BadRequest(c, "question_id is required")
			return
		}
		snapshot, err := counts.Counts(c.Request.Context(), questionID)
		if err != nil {
			middleware.WriteError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:         uuid.New().String(),
			QuestionID: questionID,
			hub:        hub,
			conn:       conn,
			send:       make(chan WSMessage, 16),
			logger:     logger,
		}
		data, _ := json.Marshal(CountsEvent{QuestionID: questionID, Counts: snapshot})
		client.send <- WSMessage{Event: EventAnswerCounts, Data: data}

		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

// readPump drains inbound frames so pongs and close frames are processed. Clients only listen.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
