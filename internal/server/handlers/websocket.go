// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trendlens/internal/adapter/events"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Messages buffered per client before new ones are dropped
	SendBuffer int
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
		SendBuffer:     64,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// analysisStreamClient relays analysis events to one browser
type analysisStreamClient struct {
	conn        *websocket.Conn
	config      WebSocketConfig
	log         zerolog.Logger
	send        chan []byte
	done        chan struct{}
	once        sync.Once
	unsubscribe func() error
}

// AnalysisWebSocketHandler streams every completed analysis published on
// subject to connected WebSocket clients. A nil subscriber means events are
// disabled and the endpoint answers 503.
func AnalysisWebSocketHandler(subscriber events.Subscriber, subject string, config WebSocketConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context()).With().Str("component", "analysis_stream").Logger()

		if subscriber == nil {
			respondWithError(w, r, http.StatusServiceUnavailable, "Analysis events are disabled", nil)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("failed to upgrade to WebSocket")
			return
		}

		client := &analysisStreamClient{
			conn:   conn,
			config: config,
			log:    log,
			send:   make(chan []byte, config.SendBuffer),
			done:   make(chan struct{}),
		}

		welcome, _ := json.Marshal(map[string]interface{}{
			"type":    "welcome",
			"subject": subject,
			"time":    time.Now().UTC(),
		})
		client.enqueue(welcome)

		unsubscribe, err := subscriber.Subscribe(subject, client.enqueue)
		if err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("failed to subscribe to analysis events")
			client.close()
			return
		}
		client.unsubscribe = unsubscribe

		log.Debug().Str("remote", r.RemoteAddr).Msg("analysis stream connected")

		go client.writePump()
		go client.readPump()
	}
}

// enqueue hands a message to the write pump, dropping it when the client is
// gone or too slow
func (c *analysisStreamClient) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.log.Debug().Msg("analysis stream client too slow, dropping event")
	}
}

// readPump only services control frames; clients have nothing to send
func (c *analysisStreamClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("WebSocket error")
			}
			return
		}
	}
}

// writePump pumps queued events to the WebSocket connection
func (c *analysisStreamClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close unsubscribes and closes the connection once
func (c *analysisStreamClient) close() {
	c.once.Do(func() {
		close(c.done)
		if c.unsubscribe != nil {
			if err := c.unsubscribe(); err != nil {
				c.log.Debug().Err(err).Msg("failed to unsubscribe")
			}
		}
		c.conn.Close()
		c.log.Debug().Msg("analysis stream closed")
	})
}
