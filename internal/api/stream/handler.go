package stream

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/threatflux/datahub/internal/datahub/destination"
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Admin/debug UI surface; origin enforcement belongs to the
		// JWT auth gate in front of this handler, not here.
		return true
	},
}

// Registry is the subset of destination.Registry the handler needs —
// satisfied by *destination.Registry.
type Registry interface {
	Add(name string, cb destination.Callback) (destination.Ref, error)
	Remove(ref destination.Ref) error
}

// Handler upgrades HTTP connections to WebSocket subscriptions on a
// destination name, registering itself as that destination's delivery
// callback for the lifetime of the connection.
type Handler struct {
	destinations Registry
	logger       logger.Logger
}

// NewHandler creates a Handler over destinations.
func NewHandler(destinations Registry, logger logger.Logger) *Handler {
	return &Handler{destinations: destinations, logger: logger}
}

// HandleSubscribe upgrades the connection and registers it as the
// delivery callback for the ":destination" path parameter. The
// registry is the same fixed-capacity table symbolic destinations use
// (spec.md §4.7's destination handlers are in-process only), so a full
// table rejects the subscription with an error frame immediately after
// connecting. A name that is already registered is accepted again.
func (h *Handler) HandleSubscribe(c *gin.Context) {
	name := c.Param("destination")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination name is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade stream connection",
			logger.String("destination", name), logger.Error(err))
		return
	}

	client := &Client{
		Conn:        conn,
		Send:        make(chan *Message, 64),
		Destination: name,
		CreatedAt:   time.Now(),
	}

	ref, err := h.destinations.Add(name, func(dest, obsPath string, s sample.Sample) {
		select {
		case client.Send <- sampleMessage(dest, obsPath, s):
		default:
			// Subscriber too slow; drop rather than block the
			// destination delivery path.
		}
	})
	if err != nil {
		// The WebSocket upgrade already committed the HTTP response,
		// so a full registry can't be reported with a
		// status code — it's reported as an error frame instead.
		client.Send <- errorMessage("SUBSCRIBE_FAILED", err.Error())
		h.writeAndClose(client)
		return
	}

	h.logger.Info("stream subscriber connected", logger.String("destination", name))
	client.Send <- newMessage(MessageTypeConnection, map[string]string{"destination": name, "status": "subscribed"})

	go h.writePump(client, ref)
	h.readPump(client, ref)
}

// writeAndClose sends any queued message then closes the connection
// without entering the full read/write pump — used for upgrade-time
// failures where no destination registration exists to clean up.
func (h *Handler) writeAndClose(client *Client) {
	select {
	case msg := <-client.Send:
		_ = client.Conn.WriteJSON(msg)
	default:
	}
	_ = client.Conn.Close()
}

// readPump discards inbound frames (the subscriber is receive-only)
// and exists to detect the client disconnecting or going away, at
// which point it unregisters the destination and closes the socket.
func (h *Handler) readPump(client *Client, ref destination.Ref) {
	defer func() {
		_ = h.destinations.Remove(ref)
		_ = client.Conn.Close()
		h.logger.Info("stream subscriber disconnected", logger.String("destination", client.Destination))
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("stream read error",
					logger.String("destination", client.Destination), logger.Error(err))
			}
			return
		}
	}
}

// writePump drains client.Send to the socket and pings on an idle
// timer, stopping when a write or ping fails (as it does once readPump's
// teardown has closed the connection) or if client.Send is closed.
func (h *Handler) writePump(client *Client, _ destination.Ref) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
