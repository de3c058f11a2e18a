package websocket

import (
	"errors"
	"net/http"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP layer
	},
}

// NotificationHandler serves /ws/notifications/products/{product_id}/bids.
type NotificationHandler struct {
	products ProductFinder
	bus      domain.TopicBus
	registry *SessionRegistry
	log      logger.Logger
}

func NewNotificationHandler(products ProductFinder, bus domain.TopicBus,
	registry *SessionRegistry, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		products: products,
		bus:      bus,
		registry: registry,
		log:      log,
	}
}

func (h *NotificationHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	rawProductID := mux.Vars(r)["product_id"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "product_id", rawProductID, "error", err)
		return
	}

	wsConn := NewWebSocketConnection(conn)
	session := NewSession(wsConn, h.bus, h.log)

	if err := session.Validate(r.Context(), rawProductID, h.products); err != nil {
		return
	}

	if err := session.Subscribe(r.Context()); err != nil {
		h.log.Error("Failed to subscribe to bid notifications", "product_id", session.ProductID(), "error", err)
		session.Close()
		return
	}

	h.registry.Register(session)
	if err := session.Start(); err != nil {
		h.log.Error("Failed to start notification listener", "error", err)
		session.Close()
		h.registry.Unregister(session)
		return
	}

	go h.handleMessages(session, wsConn)
}

// handleMessages is the client receive path. Text frames are echoed back;
// a read error means the client went away and the session is closed.
func (h *NotificationHandler) handleMessages(session *Session, conn *WebSocketConnection) {
	defer func() {
		session.Close()
		h.registry.Unregister(session)
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				h.log.Info("Client disconnected", "session_id", session.ID(), "code", closeErr.Code)
			} else {
				h.log.Debug("Notification connection read ended", "session_id", session.ID(), "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}
		if err := conn.SendText(data); err != nil {
			h.log.Debug("Failed to echo message", "session_id", session.ID(), "error", err)
			return
		}
	}
}
