// Package api assembles the HTTP surface: REST handlers on echo and the bid
// notification websocket on a gorilla/mux router mounted into echo.
package api

import (
	"net/http"
	"strings"

	"bidding-system/internal/api/handlers"
	"bidding-system/internal/api/middleware"
	"bidding-system/internal/config"
	"bidding-system/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const notificationsPath = "/ws/notifications/products/{product_id}/bids"

type NotificationEndpoint interface {
	HandleConnection(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	Products      *handlers.ProductHandler
	Rooms         *handlers.RoomHandler
	Notifications NotificationEndpoint
}

func NewRouter(cfg config.ServerConfig, h Handlers, log logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(middleware.AccessLog())
	e.Use(echomw.Recover())
	e.Use(middleware.CORS(cfg.CORSOrigins))
	e.Use(middleware.RequestLogger(log))

	prefix := strings.TrimRight(cfg.MainPrefix, "/")
	g := e.Group(prefix)

	g.GET("/health", handlers.Health)
	g.GET("/products", h.Products.ListProducts)
	g.POST("/products/:product_id/new-bid", h.Products.PlaceBid)
	g.GET("/products/:product_id/bids", h.Products.ListBids)
	g.GET("/products/:product_id/highest-bids", h.Products.HighestBid)
	g.POST("/products/:product_id/new-room", h.Rooms.CreateRoom)
	g.POST("/rooms/:room_id/join-room", h.Rooms.JoinRoom)

	ws := mux.NewRouter()
	ws.HandleFunc(prefix+notificationsPath, h.Notifications.HandleConnection)
	g.GET("/ws/notifications/products/:product_id/bids", echo.WrapHandler(ws))

	return e
}
