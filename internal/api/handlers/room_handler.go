package handlers

import (
	"context"
	"net/http"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"

	"github.com/labstack/echo/v4"
)

type RoomService interface {
	CreateRoom(ctx context.Context, productID int64, username string) (*domain.Room, error)
	JoinRoom(ctx context.Context, roomID int64, username string) (*domain.RoomAccess, error)
}

type RoomRequest struct {
	Username string `json:"username"`
}

type RoomResponse struct {
	ID       int64  `json:"id"`
	RoomName string `json:"room_name"`
}

type RoomHandler struct {
	rooms RoomService
	log   logger.Logger
}

func NewRoomHandler(rooms RoomService, log logger.Logger) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
		log:   log,
	}
}

func (h *RoomHandler) CreateRoom(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req RoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}

	room, err := h.rooms.CreateRoom(c.Request().Context(), productID, req.Username)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, RoomResponse{ID: room.ID, RoomName: room.Name})
}

func (h *RoomHandler) JoinRoom(c echo.Context) error {
	roomID, err := parseIDParam(c, "room_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req RoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}

	access, err := h.rooms.JoinRoom(c.Request().Context(), roomID, req.Username)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, access)
}
