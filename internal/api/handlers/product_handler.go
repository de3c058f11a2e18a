package handlers

import (
	"context"
	"net/http"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BiddingService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	PlaceBid(ctx context.Context, productID int64, username string, amount float64) (*domain.BidInfo, error)
	ListBids(ctx context.Context, productID int64) ([]*domain.BidInfo, error)
	HighestBid(ctx context.Context, productID int64) (*float64, error)
}

type PlaceBidRequest struct {
	Username string  `json:"username"`
	Price    float64 `json:"price"`
}

type HighestBidResponse struct {
	HighestBid *float64 `json:"highest_bid"`
}

type ProductHandler struct {
	bidding BiddingService
	log     logger.Logger
}

func NewProductHandler(bidding BiddingService, log logger.Logger) *ProductHandler {
	return &ProductHandler{
		bidding: bidding,
		log:     log,
	}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.bidding.ListProducts(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) PlaceBid(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Warn("Failed to bind bid request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}

	bid, err := h.bidding.PlaceBid(c.Request().Context(), productID, req.Username, req.Price)
	if err != nil {
		return respondError(c, h.log, err)
	}

	h.log.Info("Bid placed", "bid_id", bid.ID, "product_id", productID, "username", bid.Username)
	return c.JSON(http.StatusCreated, bid)
}

func (h *ProductHandler) ListBids(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	bids, err := h.bidding.ListBids(c.Request().Context(), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, bids)
}

func (h *ProductHandler) HighestBid(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	highest, err := h.bidding.HighestBid(c.Request().Context(), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, HighestBidResponse{HighestBid: highest})
}
