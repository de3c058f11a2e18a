package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

var notFoundErrors = []error{
	domain.ErrProductNotFound,
	domain.ErrUserNotFound,
	domain.ErrRoomNotFound,
	domain.ErrBidsNotFound,
}

// respondError maps a service error to a status code. Not-found errors are
// expected and only logged at info level.
func respondError(c echo.Context, log logger.Logger, err error) error {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			log.Info("Resource not found", "path", c.Path(), "error", err)
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: target.Error()})
		}
	}

	if errors.Is(err, domain.ErrInvalidInput) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}

	log.Error("Request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return id, nil
}
