package domain

import "errors"

var (
	ErrProductNotFound  = errors.New("Product not found")
	ErrUserNotFound     = errors.New("User not found")
	ErrRoomNotFound     = errors.New("Stream not found")
	ErrBidsNotFound     = errors.New("No bids found for this product")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrInvalidInput     = errors.New("invalid input")
	ErrMalformedPayload = errors.New("malformed notification payload")

	// ErrSubscriptionClosed is returned by Subscription.Receive once the
	// subscription has been closed locally.
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrBidsNotFound)
}
