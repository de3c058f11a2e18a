package domain

import (
	"encoding/json"
	"fmt"
)

const (
	productBidsTopicPrefix = "product_bids_notifications:"

	NotificationType = "notification"
)

// ProductBidsTopic returns the bus topic carrying bid notifications for a product.
func ProductBidsTopic(productID int64) string {
	return fmt.Sprintf("%s%d", productBidsTopicPrefix, productID)
}

// NewBidMessage is the free-text notification pushed when username places a bid.
func NewBidMessage(username string) string {
	return "New Bid add by user: " + username
}

// Notification is the wire payload on the bus and on the websocket.
type Notification struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

func NewNotification(message string) Notification {
	return Notification{Type: NotificationType, Data: message}
}

func (n Notification) Encode() ([]byte, error) {
	return json.Marshal(n)
}

// DecodePayload checks that a bus payload is a JSON document and returns it
// unchanged for forwarding. Documents of any shape pass through as published.
func DecodePayload(payload []byte) (json.RawMessage, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedPayload, payload)
	}
	return json.RawMessage(payload), nil
}
